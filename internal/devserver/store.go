package devserver

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userRecord struct {
	user         models.User
	passwordHash []byte
}

// Store keeps every entity in memory. All methods are safe for concurrent use and return
// copies, never references into the store.
type Store struct {
	mu          sync.RWMutex
	now         func() time.Time
	gameExpiry  time.Duration
	bcryptCost  int
	users       map[string]*userRecord
	byEmail     map[string]string
	userOrder   []string
	parties     map[string]*models.Party
	partyOrder  []string
	invitations map[string]*models.Invitation
	games       map[string]*models.Game
	gameOrder   []string
}

type StoreOption func(*Store)

// WithClock replaces time.Now, which drives game expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func WithGameExpiry(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.gameExpiry = d
		}
	}
}

// WithBcryptCost lowers hashing cost for tests.
func WithBcryptCost(cost int) StoreOption {
	return func(s *Store) {
		s.bcryptCost = cost
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		now:         time.Now,
		gameExpiry:  30 * time.Minute,
		bcryptCost:  bcrypt.DefaultCost,
		users:       make(map[string]*userRecord),
		byEmail:     make(map[string]string),
		parties:     make(map[string]*models.Party),
		invitations: make(map[string]*models.Invitation),
		games:       make(map[string]*models.Game),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateUser(email, password, name string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if _, exists := s.byEmail[key]; exists {
		return nil, badRequest("Email already registered")
	}

	rec := &userRecord{
		user:         models.User{ID: uuid.NewString(), Email: strings.TrimSpace(email), Name: strings.TrimSpace(name)},
		passwordHash: hash,
	}
	s.users[rec.user.ID] = rec
	s.byEmail[key] = rec.user.ID
	s.userOrder = append(s.userOrder, rec.user.ID)

	u := rec.user
	return &u, nil
}

// Authenticate checks a password against the stored hash. Unknown users and wrong
// passwords fail the same way.
func (s *Store) Authenticate(email, password string) (*models.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[normalizeEmail(email)]
	var rec *userRecord
	if ok {
		rec = s.users[id]
	}
	s.mu.RUnlock()

	if rec == nil || bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)) != nil {
		return nil, unauthorized("Incorrect email or password")
	}
	u := rec.user
	return &u, nil
}

func (s *Store) UserByEmail(email string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, false
	}
	u := s.users[id].user
	return &u, true
}

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id].user)
	}
	return out
}

func copyParty(p *models.Party) models.Party {
	cp := *p
	cp.Members = slices.Clone(p.Members)
	return cp
}

func (s *Store) CreateParty(name string, creator models.User) models.Party {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &models.Party{
		ID:        uuid.NewString(),
		Name:      name,
		CreatorID: creator.ID,
		Members:   []string{creator.ID},
	}
	s.parties[p.ID] = p
	s.partyOrder = append(s.partyOrder, p.ID)
	return copyParty(p)
}

// PartiesOf lists the parties userID is a member of, in creation order.
func (s *Store) PartiesOf(userID string) []models.Party {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Party{}
	for _, id := range s.partyOrder {
		if p := s.parties[id]; p.HasMember(userID) {
			out = append(out, copyParty(p))
		}
	}
	return out
}

func (s *Store) Party(id string) (models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parties[id]
	if !ok {
		return models.Party{}, notFound("Party not found")
	}
	return copyParty(p), nil
}

// DeleteParty removes a party and every invitation to it. Only the creator may do so.
func (s *Store) DeleteParty(id string, by models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[id]
	if !ok {
		return notFound("Party not found")
	}
	if p.CreatorID != by.ID {
		return forbidden("Only the party creator can delete the party")
	}

	for invID, inv := range s.invitations {
		if inv.PartyID == id {
			delete(s.invitations, invID)
		}
	}
	delete(s.parties, id)
	s.partyOrder = slices.DeleteFunc(s.partyOrder, func(pid string) bool { return pid == id })
	return nil
}

func (s *Store) Invite(partyID, inviteeID string, inviter models.User) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[partyID]
	if !ok {
		return nil, notFound("Party not found")
	}
	if p.CreatorID != inviter.ID {
		return nil, forbidden("Only the party creator can invite users")
	}
	if _, ok := s.users[inviteeID]; !ok {
		return nil, notFound("User not found")
	}
	if p.HasMember(inviteeID) {
		return nil, badRequest("User is already a member")
	}
	for _, inv := range s.invitations {
		if inv.PartyID == partyID && inv.InviteeID == inviteeID && inv.Status == models.InvitationPending {
			return nil, badRequest("Invitation already sent")
		}
	}

	inv := &models.Invitation{
		ID:          uuid.NewString(),
		PartyID:     partyID,
		PartyName:   p.Name,
		InviterID:   inviter.ID,
		InviterName: inviter.Name,
		InviteeID:   inviteeID,
		Status:      models.InvitationPending,
		CreatedAt:   models.NewTimestamp(s.now()),
	}
	s.invitations[inv.ID] = inv
	cp := *inv
	return &cp, nil
}

// PendingInvitations lists invitations awaiting userID's answer, oldest first.
func (s *Store) PendingInvitations(userID string) []models.Invitation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Invitation{}
	for _, inv := range s.invitations {
		if inv.InviteeID == userID && inv.Status == models.InvitationPending {
			out = append(out, *inv)
		}
	}
	slices.SortFunc(out, func(a, b models.Invitation) int {
		return a.CreatedAt.Compare(b.CreatedAt.Time)
	})
	return out
}

func (s *Store) RespondToInvitation(id, status string, by models.User) error {
	if !models.ValidResponse(status) {
		return badRequest("Invalid status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok {
		return notFound("Invitation not found")
	}
	if inv.InviteeID != by.ID {
		return forbidden("Not authorized to respond to this invitation")
	}
	if inv.Status != models.InvitationPending {
		return badRequest("Invitation already processed")
	}

	inv.Status = status
	if status == models.InvitationAccepted {
		if p, ok := s.parties[inv.PartyID]; ok && !p.HasMember(by.ID) {
			p.Members = append(p.Members, by.ID)
		}
	}
	return nil
}
