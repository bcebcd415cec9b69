package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dimitrije/valtokens/internal/authform"
	"github.com/dimitrije/valtokens/internal/listing"
	"github.com/dimitrije/valtokens/internal/models"
)

func (m *Model) View() string {
	switch m.screen {
	case screenAuth:
		return m.viewAuth()
	case screenMain:
		return m.viewMain()
	}
	return mutedStyle.Render("Checking session...")
}

func (m *Model) viewAuth() string {
	st := m.form.State()

	var b strings.Builder
	title := "Login"
	other := "sign up"
	if st.Mode == authform.ModeSignup {
		title = "Sign up"
		other = "login"
	}
	b.WriteString(titleStyle.Render("valtokens · " + title))
	b.WriteString("\n")

	labels := []string{"Email", "Password", "Name"}
	for i := 0; i < m.fieldCount(); i++ {
		label := mutedStyle.Render(fmt.Sprintf("%-9s", labels[i]))
		if i == m.focus {
			label = cursorStyle.Render(fmt.Sprintf("%-9s", labels[i]))
		}
		b.WriteString(label + " " + m.fields[i].View() + "\n")
	}

	if st.Error != "" {
		b.WriteString("\n" + errorStyle.Render(st.Error) + "\n")
	}
	if st.Submitting {
		b.WriteString("\n" + mutedStyle.Render("Submitting...") + "\n")
	}

	b.WriteString(helpStyle.Render("tab next field · enter submit · ctrl+t " + other + " · ctrl+c quit"))
	return box(b.String(), 0)
}

func (m *Model) viewMain() string {
	st := m.listing.Snapshot()

	var b strings.Builder
	header := "valtokens"
	if st.User != nil {
		header += " · " + st.User.Name
	}
	b.WriteString(titleStyle.Render(header + " · " + viewTitle(st.View)))
	b.WriteString("\n")

	if st.Success != "" {
		b.WriteString(successStyle.Render(st.Success) + "\n")
	}
	if st.Error != "" {
		b.WriteString(errorStyle.Render(st.Error) + "\n")
	}

	var body, help string
	switch st.View {
	case listing.ViewHome:
		body = "Parties: " + fmt.Sprint(len(st.Parties)) + "\nPending invitations: " + fmt.Sprint(len(st.Invitations))
		help = "p parties · g games · l logout · q quit"
	case listing.ViewParties:
		body = m.viewParties(st)
		help = "↑/↓ move · enter select · n new · i invite · d delete · a/x accept/decline invitation · esc back"
	case listing.ViewGames:
		body = m.viewGames(st)
		help = "↑/↓ move · enter join · r ready · w/o report win/loss · v leave · d delete · tab party · c create · esc back"
	case listing.ViewCreateGame:
		body = m.viewCreateGame(st)
		help = "1 ffa · 2 4v4 · 3 5v5 · tab party · enter create · esc back"
	}
	b.WriteString(body)

	if m.prompt != promptNone {
		b.WriteString("\n\n" + cursorStyle.Render("> ") + m.input.View())
		help = "enter confirm · esc cancel"
	}

	b.WriteString("\n" + helpStyle.Render(help))
	return box(b.String(), m.width-4)
}

func viewTitle(v listing.View) string {
	switch v {
	case listing.ViewParties:
		return "Parties"
	case listing.ViewGames:
		return "Games"
	case listing.ViewCreateGame:
		return "Create game"
	}
	return "Home"
}

func (m *Model) viewParties(st listing.State) string {
	var b strings.Builder

	if len(st.Parties) == 0 {
		b.WriteString(mutedStyle.Render("You are not in any party yet."))
	}
	for i, p := range st.Parties {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%s (%d members)", p.Name, p.Size())
		if st.SelectedParty != nil && st.SelectedParty.ID == p.ID {
			line = successStyle.Render(line + " [selected]")
		} else {
			line = textStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	if st.SelectedParty != nil && len(st.PartyMembers) > 0 {
		b.WriteString("\n" + bold(clrTitle).Render("Members") + "\n")
		for _, id := range st.SelectedParty.Members {
			name := st.PartyMembers[id]
			if name == "" {
				name = id
			}
			if id == st.SelectedParty.CreatorID {
				name += " (creator)"
			}
			b.WriteString("  " + name + "\n")
		}
	}

	if len(st.Invitations) > 0 {
		b.WriteString("\n" + bold(clrTitle).Render("Invitations") + "\n")
		for _, inv := range st.Invitations {
			b.WriteString(fmt.Sprintf("  %s from %s\n", inv.PartyName, inv.InviterName))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func gameRow(g models.Game) string {
	return fmt.Sprintf("%-4s %-15s %-16s %-14s %d/%d",
		g.Format, g.Status, truncate(g.PartyName, 16), truncate(g.CreatorName, 14), len(g.Players), g.MaxPlayers)
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}

func (m *Model) viewGames(st listing.State) string {
	var b strings.Builder

	if st.SelectedParty != nil {
		b.WriteString(mutedStyle.Render("Party: "+st.SelectedParty.Name) + "\n\n")
	}
	if len(st.Games) == 0 {
		b.WriteString(mutedStyle.Render("No games listed."))
		return b.String()
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-4s %-15s %-16s %-14s %s", "fmt", "status", "party", "creator", "players")) + "\n")
	for i, g := range st.Games {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		row := gameRow(g)
		if st.User != nil && g.HasPlayer(st.User.ID) {
			row = successStyle.Render(row)
		} else {
			row = textStyle.Render(row)
		}
		b.WriteString(marker + row + "\n")
	}

	if m.cursor < len(st.Games) {
		b.WriteString("\n" + m.gameActions(st, st.Games[m.cursor]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) gameActions(st listing.State, g models.Game) string {
	var actions []string
	if listing.CanJoin(st.User, &g) {
		actions = append(actions, "join")
	}
	if listing.CanReadyUp(st.User, &g) {
		actions = append(actions, "ready")
	}
	if listing.CanReport(st.User, &g) {
		actions = append(actions, "report")
	}
	if listing.CanLeave(st.User, &g) {
		actions = append(actions, "leave")
	}
	if listing.CanDelete(st.User, &g) {
		actions = append(actions, "delete")
	}
	if g.MatchResult != nil {
		return mutedStyle.Render(fmt.Sprintf("Winner: %s · Loser: %s · %s",
			g.MatchResult.WinnerName, g.MatchResult.LoserName, g.MatchResult.Score))
	}
	if len(actions) == 0 {
		return mutedStyle.Render("No actions available")
	}
	return mutedStyle.Render("Available: " + strings.Join(actions, ", "))
}

func (m *Model) viewCreateGame(st listing.State) string {
	var b strings.Builder

	b.WriteString("Format: ")
	for _, f := range listing.UIFormats {
		label := " " + f + " "
		if f == st.GameFormat {
			b.WriteString(cursorStyle.Render("[" + f + "]"))
		} else {
			b.WriteString(mutedStyle.Render(label))
		}
	}
	b.WriteString("\n")

	if listing.ServerFormat(st.GameFormat).IsTeam() {
		valid := m.listing.ValidParties(st.GameFormat)
		if len(valid) == 0 {
			b.WriteString(errorStyle.Render("You have no party of the right size for this format.") + "\n")
		}
		selected := "none"
		if st.SelectedParty != nil {
			selected = st.SelectedParty.Name
		}
		b.WriteString("Party: " + textStyle.Render(selected) + "\n")
	}

	if st.HasCreatedGame {
		games := m.listing.FilteredGames()
		b.WriteString("\n" + bold(clrTitle).Render("Open "+st.GameFormat+" games") + "\n")
		if len(games) == 0 {
			b.WriteString(mutedStyle.Render("none"))
		}
		for _, g := range games {
			b.WriteString("  " + gameRow(g) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
