package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
	"golang.org/x/oauth2"
)

func (c *Client) passwordConfig() *oauth2.Config {
	return &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// tokenStatus records the status of the token response so a 2xx reply that oauth2 could
// not turn into a token can be told apart from a transport failure.
type tokenStatus struct {
	base   http.RoundTripper
	status int
}

func (t *tokenStatus) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil {
		t.status = resp.StatusCode
	}
	return resp, err
}

func (t *tokenStatus) succeeded() bool {
	return t.status >= 200 && t.status < 300
}

// Login exchanges credentials for an access token using the password grant, which posts
// username and password form-encoded as the token endpoint requires.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	recorder := &tokenStatus{base: c.http.Transport}
	httpClient := *c.http
	httpClient.Transport = recorder
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &httpClient)

	token, err := c.passwordConfig().PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			return "", apiErr
		}
		if recorder.succeeded() {
			c.logger.Warn("token response unusable", "error", err)
			return "", ErrMissingAccessToken
		}
		return "", fmt.Errorf("POST /token: %w", err)
	}
	if token.AccessToken == "" {
		return "", ErrMissingAccessToken
	}
	return token.AccessToken, nil
}

func (c *Client) Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, http.MethodPost, "/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, http.MethodGet, "/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Users returns the full user directory; the API has no lookup-by-name endpoint.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var resp dto.UsersResponse
	if err := c.Do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
