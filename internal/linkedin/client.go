package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	AuthorizeUrl = "https://www.linkedin.com/oauth/v2/authorization"
	tokenUrl     = "https://www.linkedin.com/oauth/v2/accessToken"
	userinfoUrl  = "https://api.linkedin.com/v2/userinfo"

	// OpenID Connect scopes required to hit the userinfo endpoint
	oauthScopes = "openid profile email"

	// maxErrorDetailLen bounds how much of a provider error body we carry
	// around in redirect URLs and logs
	maxErrorDetailLen = 200
)

// ErrNoAccessToken is returned when LinkedIn's token endpoint responds with
// success but the response body carries no access token
var ErrNoAccessToken = errors.New("access token missing in token response")

// StatusError carries a non-success HTTP status from LinkedIn along with a
// truncated copy of the response body, suitable for surfacing to the visitor
// as diagnostic detail
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("got %d response from LinkedIn: %s", e.StatusCode, e.Body)
}

// Client handles the server-to-server legs of the LinkedIn OAuth handshake
type Client interface {
	BuildAuthorizeUrl(state string, forceLogin bool) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchUserinfo(ctx context.Context, accessToken string) (*Userinfo, error)
}

// NewClient returns a Client that talks to the real LinkedIn API, using the
// app credentials registered for this deployment. All outbound calls share a
// bounded timeout so a stalled provider can't hang a visitor's request
// indefinitely.
func NewClient(clientId string, clientSecret string, redirectUri string) Client {
	return &client{
		clientId:     clientId,
		clientSecret: clientSecret,
		redirectUri:  redirectUri,
		tokenUrl:     tokenUrl,
		userinfoUrl:  userinfoUrl,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

type client struct {
	clientId     string
	clientSecret string
	redirectUri  string
	tokenUrl     string
	userinfoUrl  string
	http         *http.Client
}

func (c *client) BuildAuthorizeUrl(state string, forceLogin bool) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientId)
	q.Set("redirect_uri", c.redirectUri)
	q.Set("state", state)
	q.Set("scope", oauthScopes)
	if forceLogin {
		// prompt=select_account forces the account chooser, letting the
		// visitor reconnect with a different LinkedIn account
		q.Set("prompt", "select_account")
	}
	return fmt.Sprintf("%s?%s", AuthorizeUrl, q.Encode())
}

func (c *client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectUri)
	form.Set("client_id", c.clientId)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenUrl, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to prepare token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: res.StatusCode, Body: readErrorDetail(res.Body)}
	}

	var parsed TokenResponse
	if err := decodeJson(res.Body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return parsed.AccessToken, nil
}

func (c *client) FetchUserinfo(ctx context.Context, accessToken string) (*Userinfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare userinfo request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: res.StatusCode, Body: readErrorDetail(res.Body)}
	}

	var parsed Userinfo
	if err := decodeJson(res.Body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	return &parsed, nil
}

// readErrorDetail drains at most maxErrorDetailLen bytes of an error response
// body so that large provider error pages never leak into redirect URLs
func readErrorDetail(body io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(body, maxErrorDetailLen))
	if err != nil {
		return ""
	}
	return string(b)
}

var _ Client = (*client)(nil)
