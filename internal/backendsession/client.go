package backendsession

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SmarabSJJ/ufo-seat-service/internal/cookies"
	"github.com/SmarabSJJ/ufo-seat-service/internal/linkedin"
)

// Client introspects a backend-issued session by forwarding the visitor's
// auth_session cookie to the backend's "who am I" endpoint. The backend
// itself is a black box; all we know is its introspection URL and the shape
// of a successful response.
type Client interface {
	// FetchProfile returns the profile tied to a backend session id, or nil
	// (with no error) when the backend doesn't recognize the session. A nil
	// profile just means "not signed in" and callers fall back to the
	// provider handshake.
	FetchProfile(ctx context.Context, sessionId string) (*linkedin.Profile, error)
}

// sessionResponse is the JSON body the backend returns for a live session
type sessionResponse struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	LinkedinId string `json:"linkedinId"`
	SeatId     string `json:"seatId"`
}

func NewClient(backendUrl string) Client {
	return &client{
		introspectUrl: fmt.Sprintf("%s/auth/session", backendUrl),
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

type client struct {
	introspectUrl string
	http          *http.Client
}

func (c *client) FetchProfile(ctx context.Context, sessionId string) (*linkedin.Profile, error) {
	if sessionId == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.introspectUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare session request: %w", err)
	}
	// Forward the backend's own cookie verbatim
	req.AddCookie(&http.Cookie{Name: cookies.BackendSession.Name, Value: sessionId})

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer res.Body.Close()

	// Any non-success response means the session is gone or was never valid;
	// that's not an error, the visitor simply isn't signed in
	if res.StatusCode != http.StatusOK {
		return nil, nil
	}

	var parsed sessionResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &linkedin.Profile{
		FirstName:  parsed.FirstName,
		LastName:   parsed.LastName,
		Email:      parsed.Email,
		ExternalId: parsed.LinkedinId,
		SeatId:     parsed.SeatId,
	}, nil
}

var _ Client = (*client)(nil)
