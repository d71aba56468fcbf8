package gate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/SmarabSJJ/ufo-seat-service/internal/authflow"
	"github.com/SmarabSJJ/ufo-seat-service/internal/backendsession"
	"github.com/SmarabSJJ/ufo-seat-service/internal/cookies"
	"github.com/SmarabSJJ/ufo-seat-service/internal/linkedin"
	"github.com/SmarabSJJ/ufo-seat-service/internal/observability"
	"github.com/SmarabSJJ/ufo-seat-service/internal/seattoken"
)

// View is what the landing page needs to render for a valid token: the
// decoded assignment, plus the visitor's profile if they've already connected
type View struct {
	Seat      string            `json:"seat"`
	Room      string            `json:"room"`
	Connected bool              `json:"connected"`
	Profile   *linkedin.Profile `json:"profile,omitempty"`
}

type Server struct {
	codec      *seattoken.Codec
	backend    backendsession.Client
	jar        cookies.Jar
	landingUrl string
}

func NewServer(codec *seattoken.Codec, backend backendsession.Client, jar cookies.Jar, landingUrl string) *Server {
	return &Server{
		codec:      codec,
		backend:    backend,
		jar:        jar,
		landingUrl: landingUrl,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/api/seat").Methods("GET").HandlerFunc(s.handleSeat)
	r.Path("/api/get-pending-token").Methods("GET").HandlerFunc(s.handleGetPendingToken)
	r.Path("/api/clear-cookies").Methods("GET").HandlerFunc(s.handleClearCookies)
	r.Path("/api/save-user-data").Methods("POST").HandlerFunc(s.handleSaveUserData)
}

// handleSeat gates access to the landing page: no token or a bad token means
// a redirect with a specific error code, never a silently rendered form.
func (s *Server) handleSeat(res http.ResponseWriter, req *http.Request) {
	token := req.URL.Query().Get("token")
	if token == "" {
		s.redirectError(res, req, authflow.ErrorNoToken, "")
		return
	}

	assignment, err := s.codec.Validate(token)
	if err != nil {
		observability.RecordTokenValidationFailure(err)
		s.redirectError(res, req, authflow.ErrorInvalidToken, token)
		return
	}
	// Token validity doesn't imply the encoded seat obeys the current format
	// policy; re-check it after decoding
	if !seattoken.IsValidSeatFormat(assignment.Seat) {
		s.redirectError(res, req, authflow.ErrorInvalidSeatFormat, token)
		return
	}

	profile := s.resolveProfile(req, assignment.Seat)
	view := View{
		Seat:      assignment.Seat,
		Room:      assignment.Room,
		Connected: profile != nil,
		Profile:   profile,
	}
	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(view); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

// resolveProfile prefers the cached-profile cookie, then falls back to
// introspecting the backend session. Both missing just means the visitor
// hasn't connected yet.
func (s *Server) resolveProfile(req *http.Request, seat string) *linkedin.Profile {
	state := cookies.ReadAuthState(req)
	if profile := cookies.DecodeProfile(state.CachedProfile); profile != nil {
		return profile
	}

	profile, err := s.backend.FetchProfile(req.Context(), state.BackendSessionID)
	if err != nil {
		// A flaky backend shouldn't block the seat page; log and carry on as
		// "not signed in"
		observability.LoggerFromContext(req.Context()).WithError(err).Warn("backend session lookup failed")
		return nil
	}
	if profile != nil && profile.SeatId == "" {
		profile.SeatId = seat
	}
	return profile
}

func (s *Server) handleGetPendingToken(res http.ResponseWriter, req *http.Request) {
	// Surfaces the pending-token cookie so a post-handshake page can recover
	// the token; the cookie is left in place until it expires on its own
	var payload struct {
		Token *string `json:"token"`
	}
	if value := cookies.Read(req, cookies.PendingToken); value != "" {
		payload.Token = &value
	}
	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(payload); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

// handleClearCookies resets every handshake cookie and re-enters the landing
// page with the same token, so the visitor can redo the handshake without
// re-scanning their QR code.
func (s *Server) handleClearCookies(res http.ResponseWriter, req *http.Request) {
	s.jar.ClearAuthState(res)

	q := url.Values{}
	if token := req.URL.Query().Get("token"); token != "" {
		q.Set("token", token)
	}
	target := s.landingUrl
	if len(q) > 0 {
		target = fmt.Sprintf("%s?%s", s.landingUrl, q.Encode())
	}
	http.Redirect(res, req, target, http.StatusFound)
}

type saveUserDataRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	LinkedinUrl string `json:"linkedinUrl"`
	Seat        string `json:"seat"`
}

// handleSaveUserData merges manually-entered identity fields into the cached
// profile cookie: the form fallback for visitors who skip the LinkedIn
// handshake entirely.
func (s *Server) handleSaveUserData(res http.ResponseWriter, req *http.Request) {
	var body saveUserDataRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(res, "request body must be valid JSON", http.StatusBadRequest)
		return
	}
	if body.FirstName == "" || body.LastName == "" || body.Email == "" {
		http.Error(res, "firstName, lastName, and email are required", http.StatusBadRequest)
		return
	}

	merged := linkedin.Profile{}
	if existing := cookies.DecodeProfile(cookies.Read(req, cookies.CachedProfile)); existing != nil {
		merged = *existing
	}
	merged.FirstName = body.FirstName
	merged.LastName = body.LastName
	merged.Email = body.Email
	if body.LinkedinUrl != "" {
		merged.ExternalId = body.LinkedinUrl
	}
	if body.Seat != "" {
		merged.SeatId = body.Seat
	}

	encoded, err := cookies.EncodeProfile(&merged)
	if err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	s.jar.Set(res, cookies.CachedProfile, encoded)

	payload := struct {
		Success bool             `json:"success"`
		Data    linkedin.Profile `json:"data"`
	}{
		Success: true,
		Data:    merged,
	}
	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(payload); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) redirectError(res http.ResponseWriter, req *http.Request, code authflow.ErrorCode, token string) {
	q := url.Values{}
	q.Set("error", string(code))
	if token != "" {
		q.Set("token", token)
	}
	http.Redirect(res, req, fmt.Sprintf("%s?%s", s.landingUrl, q.Encode()), http.StatusFound)
}
