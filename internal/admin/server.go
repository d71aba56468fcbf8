package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/SmarabSJJ/ufo-seat-service/internal/observability"
	"github.com/SmarabSJJ/ufo-seat-service/internal/seattoken"
)

// defaultRoom is assumed when a token is issued without an explicit room
const defaultRoom = "100"

// Server exposes the administrative token endpoints: issuing a new seat token
// (for printing QR codes) and decoding an existing one.
type Server struct {
	codec *seattoken.Codec
}

func NewServer(codec *seattoken.Codec) *Server {
	return &Server{codec: codec}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/api/generate-token").Methods("GET").HandlerFunc(s.handleGenerateToken)
	r.Path("/api/token/decode").Methods("GET").HandlerFunc(s.handleDecodeToken)
}

type generateTokenResponse struct {
	Success   bool   `json:"success"`
	Seat      string `json:"seat"`
	Room      string `json:"room"`
	Token     string `json:"token"`
	Url       string `json:"url"`
	QrCodeUrl string `json:"qrCodeUrl"`
}

func (s *Server) handleGenerateToken(res http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	seat := strings.TrimSpace(q.Get("seat"))
	if seat == "" {
		writeJsonError(res, http.StatusBadRequest, "'seat' URL parameter is required")
		return
	}
	room := strings.TrimSpace(q.Get("room"))
	if room == "" {
		room = defaultRoom
	}

	if !seattoken.IsValidSeatFormat(seat) {
		writeJsonError(res, http.StatusBadRequest, "seat must start with 0 or 1, followed by digits (e.g. 01, 11, 012, 112)")
		return
	}

	token, err := s.codec.Generate(seat, room)
	if err != nil {
		writeJsonError(res, http.StatusInternalServerError, "failed to generate token")
		return
	}
	observability.TokensIssued.Inc()
	observability.LoggerFromContext(req.Context()).WithField("seat", seat).Info("issued seat token")

	// The shareable URL points at the service's own root, derived from the
	// incoming request the same way the QR codes are printed
	shareUrl := fmt.Sprintf("%s/?token=%s", resolveRootUrl(req), url.QueryEscape(token))
	writeJson(res, generateTokenResponse{
		Success:   true,
		Seat:      seat,
		Room:      room,
		Token:     token,
		Url:       shareUrl,
		QrCodeUrl: shareUrl,
	})
}

type decodeTokenResponse struct {
	Success bool   `json:"success"`
	Seat    string `json:"seat"`
	Room    string `json:"room"`
}

// handleDecodeToken decodes a token back into seat and room, for client
// pages that only have the token from the URL
func (s *Server) handleDecodeToken(res http.ResponseWriter, req *http.Request) {
	token := strings.TrimSpace(req.URL.Query().Get("token"))
	if token == "" {
		writeJsonError(res, http.StatusBadRequest, "'token' URL parameter is required")
		return
	}

	assignment, err := s.codec.Validate(token)
	if err != nil {
		writeJsonError(res, http.StatusBadRequest, "invalid or tampered token")
		return
	}
	writeJson(res, decodeTokenResponse{
		Success: true,
		Seat:    assignment.Seat,
		Room:    assignment.Room,
	})
}

func resolveRootUrl(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, req.Host)
}

func writeJson(res http.ResponseWriter, payload any) {
	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(payload); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

func writeJsonError(res http.ResponseWriter, statusCode int, message string) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	json.NewEncoder(res).Encode(struct {
		Error string `json:"error"`
	}{Error: message})
}
