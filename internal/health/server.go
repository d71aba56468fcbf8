package health

import (
	"encoding/json"
	"net/http"
)

// Status tells a caller whether the service is ready to mint and validate
// seat tokens, and whether the LinkedIn handshake is available
type Status struct {
	IsReady bool   `json:"isReady"`
	Message string `json:"message"`
}

type Server struct {
	providerConfigured bool
}

func NewServer(providerConfigured bool) *Server {
	return &Server{providerConfigured: providerConfigured}
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	status := Status{
		IsReady: true,
		Message: "Seat token service is up; LinkedIn sign-in is available.",
	}
	if !s.providerConfigured {
		// Token issuance and validation still work without provider
		// credentials; only the handshake is degraded
		status.Message = "Seat token service is up, but LinkedIn sign-in is not configured."
	}
	if err := json.NewEncoder(res).Encode(status); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}
