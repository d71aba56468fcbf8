package authflow

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/SmarabSJJ/ufo-seat-service/internal/cookies"
	"github.com/SmarabSJJ/ufo-seat-service/internal/linkedin"
	"github.com/SmarabSJJ/ufo-seat-service/internal/observability"
)

type Server struct {
	flow       *Flow
	provider   linkedin.Client
	jar        cookies.Jar
	landingUrl string
	configured bool
}

// NewServer wires the handshake handlers. landingUrl is the absolute URL of
// the seat page that every hop ultimately redirects back to; configured
// should be false when the LinkedIn client credentials are missing, in which
// case starting a handshake fails fast instead of redirecting the visitor to
// a broken provider URL.
func NewServer(flow *Flow, provider linkedin.Client, jar cookies.Jar, landingUrl string, configured bool) *Server {
	return &Server{
		flow:       flow,
		provider:   provider,
		jar:        jar,
		landingUrl: landingUrl,
		configured: configured,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	// The three hops of the handshake: start stores the pending token and
	// sends the visitor to LinkedIn; callback trades the code for an access
	// token; fetch retrieves the profile and lands the visitor back on the
	// seat page
	r.Path("/auth/linkedin/start").Methods("GET").HandlerFunc(s.handleStart)
	r.Path("/auth/linkedin/callback").Methods("GET").HandlerFunc(s.handleCallback)
	r.Path("/auth/linkedin/fetch").Methods("GET").HandlerFunc(s.handleFetch)
}

func (s *Server) handleStart(res http.ResponseWriter, req *http.Request) {
	token := req.URL.Query().Get("token")
	if !s.configured {
		s.redirectFailure(res, req, failure(ErrorProviderNotConfigured, "", token))
		return
	}

	outcome := s.flow.Begin(token)
	if outcome.Failed() {
		s.redirectFailure(res, req, outcome)
		return
	}

	// Belt and braces: the token rides in the pending cookie and in the
	// provider's opaque 'state' parameter, so it survives the round trip even
	// if one of the two gets dropped
	s.jar.Set(res, cookies.PendingToken, outcome.Token)
	forceLogin := req.URL.Query().Get("force") == "true"
	http.Redirect(res, req, s.provider.BuildAuthorizeUrl(outcome.Token, forceLogin), http.StatusFound)
}

func (s *Server) handleCallback(res http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	params := CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}

	outcome := s.flow.Resume(params, cookies.Read(req, cookies.PendingToken))
	if outcome.Failed() {
		s.redirectFailure(res, req, outcome)
		return
	}

	// The callback can be reached directly, bypassing the start hop's config
	// check; exchanging a code with empty credentials would produce a
	// misleading provider rejection
	if !s.configured {
		s.redirectFailure(res, req, failure(ErrorConfigError, "", outcome.Token))
		return
	}

	exchanged := s.flow.Exchange(req.Context(), outcome.Code, outcome.Token)
	if exchanged.Failed() {
		s.redirectFailure(res, req, exchanged)
		return
	}

	s.jar.Set(res, cookies.ProviderAccessToken, exchanged.AccessToken)
	http.Redirect(res, req, fmt.Sprintf("/auth/linkedin/fetch?token=%s", url.QueryEscape(exchanged.Token)), http.StatusFound)
}

func (s *Server) handleFetch(res http.ResponseWriter, req *http.Request) {
	token := req.URL.Query().Get("token")
	accessToken := cookies.Read(req, cookies.ProviderAccessToken)

	outcome := s.flow.FetchProfile(req.Context(), accessToken, token)
	if outcome.Failed() {
		s.redirectFailure(res, req, outcome)
		return
	}

	encoded, err := cookies.EncodeProfile(outcome.Profile)
	if err != nil {
		s.redirectFailure(res, req, failure(ErrorFetchError, err.Error(), token))
		return
	}

	// The access token has done its job; only the cached profile survives
	s.jar.Set(res, cookies.CachedProfile, encoded)
	s.jar.Clear(res, cookies.ProviderAccessToken)

	observability.HandshakeOutcomes.WithLabelValues("connected").Inc()
	observability.LoggerFromContext(req.Context()).WithField("externalId", outcome.Profile.ExternalId).Info("handshake complete")

	q := url.Values{}
	q.Set("linkedin", "connected")
	if outcome.Token != "" {
		q.Set("token", outcome.Token)
	}
	http.Redirect(res, req, fmt.Sprintf("%s?%s", s.landingUrl, q.Encode()), http.StatusFound)
}

// redirectFailure surfaces a terminal handshake error to the visitor: back to
// the landing page with a machine-readable error code, bounded diagnostic
// detail, and the seat token re-attached where still known so they can retry
// without re-scanning.
func (s *Server) redirectFailure(res http.ResponseWriter, req *http.Request, outcome Outcome) {
	observability.HandshakeOutcomes.WithLabelValues(string(outcome.Err)).Inc()
	observability.LoggerFromContext(req.Context()).WithFields(map[string]interface{}{
		"error":  string(outcome.Err),
		"detail": outcome.Detail,
	}).Warn("handshake failed")

	q := url.Values{}
	q.Set("error", string(outcome.Err))
	if outcome.Detail != "" {
		q.Set("details", outcome.Detail)
	}
	if outcome.Token != "" {
		q.Set("token", outcome.Token)
	}
	http.Redirect(res, req, fmt.Sprintf("%s?%s", s.landingUrl, q.Encode()), http.StatusFound)
}
