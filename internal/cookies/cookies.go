package cookies

import (
	"net/http"
	"time"
)

// Spec names one of the short-lived cookies that serve as hop-to-hop memory
// during the auth handshake. All state between redirects lives in the
// visitor's cookie jar, never in server memory.
type Spec struct {
	Name string
	TTL  time.Duration
}

var (
	// PendingToken carries the seat token across the provider redirect, in
	// case the 'state' parameter doesn't make it back intact
	PendingToken = Spec{Name: "pending_seat_token", TTL: 10 * time.Minute}

	// ProviderAccessToken holds the LinkedIn access token between the code
	// exchange and the profile fetch; it is deleted as soon as the profile
	// has been retrieved
	ProviderAccessToken = Spec{Name: "linkedin_access_token", TTL: 1 * time.Hour}

	// CachedProfile holds the JSON-encoded profile for display on the seat
	// page
	CachedProfile = Spec{Name: "linkedin_data", TTL: 24 * time.Hour}

	// BackendSession is issued by the backend session service; its lifetime
	// is backend-defined, so we never set it ourselves, only read and clear it
	BackendSession = Spec{Name: "auth_session"}
)

// AuthState is a point-in-time snapshot of the handshake cookies attached to
// a request. Empty fields mean the corresponding cookie is absent or expired.
type AuthState struct {
	PendingToken        string
	ProviderAccessToken string
	CachedProfile       string
	BackendSessionID    string
}

// Jar issues and clears handshake cookies with consistent flags. Cookies are
// always http-only and scoped to the whole site; Secure is enabled in
// production deployments.
type Jar struct {
	Secure bool
}

// Set writes the cookie described by spec, with its TTL applied as Max-Age.
func (j Jar) Set(res http.ResponseWriter, spec Spec, value string) {
	http.SetCookie(res, &http.Cookie{
		Name:     spec.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(spec.TTL.Seconds()),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear instructs the client to drop the cookie described by spec.
func (j Jar) Clear(res http.ResponseWriter, spec Spec) {
	http.SetCookie(res, &http.Cookie{
		Name:     spec.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthState drops every handshake cookie, returning the visitor to a
// clean pre-handshake state. The seat token itself lives in the URL, so it
// survives.
func (j Jar) ClearAuthState(res http.ResponseWriter) {
	j.Clear(res, PendingToken)
	j.Clear(res, ProviderAccessToken)
	j.Clear(res, CachedProfile)
	j.Clear(res, BackendSession)
}

// Read returns the value of the cookie described by spec, or "" if absent.
func Read(req *http.Request, spec Spec) string {
	cookie, err := req.Cookie(spec.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ReadAuthState snapshots all handshake cookies from a request in one shot.
func ReadAuthState(req *http.Request) AuthState {
	return AuthState{
		PendingToken:        Read(req, PendingToken),
		ProviderAccessToken: Read(req, ProviderAccessToken),
		CachedProfile:       Read(req, CachedProfile),
		BackendSessionID:    Read(req, BackendSession),
	}
}
