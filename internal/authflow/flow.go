package authflow

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/SmarabSJJ/ufo-seat-service/internal/linkedin"
	"github.com/SmarabSJJ/ufo-seat-service/internal/observability"
	"github.com/SmarabSJJ/ufo-seat-service/internal/seattoken"
)

// State identifies a stop in the handshake state machine. Transitions are
// linear with error branches; the flow is stateless across requests, with all
// hop-to-hop memory carried by the visitor's cookies and URL parameters.
type State string

const (
	StateStart            State = "START"
	StateTokenOk          State = "TOKEN_OK"
	StateHandshakeStarted State = "HANDSHAKE_STARTED"
	StateProviderCallback State = "PROVIDER_CALLBACK"
	StateCodeExchanged    State = "CODE_EXCHANGED"
	StateProfileFetched   State = "PROFILE_FETCHED"
	StateSessionReady     State = "SESSION_READY"
)

// maxDetailLen bounds the human-readable diagnostic attached to error
// redirects
const maxDetailLen = 200

// Outcome is the tagged result of a single state transition: either the next
// state with whatever the transition produced, or a terminal error code with
// optional detail. The seat token is carried on both branches so that no
// failure strands the visitor without it.
type Outcome struct {
	Next        State
	Token       string
	Code        string
	AccessToken string
	Profile     *linkedin.Profile
	Err         ErrorCode
	Detail      string
}

// Failed reports whether the transition ended in a terminal error
func (o Outcome) Failed() bool {
	return o.Err != ""
}

func failure(code ErrorCode, detail string, token string) Outcome {
	return Outcome{Err: code, Detail: truncateDetail(detail), Token: token}
}

// CallbackParams are the query parameters LinkedIn attaches when redirecting
// the visitor back to us
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Flow drives the handshake state machine. It is transport-free: HTTP
// handlers feed it parameters and cookies and act on the Outcome it returns.
type Flow struct {
	codec    *seattoken.Codec
	provider linkedin.Client
}

func NewFlow(codec *seattoken.Codec, provider linkedin.Client) *Flow {
	return &Flow{codec: codec, provider: provider}
}

// CheckToken runs the START -> TOKEN_OK transition: the token must be
// present, must authenticate, and the seat it carries must satisfy the seat
// format policy. Validation is all-or-nothing; no seat/room value is used
// unless every check passes.
func (f *Flow) CheckToken(token string) Outcome {
	if token == "" {
		return failure(ErrorNoToken, "", "")
	}
	assignment, err := f.codec.Validate(token)
	if err != nil {
		observability.RecordTokenValidationFailure(err)
		return failure(ErrorInvalidToken, "", token)
	}
	if !seattoken.IsValidSeatFormat(assignment.Seat) {
		return failure(ErrorInvalidSeatFormat, "", token)
	}
	return Outcome{Next: StateTokenOk, Token: token}
}

// Begin runs TOKEN_OK -> HANDSHAKE_STARTED. The caller is expected to store
// the pending-token cookie and redirect to the provider with the token
// embedded in the 'state' parameter: cookie and state both carry the token,
// since cookies may not survive a cross-site redirect.
func (f *Flow) Begin(token string) Outcome {
	checked := f.CheckToken(token)
	if checked.Failed() {
		return checked
	}
	return Outcome{Next: StateHandshakeStarted, Token: token}
}

// Resume runs HANDSHAKE_STARTED -> PROVIDER_CALLBACK, recovering the seat
// token preferentially from the provider-echoed 'state', falling back to the
// pending-token cookie. Losing the token entirely is its own terminal error,
// distinct from never having had one.
func (f *Flow) Resume(params CallbackParams, pendingToken string) Outcome {
	token := params.State
	if token == "" || token == "default" {
		token = pendingToken
	}
	if params.Error != "" {
		detail := params.Error
		if params.ErrorDescription != "" {
			detail = params.Error + ": " + params.ErrorDescription
		}
		return failure(ErrorProviderError, detail, token)
	}
	if params.Code == "" {
		return failure(ErrorNoCode, "", token)
	}
	if token == "" {
		return failure(ErrorTokenLostDuringAuth, "", "")
	}
	return Outcome{Next: StateProviderCallback, Token: token, Code: params.Code}
}

// Exchange runs PROVIDER_CALLBACK -> CODE_EXCHANGED, trading the
// authorization code for an access token via LinkedIn's token endpoint.
func (f *Flow) Exchange(ctx context.Context, code string, token string) Outcome {
	accessToken, err := f.provider.ExchangeCode(ctx, code)
	if err != nil {
		statusErr := &linkedin.StatusError{}
		if errors.As(err, &statusErr) {
			return failure(ErrorTokenExchangeFailed, statusErr.Body, token)
		}
		return failure(ErrorTokenExchangeFailed, err.Error(), token)
	}
	return Outcome{Next: StateCodeExchanged, Token: token, AccessToken: accessToken}
}

// FetchProfile runs CODE_EXCHANGED -> PROFILE_FETCHED, calling the userinfo
// endpoint with bearer auth and deriving the display profile. The profile's
// seat id comes from the token; if the token can't be decoded here the seat
// id falls back to "not_set" rather than failing the whole handshake, since
// the token was already validated at START.
func (f *Flow) FetchProfile(ctx context.Context, accessToken string, token string) Outcome {
	if accessToken == "" {
		return failure(ErrorNoAccessToken, "", token)
	}

	userinfo, err := f.provider.FetchUserinfo(ctx, accessToken)
	if err != nil {
		statusErr := &linkedin.StatusError{}
		if errors.As(err, &statusErr) {
			return failure(ErrorProviderApiError, statusErr.Body, token)
		}
		return failure(ErrorFetchError, err.Error(), token)
	}

	profile := linkedin.BuildProfile(userinfo)
	profile.SeatId = "not_set"
	if token != "" {
		if assignment, err := f.codec.Validate(token); err == nil {
			profile.SeatId = assignment.Seat
		}
	}
	return Outcome{Next: StateProfileFetched, Token: token, Profile: &profile}
}

func truncateDetail(detail string) string {
	if len(detail) <= maxDetailLen {
		return detail
	}
	// Back off to a rune boundary so the cut never leaves an invalid UTF-8
	// fragment in the redirect URL
	cut := maxDetailLen
	for cut > 0 && !utf8.RuneStart(detail[cut]) {
		cut--
	}
	return detail[:cut]
}
