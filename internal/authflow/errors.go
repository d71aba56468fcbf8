package authflow

// ErrorCode identifies one terminal failure of the auth handshake. Every
// failure maps to exactly one code, surfaced to the visitor as the 'error'
// query parameter on the landing redirect so they can retry without
// re-scanning their QR code.
type ErrorCode string

const (
	// ErrorNoToken means the entry point was reached without a seat token
	ErrorNoToken ErrorCode = "no_token"
	// ErrorInvalidToken covers every codec-level failure: malformed,
	// tampered, or corrupt tokens all collapse to this single visitor-facing
	// outcome
	ErrorInvalidToken ErrorCode = "invalid_token"
	// ErrorInvalidSeatFormat means the token decrypted fine but the seat it
	// carries fails the current format policy
	ErrorInvalidSeatFormat ErrorCode = "invalid_seat_format"
	// ErrorTokenLostDuringAuth means neither the 'state' parameter nor the
	// pending-token cookie survived the provider redirect
	ErrorTokenLostDuringAuth ErrorCode = "token_lost_during_auth"
	// ErrorProviderNotConfigured means the LinkedIn client credentials are
	// missing from the server configuration
	ErrorProviderNotConfigured ErrorCode = "linkedin_not_configured"
	// ErrorConfigError means the callback was reached without provider
	// credentials configured, so the code exchange can't even be attempted
	ErrorConfigError ErrorCode = "config_error"
	// ErrorProviderError means LinkedIn reported an error on the callback
	// (e.g. the visitor denied access)
	ErrorProviderError ErrorCode = "provider_error"
	// ErrorNoCode means the callback arrived without an authorization code
	ErrorNoCode ErrorCode = "no_code"
	// ErrorTokenExchangeFailed means LinkedIn's token endpoint rejected the
	// authorization code
	ErrorTokenExchangeFailed ErrorCode = "token_exchange_failed"
	// ErrorProviderApiError means the userinfo endpoint returned a
	// non-success response
	ErrorProviderApiError ErrorCode = "linkedin_api_error"
	// ErrorNoAccessToken means a profile fetch was attempted without a
	// stored access token
	ErrorNoAccessToken ErrorCode = "no_access_token"
	// ErrorFetchError covers unexpected failures during profile retrieval
	ErrorFetchError ErrorCode = "fetch_error"
)
