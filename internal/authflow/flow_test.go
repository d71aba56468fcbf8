package authflow

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/pbkdf2"

	"github.com/SmarabSJJ/ufo-seat-service/internal/linkedin"
	"github.com/SmarabSJJ/ufo-seat-service/internal/observability"
	"github.com/SmarabSJJ/ufo-seat-service/internal/seattoken"
)

const testSecret = "flow-test-secret"

// mockProviderClient stands in for the LinkedIn API in flow and handler tests
type mockProviderClient struct {
	exchangeErr error
	userinfoErr error
	userinfo    linkedin.Userinfo
}

func (m *mockProviderClient) BuildAuthorizeUrl(state string, forceLogin bool) string {
	suffix := ""
	if forceLogin {
		suffix = "&prompt=select_account"
	}
	return fmt.Sprintf("https://provider.example.com/authorize?state=%s%s", state, suffix)
}

func (m *mockProviderClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	if m.exchangeErr != nil {
		return "", m.exchangeErr
	}
	if code != "mock-authorization-code" {
		return "", &linkedin.StatusError{StatusCode: 400, Body: `{"error":"invalid_grant"}`}
	}
	return "mock-access-token", nil
}

func (m *mockProviderClient) FetchUserinfo(ctx context.Context, accessToken string) (*linkedin.Userinfo, error) {
	if m.userinfoErr != nil {
		return nil, m.userinfoErr
	}
	if accessToken != "mock-access-token" {
		return nil, &linkedin.StatusError{StatusCode: 401, Body: "token expired"}
	}
	u := m.userinfo
	return &u, nil
}

var _ linkedin.Client = (*mockProviderClient)(nil)

func newTestFlow(provider linkedin.Client) (*Flow, *seattoken.Codec) {
	codec := seattoken.NewCodec(testSecret)
	return NewFlow(codec, provider), codec
}

func Test_Flow_CheckToken(t *testing.T) {
	flow, codec := newTestFlow(&mockProviderClient{})
	validToken, err := codec.Generate("012", "100")
	assert.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		wantNext  State
		wantErr   ErrorCode
	}{
		{"valid token passes", validToken, StateTokenOk, ""},
		{"missing token", "", "", ErrorNoToken},
		{"garbage token", "not-a-real-token", "", ErrorInvalidToken},
	}
	for _, tt := range tests {
		outcome := flow.CheckToken(tt.token)
		assert.Equal(t, tt.wantNext, outcome.Next, tt.name)
		assert.Equal(t, tt.wantErr, outcome.Err, tt.name)
	}
}

func Test_Flow_CheckToken_enforcesSeatFormatAfterDecode(t *testing.T) {
	// A cryptographically valid token can still carry a seat that violates
	// the format policy, e.g. one minted before the policy changed. Generate
	// refuses such seats, so seal the plaintext by hand with the same
	// key-derivation scheme.
	flow, _ := newTestFlow(&mockProviderClient{})
	outcome := flow.CheckToken(sealRawToken(t, testSecret, "99:100"))
	assert.Equal(t, ErrorInvalidSeatFormat, outcome.Err)
}

// sealRawToken encrypts an arbitrary plaintext exactly the way the codec
// does, bypassing the codec's own input validation
func sealRawToken(t *testing.T, secret string, plaintext string) string {
	t.Helper()
	salt := sha256.Sum256([]byte(secret))
	key := pbkdf2.Key([]byte(secret), salt[:], 100000, 32, sha256.New)
	block, err := aes.NewCipher(key)
	assert.NoError(t, err)
	aead, err := cipher.NewGCMWithNonceSize(block, 16)
	assert.NoError(t, err)
	iv := make([]byte, 16)
	_, err = rand.Read(iv)
	assert.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(aead.Seal(iv, iv, []byte(plaintext), nil))
}

func Test_Flow_Resume(t *testing.T) {
	flow, _ := newTestFlow(&mockProviderClient{})
	tests := []struct {
		name         string
		params       CallbackParams
		pendingToken string
		wantNext     State
		wantErr      ErrorCode
		wantToken    string
	}{
		{
			"token recovered from state",
			CallbackParams{Code: "abc", State: "token-from-state"},
			"token-from-cookie",
			StateProviderCallback,
			"",
			"token-from-state",
		},
		{
			"token falls back to pending cookie when state is empty",
			CallbackParams{Code: "abc"},
			"token-from-cookie",
			StateProviderCallback,
			"",
			"token-from-cookie",
		},
		{
			"the 'default' state sentinel is not a token",
			CallbackParams{Code: "abc", State: "default"},
			"token-from-cookie",
			StateProviderCallback,
			"",
			"token-from-cookie",
		},
		{
			"provider-reported error preserves the token",
			CallbackParams{State: "token-from-state", Error: "user_cancelled_authorize"},
			"",
			"",
			ErrorProviderError,
			"token-from-state",
		},
		{
			"missing code preserves the token",
			CallbackParams{State: "token-from-state"},
			"",
			"",
			ErrorNoCode,
			"token-from-state",
		},
		{
			"token unrecoverable is its own terminal error",
			CallbackParams{Code: "abc"},
			"",
			"",
			ErrorTokenLostDuringAuth,
			"",
		},
	}
	for _, tt := range tests {
		outcome := flow.Resume(tt.params, tt.pendingToken)
		assert.Equal(t, tt.wantNext, outcome.Next, tt.name)
		assert.Equal(t, tt.wantErr, outcome.Err, tt.name)
		assert.Equal(t, tt.wantToken, outcome.Token, tt.name)
	}
}

func Test_Flow_Resume_providerErrorDetail(t *testing.T) {
	flow, _ := newTestFlow(&mockProviderClient{})
	outcome := flow.Resume(CallbackParams{
		State:            "tok",
		Error:            "access_denied",
		ErrorDescription: "the member declined",
	}, "")
	assert.Equal(t, ErrorProviderError, outcome.Err)
	assert.Equal(t, "access_denied: the member declined", outcome.Detail)
}

func Test_Flow_Exchange(t *testing.T) {
	flow, _ := newTestFlow(&mockProviderClient{})

	outcome := flow.Exchange(context.Background(), "mock-authorization-code", "the-token")
	assert.Equal(t, StateCodeExchanged, outcome.Next)
	assert.Equal(t, "mock-access-token", outcome.AccessToken)
	assert.Equal(t, "the-token", outcome.Token)

	failed := flow.Exchange(context.Background(), "wrong-code", "the-token")
	assert.Equal(t, ErrorTokenExchangeFailed, failed.Err)
	assert.Equal(t, `{"error":"invalid_grant"}`, failed.Detail)
	assert.Equal(t, "the-token", failed.Token)
}

func Test_Flow_Exchange_truncatesLongDetails(t *testing.T) {
	flow, _ := newTestFlow(&mockProviderClient{
		exchangeErr: fmt.Errorf("%s", strings.Repeat("e", 1000)),
	})
	outcome := flow.Exchange(context.Background(), "any", "tok")
	assert.Equal(t, ErrorTokenExchangeFailed, outcome.Err)
	assert.Len(t, outcome.Detail, maxDetailLen)
}

func Test_Flow_Exchange_truncationKeepsDetailValidUtf8(t *testing.T) {
	// "€" is 3 bytes, so a byte-offset cut at 200 would land mid-rune
	flow, _ := newTestFlow(&mockProviderClient{
		exchangeErr: fmt.Errorf("%s", strings.Repeat("€", 100)),
	})
	outcome := flow.Exchange(context.Background(), "any", "tok")
	assert.Equal(t, ErrorTokenExchangeFailed, outcome.Err)
	assert.True(t, utf8.ValidString(outcome.Detail))
	assert.LessOrEqual(t, len(outcome.Detail), maxDetailLen)
	assert.True(t, strings.HasPrefix(outcome.Detail, "€"))
}

func Test_Flow_CheckToken_countsValidationFailures(t *testing.T) {
	flow, _ := newTestFlow(&mockProviderClient{})
	malformed := observability.TokenValidationFailures.WithLabelValues("malformed")
	tampered := observability.TokenValidationFailures.WithLabelValues("tampered")

	malformedBefore := testutil.ToFloat64(malformed)
	tamperedBefore := testutil.ToFloat64(tampered)

	// Too short to hold an IV and tag
	flow.CheckToken("not-a-real-token")
	assert.Equal(t, malformedBefore+1, testutil.ToFloat64(malformed))

	// Long enough, but never sealed under our key
	flow.CheckToken(sealRawToken(t, "some-other-secret", "012:100"))
	assert.Equal(t, tamperedBefore+1, testutil.ToFloat64(tampered))
}

func Test_Flow_FetchProfile(t *testing.T) {
	provider := &mockProviderClient{
		userinfo: linkedin.Userinfo{
			Sub:        "urn:li:person:8675309",
			GivenName:  "Jenny",
			FamilyName: "Tutone",
			Email:      "jenny@example.com",
		},
	}
	flow, codec := newTestFlow(provider)
	token, err := codec.Generate("112", "100")
	assert.NoError(t, err)

	outcome := flow.FetchProfile(context.Background(), "mock-access-token", token)
	assert.Equal(t, StateProfileFetched, outcome.Next)
	assert.Equal(t, token, outcome.Token)
	assert.Equal(t, &linkedin.Profile{
		FirstName:  "Jenny",
		LastName:   "Tutone",
		Email:      "jenny@example.com",
		ExternalId: "8675309/",
		SeatId:     "112",
	}, outcome.Profile)
}

func Test_Flow_FetchProfile_failures(t *testing.T) {
	flow, _ := newTestFlow(&mockProviderClient{})

	noToken := flow.FetchProfile(context.Background(), "", "tok")
	assert.Equal(t, ErrorNoAccessToken, noToken.Err)
	assert.Equal(t, "tok", noToken.Token)

	apiErr := flow.FetchProfile(context.Background(), "expired-token", "tok")
	assert.Equal(t, ErrorProviderApiError, apiErr.Err)
	assert.Equal(t, "token expired", apiErr.Detail)
	assert.Equal(t, "tok", apiErr.Token)
}

func Test_Flow_FetchProfile_unexpectedError(t *testing.T) {
	flow, _ := newTestFlow(&mockProviderClient{userinfoErr: fmt.Errorf("connection reset")})
	outcome := flow.FetchProfile(context.Background(), "mock-access-token", "tok")
	assert.Equal(t, ErrorFetchError, outcome.Err)
	assert.Equal(t, "connection reset", outcome.Detail)
}

func Test_Flow_FetchProfile_seatDefaultsWhenTokenUndecodable(t *testing.T) {
	provider := &mockProviderClient{userinfo: linkedin.Userinfo{GivenName: "A", FamilyName: "B"}}
	flow, _ := newTestFlow(provider)
	outcome := flow.FetchProfile(context.Background(), "mock-access-token", "garbage-token")
	assert.Equal(t, StateProfileFetched, outcome.Next)
	assert.Equal(t, "not_set", outcome.Profile.SeatId)
}
