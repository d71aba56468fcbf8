package seattoken

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-seed-for-unit-tests"

func Test_Codec_roundTrip(t *testing.T) {
	tests := []struct {
		name string
		seat string
		room string
	}{
		{"inside-ring seat with default room", "012", "100"},
		{"outside-ring seat", "112", "100"},
		{"two-digit inside seat", "01", "100"},
		{"two-digit outside seat", "11", "200"},
		{"long seat number", "0123456", "100"},
	}
	c := NewCodec(testSecret)
	for _, tt := range tests {
		token, err := c.Generate(tt.seat, tt.room)
		assert.NoError(t, err, tt.name)
		assert.NotContains(t, token, "+", tt.name)
		assert.NotContains(t, token, "/", tt.name)
		assert.NotContains(t, token, "=", tt.name)

		got, err := c.Validate(token)
		assert.NoError(t, err, tt.name)
		assert.Equal(t, &Assignment{Seat: tt.seat, Room: tt.room}, got, tt.name)
	}
}

func Test_Codec_Generate_rejectsBadInputs(t *testing.T) {
	c := NewCodec(testSecret)

	_, err := c.Generate("2", "100")
	assert.Error(t, err)

	_, err = c.Generate("012", "")
	assert.Error(t, err)
}

func Test_Codec_Generate_producesUniqueTokens(t *testing.T) {
	// The same seat/room must encrypt to different tokens on each call thanks
	// to the random IV, but both must decode to the same assignment
	c := NewCodec(testSecret)
	first, err := c.Generate("012", "100")
	assert.NoError(t, err)
	second, err := c.Generate("012", "100")
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)

	gotFirst, err := c.Validate(first)
	assert.NoError(t, err)
	gotSecond, err := c.Validate(second)
	assert.NoError(t, err)
	assert.Equal(t, gotFirst, gotSecond)
}

func Test_Codec_Validate_detectsTampering(t *testing.T) {
	c := NewCodec(testSecret)
	token, err := c.Generate("012", "100")
	assert.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	assert.NoError(t, err)

	// Flipping any single bit anywhere in the decoded token must cause
	// authentication to fail rather than silently returning wrong data
	for i := 0; i < len(raw); i++ {
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		mutated[i] ^= 0x01
		_, err := c.Validate(base64.RawURLEncoding.EncodeToString(mutated))
		assert.ErrorIs(t, err, ErrTamperedToken, "byte %d", i)
	}
}

func Test_Codec_Validate_rejectsGarbage(t *testing.T) {
	c := NewCodec(testSecret)
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty string", "", ErrMalformedToken},
		{"not base64", "!!!not-base64!!!", ErrMalformedToken},
		{"too short to hold IV and tag", base64.RawURLEncoding.EncodeToString(make([]byte, 16)), ErrMalformedToken},
		{"right length but random bytes", base64.RawURLEncoding.EncodeToString(make([]byte, 48)), ErrTamperedToken},
	}
	for _, tt := range tests {
		_, err := c.Validate(tt.token)
		assert.ErrorIs(t, err, tt.wantErr, tt.name)
	}
}

func Test_Codec_Validate_rejectsTruncatedToken(t *testing.T) {
	c := NewCodec(testSecret)
	token, err := c.Generate("012", "100")
	assert.NoError(t, err)

	_, err = c.Validate(token[:len(token)-1])
	assert.Error(t, err)
}

func Test_Codec_Validate_rejectsTokenFromDifferentSecret(t *testing.T) {
	token, err := NewCodec("one-secret").Generate("012", "100")
	assert.NoError(t, err)

	_, err = NewCodec("another-secret").Validate(token)
	assert.ErrorIs(t, err, ErrTamperedToken)
}

func Test_Codec_keyDerivationIsDeterministic(t *testing.T) {
	// Two codecs built from the same secret must be interchangeable
	token, err := NewCodec(testSecret).Generate("112", "100")
	assert.NoError(t, err)

	got, err := NewCodec(testSecret).Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, &Assignment{Seat: "112", Room: "100"}, got)
}

func Test_IsValidSeatFormat(t *testing.T) {
	tests := []struct {
		seat string
		want bool
	}{
		{"01", true},
		{"11", true},
		{"012", true},
		{"112", true},
		{"0123456789", true},
		{" 012 ", true},
		{"0", false},
		{"1", false},
		{"2", false},
		{"21", false},
		{"a1", false},
		{"1a", false},
		{"", false},
		{"0x12", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidSeatFormat(tt.seat), "seat %q", tt.seat)
	}
}
