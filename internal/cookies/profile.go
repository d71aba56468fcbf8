package cookies

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/SmarabSJJ/ufo-seat-service/internal/linkedin"
)

// EncodeProfile serializes a profile for storage in the CachedProfile cookie.
// Cookie values can't carry raw JSON (quotes and commas aren't legal), so the
// JSON is wrapped in unpadded base64url.
func EncodeProfile(p *linkedin.Profile) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to serialize profile: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeProfile reverses EncodeProfile. A missing or unparseable cookie value
// yields a nil profile with no error: a broken cache is the same as no cache.
func DecodeProfile(value string) *linkedin.Profile {
	if value == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var p linkedin.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	return &p
}
