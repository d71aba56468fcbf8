package linkedin

import (
	"encoding/json"
	"io"
)

// TokenResponse is the body returned by LinkedIn's accessToken endpoint on a
// successful authorization-code exchange
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Userinfo is the subset of LinkedIn's OpenID Connect userinfo response that
// we care about. Every field is optional; defaulting rules live in
// BuildProfile.
type Userinfo struct {
	Sub        string `json:"sub"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Profile    string `json:"profile"`
}

// Profile is the visitor identity derived from a userinfo response or from a
// backend session lookup. It's immutable per fetch; reconnecting re-derives
// it from scratch.
type Profile struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	ExternalId string `json:"lID"`
	SeatId     string `json:"seatId"`
}

func decodeJson(body io.Reader, target any) error {
	return json.NewDecoder(body).Decode(target)
}
