package linkedin

import (
	"regexp"
	"strings"
)

var (
	personUrnPattern  = regexp.MustCompile(`urn:li:person:(\d+)`)
	profileUrlPattern = regexp.MustCompile(`linkedin\.com/in/([^/?]+)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// BuildProfile maps a raw userinfo response into the Profile shape used for
// display. Names prefer the localized given/family fields, falling back to
// splitting the full display name; the external id is resolved through a
// chain of fallbacks since LinkedIn doesn't expose the vanity slug directly.
func BuildProfile(u *Userinfo) Profile {
	firstName := u.GivenName
	lastName := u.FamilyName
	if firstName == "" || lastName == "" {
		parts := strings.Fields(u.Name)
		if firstName == "" && len(parts) > 0 {
			firstName = parts[0]
		}
		if lastName == "" && len(parts) > 1 {
			lastName = strings.Join(parts[1:], " ")
		}
	}

	return Profile{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      u.Email,
		ExternalId: resolveExternalId(u, firstName, lastName),
	}
}

// resolveExternalId extracts a stable identifier for the LinkedIn account:
// the numeric person id from the 'sub' URN when present, otherwise the sub
// value as-is, otherwise the slug from the profile URL, otherwise a handle
// derived from the visitor's name. Always suffixed with "/" to match the
// profile-path convention the seating chart expects.
func resolveExternalId(u *Userinfo, firstName string, lastName string) string {
	if u.Sub != "" {
		if m := personUrnPattern.FindStringSubmatch(u.Sub); m != nil {
			return m[1] + "/"
		}
		return u.Sub + "/"
	}
	if u.Profile != "" {
		if m := profileUrlPattern.FindStringSubmatch(u.Profile); m != nil {
			return m[1] + "/"
		}
	}
	if firstName != "" && lastName != "" {
		handle := firstName + lastName[:1]
		return whitespacePattern.ReplaceAllString(handle, "") + "/"
	}
	return ""
}
