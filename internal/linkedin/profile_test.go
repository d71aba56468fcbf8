package linkedin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BuildProfile(t *testing.T) {
	tests := []struct {
		name string
		u    Userinfo
		want Profile
	}{
		{
			"localized names and person URN are used directly",
			Userinfo{
				Sub:        "urn:li:person:123456",
				GivenName:  "Jason",
				FamilyName: "Amaoa",
				Email:      "jason@example.com",
			},
			Profile{
				FirstName:  "Jason",
				LastName:   "Amaoa",
				Email:      "jason@example.com",
				ExternalId: "123456/",
			},
		},
		{
			"non-URN sub value is used as-is",
			Userinfo{
				Sub:        "abc-opaque-id",
				GivenName:  "Jane",
				FamilyName: "Doe",
			},
			Profile{
				FirstName:  "Jane",
				LastName:   "Doe",
				ExternalId: "abc-opaque-id/",
			},
		},
		{
			"missing given/family names fall back to splitting the display name",
			Userinfo{
				Sub:  "urn:li:person:42",
				Name: "Ada Lovelace King",
			},
			Profile{
				FirstName:  "Ada",
				LastName:   "Lovelace King",
				ExternalId: "42/",
			},
		},
		{
			"profile URL slug is used when sub is absent",
			Userinfo{
				GivenName:  "Sam",
				FamilyName: "Voora",
				Profile:    "https://www.linkedin.com/in/smaranvoora/",
			},
			Profile{
				FirstName:  "Sam",
				LastName:   "Voora",
				ExternalId: "smaranvoora/",
			},
		},
		{
			"name-derived handle is the final fallback",
			Userinfo{
				GivenName:  "Mary Jane",
				FamilyName: "Watson",
			},
			Profile{
				FirstName:  "Mary Jane",
				LastName:   "Watson",
				ExternalId: "MaryJaneW/",
			},
		},
		{
			"empty userinfo produces an empty profile",
			Userinfo{},
			Profile{},
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildProfile(&tt.u), tt.name)
	}
}
