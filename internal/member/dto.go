// AngelaMos | 2026
// dto.go

package member

import (
	"net/url"
	"strconv"
	"strings"
)

const RecentLimit = 50

type RegisterInput struct {
	Username  string `form:"username" validate:"required,max=64"`
	Password  string `form:"password" validate:"required,max=128"`
	Name      string `form:"name"     validate:"required,max=100"`
	Level     string `form:"level"    validate:"required,max=32"`
	SponsorID *int64 `form:"sponsor_id" validate:"omitempty,gt=0"`
}

// DirectoryEntry is what the members page lists.
type DirectoryEntry = MemberWithSponsor

type DirectoryPage struct {
	Entries []DirectoryEntry
	Count   int
}

// RegisterInputFromForm reads the registration form. A blank sponsor id
// means no sponsor; anything else must be a positive integer.
func RegisterInputFromForm(form url.Values) (RegisterInput, error) {
	sponsorID, err := ParseSponsorID(form.Get("sponsor_id"))
	if err != nil {
		return RegisterInput{}, err
	}

	return RegisterInput{
		Username:  form.Get("username"),
		Password:  form.Get("password"),
		Name:      form.Get("name"),
		Level:     form.Get("level"),
		SponsorID: sponsorID,
	}, nil
}

func ParseSponsorID(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, &ValidationError{
			Message: "Sponsor ID must be a positive number.",
			Err:     err,
		}
	}
	return &id, nil
}
