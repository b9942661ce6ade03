// AngelaMos | 2026
// entity.go

package member

import (
	"time"
)

type Member struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Level        string    `db:"level"`
	SponsorID    *int64    `db:"sponsor_id"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m *Member) HasSponsor() bool {
	return m.SponsorID != nil
}

// MemberWithSponsor is a directory row: the member plus the sponsor's
// display name when the sponsor link is set.
type MemberWithSponsor struct {
	ID          int64     `db:"id"`
	Username    string    `db:"username"`
	Name        string    `db:"name"`
	Level       string    `db:"level"`
	CreatedAt   time.Time `db:"created_at"`
	SponsorName *string   `db:"sponsor_name"`
}

func (m MemberWithSponsor) Sponsor() string {
	if m.SponsorName == nil {
		return ""
	}
	return *m.SponsorName
}

type RecentMember struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Level string `db:"level"`
}
