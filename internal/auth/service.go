// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/member-portal/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// MemberInfo is the slice of a member the auth package needs.
type MemberInfo struct {
	ID           int64
	Username     string
	Name         string
	Level        string
	PasswordHash string
}

type MemberProvider interface {
	GetByUsername(ctx context.Context, username string) (*MemberInfo, error)
	GetByID(ctx context.Context, id int64) (*MemberInfo, error)
}

type Service struct {
	members MemberProvider
	hasher  PasswordHasher
	metrics *core.Metrics
}

func NewService(
	members MemberProvider,
	hasher PasswordHasher,
	metrics *core.Metrics,
) *Service {
	return &Service{
		members: members,
		hasher:  hasher,
		metrics: metrics,
	}
}

// Authenticate resolves username and password to a member. Unknown
// usernames, wrong passwords and unreadable hashes are indistinguishable
// to the caller and cost one argon2id evaluation each.
func (s *Service) Authenticate(
	ctx context.Context,
	username, password string,
) (*MemberInfo, error) {
	ctx, span := core.StartSpan(ctx, "auth.Authenticate")
	defer span.End()

	username = strings.TrimSpace(username)

	var encoded string
	member, err := s.members.GetByUsername(ctx, username)
	switch {
	case err == nil:
		encoded = member.PasswordHash
	case errors.Is(err, core.ErrNotFound):
		member = nil
	default:
		s.metrics.ObserveLogin(core.ResultError)
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.VerifyTimingSafe(password, encoded) || member == nil {
		s.metrics.ObserveLogin(core.ResultInvalid)
		core.AddSpanEvent(ctx, "login.rejected")
		return nil, ErrInvalidCredentials
	}

	s.metrics.ObserveLogin(core.ResultSuccess)
	span.SetAttributes(core.AttrMemberID.Int64(member.ID))

	return member, nil
}
