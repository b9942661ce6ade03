// AngelaMos | 2026
// service.go

package member

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/member-portal/internal/auth"
	"github.com/carterperez-dev/templates/member-portal/internal/core"
)

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo      Repository
	tx        Transactor
	hasher    auth.PasswordHasher
	validator *validator.Validate
	metrics   *core.Metrics
}

func NewService(
	repo Repository,
	tx Transactor,
	hasher auth.PasswordHasher,
	metrics *core.Metrics,
) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Service{
		repo:      repo,
		tx:        tx,
		hasher:    hasher,
		validator: v,
		metrics:   metrics,
	}
}

var _ auth.MemberProvider = (*Service)(nil)

// Register creates a member. The sponsor check and the insert share one
// transaction, so a sponsor cannot be judged present and then be missing
// at insert time. Concurrent registrations of one username are settled by
// the unique index.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Member, error) {
	ctx, span := core.StartSpan(ctx, "member.Register",
		core.AttrHasSponsor.Bool(in.SponsorID != nil),
	)
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Level = strings.TrimSpace(in.Level)

	if err := s.validator.Struct(in); err != nil {
		s.metrics.ObserveRegistration(core.ResultInvalid)
		return nil, &ValidationError{
			Message: "Please complete the form: " + core.FormatValidationError(err) + ".",
			Err:     err,
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.metrics.ObserveRegistration(core.ResultError)
		return nil, fmt.Errorf("register member: %w", err)
	}

	m := &Member{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Level:        in.Level,
		SponsorID:    in.SponsorID,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if m.SponsorID != nil {
			exists, err := s.repo.ExistsByID(ctx, *m.SponsorID)
			if err != nil {
				return err
			}
			if !exists {
				return &ValidationError{
					Message: "Sponsor ID does not exist.",
					Err:     ErrSponsorNotFound,
				}
			}
		}
		return s.repo.Create(ctx, m)
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateKey):
			s.metrics.ObserveRegistration(core.ResultDuplicate)
			return nil, fmt.Errorf("register %q: %w", m.Username, ErrUsernameTaken)
		case errors.Is(err, core.ErrInvalidInput):
			s.metrics.ObserveRegistration(core.ResultInvalid)
			return nil, err
		default:
			s.metrics.ObserveRegistration(core.ResultError)
			core.SetSpanError(ctx, err)
			return nil, fmt.Errorf("register member: %w", err)
		}
	}

	s.metrics.ObserveRegistration(core.ResultSuccess)
	span.SetAttributes(core.AttrMemberID.Int64(m.ID))

	return m, nil
}

// Directory lists every member, newest first, with sponsor names resolved.
func (s *Service) Directory(ctx context.Context) ([]DirectoryEntry, error) {
	return s.repo.ListWithSponsor(ctx, 0)
}

// Listing is the directory page: every entry plus the member total the
// header shows.
func (s *Service) Listing(ctx context.Context) (DirectoryPage, error) {
	entries, err := s.Directory(ctx)
	if err != nil {
		return DirectoryPage{}, fmt.Errorf("list members: %w", err)
	}

	total, err := s.Count(ctx)
	if err != nil {
		return DirectoryPage{}, fmt.Errorf("count members: %w", err)
	}

	return DirectoryPage{Entries: entries, Count: total}, nil
}

func (s *Service) Recent(ctx context.Context, n int) ([]RecentMember, error) {
	if n <= 0 {
		n = RecentLimit
	}
	return s.repo.ListRecent(ctx, n)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*auth.MemberInfo, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMemberInfo(m), nil
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.MemberInfo, error) {
	m, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return toMemberInfo(m), nil
}

func toMemberInfo(m *Member) *auth.MemberInfo {
	return &auth.MemberInfo{
		ID:           m.ID,
		Username:     m.Username,
		Name:         m.Name,
		Level:        m.Level,
		PasswordHash: m.PasswordHash,
	}
}
