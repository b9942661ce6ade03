// AngelaMos | 2026
// repository.go

package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/member-portal/internal/core"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ListWithSponsor(ctx context.Context, limit int) ([]MemberWithSponsor, error)
	ListRecent(ctx context.Context, limit int) ([]RecentMember, error)
	Count(ctx context.Context) (int, error)
}

// repository runs each query on the transaction or request connection
// carried by ctx, falling back to db.
type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (username, password_hash, name, level, sponsor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := core.Executor(ctx, r.db).GetContext(ctx, m, query,
		m.Username,
		m.PasswordHash,
		m.Name,
		m.Level,
		m.SponsorID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create member: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create member: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Member, error) {
	query := `
		SELECT id, username, password_hash, name, level, sponsor_id, created_at
		FROM members
		WHERE id = $1`

	var m Member
	err := core.Executor(ctx, r.db).GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	return &m, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*Member, error) {
	query := `
		SELECT id, username, password_hash, name, level, sponsor_id, created_at
		FROM members
		WHERE username = $1`

	var m Member
	err := core.Executor(ctx, r.db).GetContext(ctx, &m, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member by username: %w", err)
	}

	return &m, nil
}

func (r *repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1)`

	var exists bool
	if err := core.Executor(ctx, r.db).GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check member exists: %w", err)
	}

	return exists, nil
}

// ListWithSponsor returns members newest first. limit <= 0 returns every row.
func (r *repository) ListWithSponsor(
	ctx context.Context,
	limit int,
) ([]MemberWithSponsor, error) {
	query := `
		SELECT m.id, m.username, m.name, m.level, m.created_at,
		       s.name AS sponsor_name
		FROM members m
		LEFT JOIN members s ON s.id = m.sponsor_id
		ORDER BY m.id DESC`

	var args []any
	if limit > 0 {
		query += `
		LIMIT $1`
		args = append(args, limit)
	}

	rows := []MemberWithSponsor{}
	if err := core.Executor(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return rows, nil
}

func (r *repository) ListRecent(
	ctx context.Context,
	limit int,
) ([]RecentMember, error) {
	query := `
		SELECT id, name, level
		FROM members
		ORDER BY id DESC
		LIMIT $1`

	rows := []RecentMember{}
	if err := core.Executor(ctx, r.db).SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list recent members: %w", err)
	}

	return rows, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := core.Executor(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM members`); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return total, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}
