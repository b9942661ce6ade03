// AngelaMos | 2026
// service_test.go

package member

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/member-portal/internal/auth"
	"github.com/carterperez-dev/templates/member-portal/internal/core"
)

// memRepo is an in-memory Repository with the same uniqueness rule as the
// members table.
type memRepo struct {
	mu      sync.Mutex
	rows    []Member
	nextID   int64
	failErr  error
	countErr error
}

func (r *memRepo) Create(_ context.Context, m *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return r.failErr
	}
	for _, row := range r.rows {
		if row.Username == m.Username {
			return fmt.Errorf("create member: %w", core.ErrDuplicateKey)
		}
	}
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now().UTC()
	r.rows = append(r.rows, *m)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.ID == id {
			cp := row
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
}

func (r *memRepo) GetByUsername(_ context.Context, username string) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.Username == username {
			cp := row
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get member by username: %w", core.ErrNotFound)
}

func (r *memRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memRepo) ListWithSponsor(_ context.Context, limit int) ([]MemberWithSponsor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make(map[int64]string, len(r.rows))
	for _, row := range r.rows {
		names[row.ID] = row.Name
	}

	out := make([]MemberWithSponsor, 0, len(r.rows))
	for _, row := range r.rows {
		entry := MemberWithSponsor{
			ID:        row.ID,
			Username:  row.Username,
			Name:      row.Name,
			Level:     row.Level,
			CreatedAt: row.CreatedAt,
		}
		if row.SponsorID != nil {
			if name, ok := names[*row.SponsorID]; ok {
				entry.SponsorName = &name
			}
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) ListRecent(ctx context.Context, limit int) ([]RecentMember, error) {
	all, err := r.ListWithSponsor(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]RecentMember, 0, len(all))
	for _, e := range all {
		out = append(out, RecentMember{ID: e.ID, Name: e.Name, Level: e.Level})
	}
	return out, nil
}

func (r *memRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.rows), nil
}

// memTx runs fn directly and rolls back the rows it added on error.
type memTx struct {
	repo  *memRepo
	calls int
}

func (t *memTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++

	t.repo.mu.Lock()
	before := len(t.repo.rows)
	t.repo.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.repo.mu.Lock()
		t.repo.rows = t.repo.rows[:before]
		t.repo.mu.Unlock()
		return err
	}
	return nil
}

func newTestService() (*Service, *memRepo, *memTx) {
	repo := &memRepo{}
	tx := &memTx{repo: repo}
	hasher := auth.NewArgon2idHasher(auth.Argon2Params{
		Memory: 64, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32,
	})
	return NewService(repo, tx, hasher, core.NewMetrics()), repo, tx
}

func int64Ptr(v int64) *int64 { return &v }

func TestRegisterAliceBobScenario(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	alice, err := svc.Register(ctx, RegisterInput{
		Username: "alice", Password: "pw1", Name: "Alice", Level: "gold",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)

	bob, err := svc.Register(ctx, RegisterInput{
		Username: "bob", Password: "pw2", Name: "Bob", Level: "silver",
		SponsorID: int64Ptr(alice.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	_, err = svc.Register(ctx, RegisterInput{
		Username: "alice", Password: "pw3", Name: "Alice Again", Level: "gold",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dir, err := svc.Directory(ctx)
	require.NoError(t, err)
	require.Len(t, dir, 2)
	assert.Equal(t, "bob", dir[0].Username)
	assert.Equal(t, "Alice", dir[0].Sponsor())
	assert.Nil(t, dir[1].SponsorName)

	stored := repo.rows[0]
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterUnknownSponsor(t *testing.T) {
	svc, repo, tx := newTestService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "carol", Password: "pw", Name: "Carol", Level: "bronze",
		SponsorID: int64Ptr(999),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrSponsorNotFound)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Empty(t, repo.rows)
	assert.Equal(t, 1, tx.calls)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"blank username", RegisterInput{Username: "   ", Password: "pw", Name: "A", Level: "l"}, "username"},
		{"missing password", RegisterInput{Username: "a", Name: "A", Level: "l"}, "password"},
		{"blank name", RegisterInput{Username: "a", Password: "pw", Name: " ", Level: "l"}, "name"},
		{"missing level", RegisterInput{Username: "a", Password: "pw", Name: "A"}, "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, tx := newTestService()

			_, err := svc.Register(context.Background(), tt.input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Message, tt.field+" is required")
			assert.Empty(t, repo.rows)
			assert.Zero(t, tx.calls)
		})
	}
}

func TestRegisterTrimsInput(t *testing.T) {
	svc, _, _ := newTestService()

	m, err := svc.Register(context.Background(), RegisterInput{
		Username: "  dave ", Password: " pw ", Name: " Dave ", Level: "gold",
	})
	require.NoError(t, err)
	assert.Equal(t, "dave", m.Username)
	assert.Equal(t, "Dave", m.Name)

	info, err := svc.GetByUsername(context.Background(), "dave")
	require.NoError(t, err)
	assert.Equal(t, m.ID, info.ID)
	assert.Equal(t, m.PasswordHash, info.PasswordHash)
}

func TestRegisterStoreFailure(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failErr = errors.New("disk full")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "erin", Password: "pw", Name: "Erin", Level: "gold",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
}

func TestRecentDefaultsToFifty(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for i := range 55 {
		_, err := svc.Register(ctx, RegisterInput{
			Username: fmt.Sprintf("user%02d", i), Password: "pw", Name: "U", Level: "l",
		})
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	assert.Equal(t, int64(55), recent[0].ID)
}

func TestServiceSatisfiesMemberProvider(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListingUsesStoreTotal(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := svc.Register(ctx, RegisterInput{
			Username: name, Password: "pw", Name: name, Level: "gold",
		})
		require.NoError(t, err)
	}

	page, err := svc.Listing(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Entries, 3)
	assert.Equal(t, "carol", page.Entries[0].Username)

	repo.countErr = errors.New("timeout")
	_, err = svc.Listing(ctx)
	assert.ErrorContains(t, err, "count members")
}
