// AngelaMos | 2026
// fakes_test.go

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/member-portal/internal/core"
)

type fakeMembers struct {
	mu      sync.Mutex
	byID    map[int64]*MemberInfo
	lookErr error
}

func newFakeMembers(members ...*MemberInfo) *fakeMembers {
	f := &fakeMembers{byID: make(map[int64]*MemberInfo)}
	for _, m := range members {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMembers) GetByUsername(
	_ context.Context,
	username string,
) (*MemberInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lookErr != nil {
		return nil, f.lookErr
	}
	for _, m := range f.byID {
		if m.Username == username {
			cp := *m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get member by username: %w", core.ErrNotFound)
}

func (f *fakeMembers) GetByID(_ context.Context, id int64) (*MemberInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lookErr != nil {
		return nil, f.lookErr
	}
	m, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembers) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

type fakeRevoker struct {
	mu        sync.Mutex
	revoked   map[string]time.Time
	err       error
	revokeErr error // fails Revoke only
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Time)}
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked[jti] = until
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}
