package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/iliyamo/investor-portal/internal/model"
	"github.com/iliyamo/investor-portal/internal/repository"
)

// In-memory store fakes. They reproduce the repository contracts the
// handlers rely on, including the atomic one-shot token consume, so the
// workflow tests can run without a database.

type fakeAccounts struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: make(map[uint64]*model.Account)}
}

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.byID {
		if ex.UserCode == a.UserCode {
			return repository.ErrCodeExists
		}
		if a.Email != "" && ex.Email == a.Email {
			return repository.ErrEmailInUse
		}
	}
	f.nextID++
	a.ID = f.nextID
	a.CreatedAt = time.Now().UTC()
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAccounts) GetByCode(_ context.Context, code string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.UserCode == code {
			return *a, nil
		}
	}
	return model.Account{}, sql.ErrNoRows
}

func (f *fakeAccounts) GetByID(_ context.Context, id uint64) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[id]; ok {
		return *a, nil
	}
	return model.Account{}, sql.ErrNoRows
}

// ConsumeEnlistToken mirrors the conditional UPDATE: under the lock only
// the first caller observes token_consumed=false.
func (f *fakeAccounts) ConsumeEnlistToken(_ context.Context, id uint64, fullName, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	if a.TokenConsumed {
		return repository.ErrTokenAlreadyUsed
	}
	for oid, other := range f.byID {
		if oid != id && other.Email == email {
			return repository.ErrEmailInUse
		}
	}
	a.FullName = fullName
	a.Email = email
	a.TokenConsumed = true
	return nil
}

func (f *fakeAccounts) Activate(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	if a.Status == model.StatusPending || a.Status == model.StatusRejected {
		a.Status = model.StatusActive
		return true, nil
	}
	return false, nil
}

func (f *fakeAccounts) Reject(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	if a.Status == model.StatusPending {
		a.Status = model.StatusRejected
		return true, nil
	}
	return false, nil
}

func (f *fakeAccounts) CountByStatus(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, a := range f.byID {
		counts[a.Status]++
	}
	return counts, nil
}

type fakeInvites struct {
	mu   sync.Mutex
	byID map[string]*model.Invite
}

func newFakeInvites() *fakeInvites {
	return &fakeInvites{byID: make(map[string]*model.Invite)}
}

func (f *fakeInvites) Create(_ context.Context, inv *model.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.CreatedAt = time.Now().UTC()
	cp := *inv
	f.byID[inv.ID] = &cp
	return nil
}

func (f *fakeInvites) List(_ context.Context) ([]model.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Invite, 0, len(f.byID))
	for _, inv := range f.byID {
		out = append(out, *inv)
	}
	return out, nil
}

func (f *fakeInvites) GetByTokenHash(_ context.Context, tokenHash string) (model.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.byID {
		if inv.TokenHash == tokenHash {
			return *inv, nil
		}
	}
	return model.Invite{}, sql.ErrNoRows
}

func (f *fakeInvites) Accept(_ context.Context, id string) error {
	return f.transition(id, model.InviteSent, model.InviteAccepted)
}

func (f *fakeInvites) Revoke(_ context.Context, id string) error {
	return f.transition(id, model.InviteSent, model.InviteRevoked)
}

func (f *fakeInvites) MarkExpired(_ context.Context, id string) error {
	return f.transition(id, model.InviteSent, model.InviteExpired)
}

func (f *fakeInvites) transition(id, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok || inv.Status != from {
		return repository.ErrConflict
	}
	inv.Status = to
	return nil
}

type fakeProperties struct {
	mu        sync.Mutex
	nextID    uint64
	items     []model.Property
	listCalls int
}

func (f *fakeProperties) Create(_ context.Context, p *model.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now().UTC()
	f.items = append(f.items, *p)
	return nil
}

func (f *fakeProperties) ListAvailable(_ context.Context) ([]model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []model.Property
	for _, p := range f.items {
		if p.Available {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProperties) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

// fakeCache is a working in-memory cache.Store so the cache-aside flow
// (hit, miss, invalidate) is observable in tests. TTLs are ignored.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) bool {
	f.mu.Lock()
	bs, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(bs, dest) == nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	bs, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.data[key] = bs
	f.mu.Unlock()
}

func (f *fakeCache) Invalidate(_ context.Context, keys ...string) {
	f.mu.Lock()
	for _, k := range keys {
		delete(f.data, k)
	}
	f.mu.Unlock()
}
