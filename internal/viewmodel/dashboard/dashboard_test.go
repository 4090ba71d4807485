package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/signin/internal/reactive"
	"github.com/congo-pay/signin/internal/users"
	"github.com/congo-pay/signin/internal/viewmodel"
	"github.com/congo-pay/signin/internal/viewmodel/vmtest"
)

func newDashboard(t *testing.T, m *vmtest.Media) (*ViewModel, users.Store) {
	t.Helper()
	loop := reactive.NewLoop()
	t.Cleanup(loop.Close)
	store := users.NewMemoryStore()
	return New(context.Background(), loop, viewmodel.Deps{Auth: &vmtest.Auth{}, Users: store, Media: m}), store
}

// load runs Load and waits until it has published its outcome.
func load(t *testing.T, vm *ViewModel, userID string) {
	t.Helper()
	done := make(chan struct{})
	var fired bool
	unsubscribe := vm.Loading().Subscribe(func(v bool) {
		if !v && !fired {
			fired = true
			close(done)
		}
	})
	defer unsubscribe()
	vm.Load(userID)
	<-done
}

func TestLoadPublishesUserAndAvatar(t *testing.T) {
	vm, store := newDashboard(t, &vmtest.Media{})
	now := time.Now().UTC()
	user := users.User{ID: "u1", Email: "ada@example.com", DisplayName: "Ada", AvatarKey: "avatars/u1/a", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Save(context.Background(), user))

	load(t, vm, "u1")

	assert.NoError(t, vm.LoadError().Get())
	assert.Equal(t, "Ada", vm.User().Get().DisplayName)
	assert.Equal(t, "https://media.test/get/avatars/u1/a", vm.AvatarURL().Get())
}

func TestLoadUnknownUser(t *testing.T) {
	vm, _ := newDashboard(t, &vmtest.Media{})

	load(t, vm, "ghost")

	assert.ErrorIs(t, vm.LoadError().Get(), users.ErrRecordNotFound)
	assert.Empty(t, vm.User().Get().ID)
}

func TestLoadKeepsUserWhenAvatarFails(t *testing.T) {
	vm, store := newDashboard(t, &vmtest.Media{Err: errors.New("s3 down")})
	now := time.Now().UTC()
	require.NoError(t, store.Save(context.Background(), users.User{ID: "u2", AvatarKey: "k", CreatedAt: now, UpdatedAt: now}))

	load(t, vm, "u2")

	assert.Equal(t, "u2", vm.User().Get().ID)
	assert.Empty(t, vm.AvatarURL().Get())
	assert.EqualError(t, vm.LoadError().Get(), "s3 down")
}

// gatedStore holds Fetch for ids with a gate until the gate is closed.
type gatedStore struct {
	users.Store
	gates map[string]chan struct{}
}

func (s *gatedStore) Fetch(ctx context.Context, id string) (users.User, error) {
	if gate, ok := s.gates[id]; ok {
		<-gate
	}
	return s.Store.Fetch(ctx, id)
}

func TestOverlappingLoadsKeepLatest(t *testing.T) {
	loop := reactive.NewLoop()
	t.Cleanup(loop.Close)
	mem := users.NewMemoryStore()
	now := time.Now().UTC()
	require.NoError(t, mem.Save(context.Background(), users.User{ID: "old", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, mem.Save(context.Background(), users.User{ID: "new", CreatedAt: now, UpdatedAt: now}))
	gate := make(chan struct{})
	store := &gatedStore{Store: mem, gates: map[string]chan struct{}{"old": gate}}
	vm := New(context.Background(), loop, viewmodel.Deps{Auth: &vmtest.Auth{}, Users: store, Media: &vmtest.Media{}})

	vm.Load("old")
	load(t, vm, "new")
	assert.Equal(t, "new", vm.User().Get().ID)

	close(gate)
	assert.Never(t, func() bool {
		loop.Flush()
		return vm.User().Get().ID != "new" || vm.Loading().Get()
	}, 100*time.Millisecond, 5*time.Millisecond)
}
