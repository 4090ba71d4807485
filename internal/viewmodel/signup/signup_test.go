package signup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/signin/internal/auth"
	"github.com/congo-pay/signin/internal/media"
	"github.com/congo-pay/signin/internal/reactive"
	"github.com/congo-pay/signin/internal/users"
	"github.com/congo-pay/signin/internal/viewmodel"
	"github.com/congo-pay/signin/internal/viewmodel/vmtest"
)

type failingStore struct{ users.Store }

func (failingStore) Save(context.Context, users.User) error { return errors.New("store offline") }

// flakyStore fails the first `failures` saves.
type flakyStore struct {
	users.Store
	failures int32
	saves    atomic.Int32
}

func (s *flakyStore) Save(ctx context.Context, u users.User) error {
	if s.saves.Add(1) <= s.failures {
		return errors.New("store offline")
	}
	return s.Store.Save(ctx, u)
}

func newViewModel(t *testing.T, store users.Store, m *vmtest.Media) (*ViewModel, *vmtest.Auth, *reactive.Loop) {
	t.Helper()
	loop := reactive.NewLoop()
	t.Cleanup(loop.Close)
	fa := &vmtest.Auth{Session: auth.Session{UserID: "user-7", Email: "ada@example.com"}}
	deps := viewmodel.Deps{Auth: fa, Users: store, Media: m}
	return New(context.Background(), loop, deps, viewmodel.DefaultValidators()), fa, loop
}

// waitFor blocks until p reports a value accepted by ok, or the loop is closed.
func waitFor[T any](t *testing.T, p *reactive.Property[T], ok func(T) bool) T {
	t.Helper()
	got := make(chan T, 1)
	unsubscribe := p.Subscribe(func(v T) {
		if ok(v) {
			select {
			case got <- v:
			default:
			}
		}
	})
	defer unsubscribe()
	if v := p.Get(); ok(v) {
		return v
	}
	return <-got
}

func fill(vm *ViewModel) {
	vm.Email().Set("ada@example.com")
	vm.Password().Set("s3cretpass")
	vm.DisplayName().Set("  Ada  ")
}

func TestSignUpStoresUserRecord(t *testing.T) {
	store := users.NewMemoryStore()
	vm, fa, _ := newViewModel(t, store, &vmtest.Media{})
	fill(vm)
	vm.SignUp()

	waitFor(t, vm.SignUpSuccessful(), func(v bool) bool { return v })
	require.Len(t, fa.SignUps(), 1)
	assert.NoError(t, vm.SignUpError().Get())

	saved, err := store.Fetch(context.Background(), "user-7")
	require.NoError(t, err)
	assert.Equal(t, "Ada", saved.DisplayName)
	assert.Equal(t, "ada@example.com", saved.Email)
	assert.Equal(t, saved, vm.User().Get())
	assert.Equal(t, "user-7", vm.Session().Get().UserID)
}

func TestSignUpInvalidFormIsIgnored(t *testing.T) {
	vm, fa, loop := newViewModel(t, users.NewMemoryStore(), &vmtest.Media{})
	vm.Email().Set("ada@example.com")
	vm.Password().Set("s3cretpass")
	vm.SignUp()
	loop.Flush()
	fa.Wait()

	assert.Empty(t, fa.SignUps())
	assert.False(t, vm.SignUpSuccessful().Get())
}

func TestSignUpAuthFailure(t *testing.T) {
	vm, fa, _ := newViewModel(t, users.NewMemoryStore(), &vmtest.Media{})
	fa.Err = auth.ErrEmailTaken
	fill(vm)
	vm.SignUp()

	err := waitFor(t, vm.SignUpError(), func(e error) bool { return e != nil })
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
	assert.False(t, vm.SignUpSuccessful().Get())
}

func TestSignUpStoreFailure(t *testing.T) {
	vm, _, _ := newViewModel(t, failingStore{}, &vmtest.Media{})
	fill(vm)
	vm.SignUp()

	err := waitFor(t, vm.SignUpError(), func(e error) bool { return e != nil })
	assert.EqualError(t, err, "store offline")
	assert.False(t, vm.SignUpSuccessful().Get())
}

func TestSignUpRetryCompletesMissingRecord(t *testing.T) {
	store := &flakyStore{Store: users.NewMemoryStore(), failures: 1}
	vm, fa, _ := newViewModel(t, store, &vmtest.Media{})
	fill(vm)
	vm.SignUp()

	err := waitFor(t, vm.SignUpError(), func(e error) bool { return e != nil })
	require.EqualError(t, err, "store offline")
	fa.Wait()

	// the account now exists; only the record is missing
	fa.SignUpErr = auth.ErrEmailTaken
	vm.SignUp()
	waitFor(t, vm.SignUpSuccessful(), func(v bool) bool { return v })

	require.Len(t, fa.SignIns(), 1)
	assert.Equal(t, vmtest.Call{Email: "ada@example.com", Password: "s3cretpass"}, fa.SignIns()[0])
	saved, err := store.Fetch(context.Background(), "user-7")
	require.NoError(t, err)
	assert.Equal(t, "Ada", saved.DisplayName)
	assert.Equal(t, "user-7", vm.Session().Get().UserID)
}

func TestSignUpExistingAccountWithRecordIsTaken(t *testing.T) {
	store := users.NewMemoryStore()
	vm, fa, _ := newViewModel(t, store, &vmtest.Media{})
	fa.SignUpErr = auth.ErrEmailTaken
	require.NoError(t, store.Save(context.Background(), users.User{ID: "user-7", Email: "ada@example.com"}))
	fill(vm)
	vm.SignUp()

	err := waitFor(t, vm.SignUpError(), func(e error) bool { return e != nil })
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
	assert.False(t, vm.SignUpSuccessful().Get())

	saved, err := store.Fetch(context.Background(), "user-7")
	require.NoError(t, err)
	assert.Empty(t, saved.DisplayName)
}

func TestRequestAvatarUpload(t *testing.T) {
	store := users.NewMemoryStore()
	vm, _, _ := newViewModel(t, store, &vmtest.Media{})

	vm.RequestAvatarUpload()
	err := waitFor(t, vm.AvatarError(), func(e error) bool { return e != nil })
	require.ErrorIs(t, err, ErrNotSignedUp)

	fill(vm)
	vm.SignUp()
	waitFor(t, vm.SignUpSuccessful(), func(v bool) bool { return v })

	vm.RequestAvatarUpload()
	upload := waitFor(t, vm.AvatarUpload(), func(u media.Upload) bool { return u.Key != "" })
	assert.Equal(t, "avatars/user-7/test", upload.Key)

	saved, err := store.Fetch(context.Background(), "user-7")
	require.NoError(t, err)
	assert.Equal(t, upload.Key, saved.AvatarKey)
}
