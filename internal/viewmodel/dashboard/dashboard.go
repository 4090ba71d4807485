// Package dashboard is the view model of the screen shown after a successful sign-in.
package dashboard

import (
	"context"

	"github.com/congo-pay/signin/internal/reactive"
	"github.com/congo-pay/signin/internal/users"
	"github.com/congo-pay/signin/internal/viewmodel"
)

// ViewModel loads the signed-in user's record and avatar.
type ViewModel struct {
	ctx  context.Context
	loop *reactive.Loop
	deps viewmodel.Deps

	user      *reactive.Property[users.User]
	avatarURL *reactive.Property[string]
	loadError *reactive.Property[error]
	loading   *reactive.Property[bool]

	attempt int // loop goroutine only
}

// New builds a dashboard view model on loop.
func New(ctx context.Context, loop *reactive.Loop, deps viewmodel.Deps) *ViewModel {
	return &ViewModel{
		ctx:       ctx,
		loop:      loop,
		deps:      deps,
		user:      reactive.NewProperty(loop, users.User{}),
		avatarURL: reactive.NewProperty(loop, ""),
		loadError: reactive.NewProperty[error](loop, nil),
		loading:   reactive.NewProperty(loop, false),
	}
}

func (vm *ViewModel) User() *reactive.Property[users.User] { return vm.user }
func (vm *ViewModel) AvatarURL() *reactive.Property[string] { return vm.avatarURL }
func (vm *ViewModel) LoadError() *reactive.Property[error] { return vm.loadError }
func (vm *ViewModel) Loading() *reactive.Property[bool] { return vm.loading }

// Deps returns the collaborators the view model was built with.
func (vm *ViewModel) Deps() viewmodel.Deps { return vm.deps }

// Load fetches the record for userID, then a download URL for its avatar when it has one.
// A missing avatar URL does not hide the record; the media error is published on LoadError.
// Only the latest Load publishes; results of earlier overlapping loads are dropped.
func (vm *ViewModel) Load(userID string) {
	vm.loop.Post(func() {
		vm.attempt++
		attempt := vm.attempt
		vm.loadError.SetNow(nil)
		vm.loading.SetNow(true)
		go vm.fetch(attempt, userID)
	})
}

func (vm *ViewModel) fetch(attempt int, userID string) {
	user, err := vm.deps.Users.Fetch(vm.ctx, userID)
	var avatarURL string
	if err == nil && user.AvatarKey != "" && vm.deps.Media != nil {
		avatarURL, err = vm.deps.Media.AvatarURL(vm.ctx, user.AvatarKey)
	}

	vm.loop.Post(func() {
		if attempt != vm.attempt {
			return
		}
		defer vm.loading.SetNow(false)
		if user.ID != "" {
			vm.user.SetNow(user)
			vm.avatarURL.SetNow(avatarURL)
		}
		if err != nil {
			vm.loadError.SetNow(err)
		}
	})
}
