// Package vmtest holds collaborator doubles for view-model tests.
package vmtest

import (
	"context"
	"sync"

	"github.com/congo-pay/signin/internal/auth"
	"github.com/congo-pay/signin/internal/media"
)

// Call records one authenticator invocation.
type Call struct {
	Email    string
	Password string
}

// Auth is a scripted Authenticator. By default every call completes on a new goroutine with
// Session/Err; with Manual set, completions are parked until Complete is called. SignUpErr, when
// set, replaces Err for sign-ups only.
type Auth struct {
	Session   auth.Session
	Err       error
	SignUpErr error
	Manual    bool

	mu          sync.Mutex
	signIns     []Call
	signUps     []Call
	parked      []func(auth.Session, error)
	outstanding sync.WaitGroup
}

func (a *Auth) SignIn(_ context.Context, email, password string, done func(auth.Session, error)) {
	a.mu.Lock()
	a.signIns = append(a.signIns, Call{Email: email, Password: password})
	err := a.Err
	a.mu.Unlock()
	a.dispatch(err, done)
}

func (a *Auth) SignUp(_ context.Context, email, password string, done func(auth.Session, error)) {
	a.mu.Lock()
	a.signUps = append(a.signUps, Call{Email: email, Password: password})
	err := a.Err
	if a.SignUpErr != nil {
		err = a.SignUpErr
	}
	a.mu.Unlock()
	a.dispatch(err, done)
}

func (a *Auth) dispatch(err error, done func(auth.Session, error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Manual {
		a.parked = append(a.parked, done)
		return
	}
	session := a.Session
	a.outstanding.Add(1)
	go func() {
		defer a.outstanding.Done()
		done(session, err)
	}()
}

// Complete finishes the i-th parked call.
func (a *Auth) Complete(i int, session auth.Session, err error) {
	a.mu.Lock()
	done := a.parked[i]
	a.mu.Unlock()
	done(session, err)
}

// Wait blocks until every non-parked completion has been delivered.
func (a *Auth) Wait() { a.outstanding.Wait() }

func (a *Auth) SignIns() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.signIns...)
}

func (a *Auth) SignUps() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.signUps...)
}

// Media is a Media double that hands out deterministic keys and URLs.
type Media struct {
	Err error
}

func (m *Media) AvatarUploadURL(_ context.Context, userID string) (media.Upload, error) {
	if m.Err != nil {
		return media.Upload{}, m.Err
	}
	key := "avatars/" + userID + "/test"
	return media.Upload{Key: key, URL: "https://media.test/put/" + key}, nil
}

func (m *Media) AvatarURL(_ context.Context, key string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "https://media.test/get/" + key, nil
}
