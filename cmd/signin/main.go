// Command signin is a terminal front end for the sign-in and sign-up screens. It drives the view
// models against the configured backends in-process.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/congo-pay/signin/internal/auth"
	"github.com/congo-pay/signin/internal/config"
	"github.com/congo-pay/signin/internal/infra"
	"github.com/congo-pay/signin/internal/logging"
	"github.com/congo-pay/signin/internal/media"
	"github.com/congo-pay/signin/internal/reactive"
	"github.com/congo-pay/signin/internal/validate"
	"github.com/congo-pay/signin/internal/viewmodel"
	"github.com/congo-pay/signin/internal/viewmodel/dashboard"
	"github.com/congo-pay/signin/internal/viewmodel/signin"
	"github.com/congo-pay/signin/internal/viewmodel/signup"
)

var errCanceled = errors.New("canceled")

func main() {
	signUp := flag.Bool("signup", false, "create an account instead of signing in")
	timeout := flag.Duration("timeout", 30*time.Second, "how long to wait for each backend round-trip")
	flag.Parse()

	if err := run(*signUp, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "signin: %v\n", err)
		os.Exit(1)
	}
}

func run(signUp bool, timeout time.Duration) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewWriter(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := infra.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	store, err := backends.Users()
	if err != nil {
		return err
	}
	creds, err := backends.Credentials()
	if err != nil {
		return err
	}

	deps := viewmodel.Deps{
		Auth:  auth.NewClient(auth.NewService(creds, auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.AppName), auth.WithCost(cfg.PasswordCost))),
		Users: store,
	}
	if backends.Media != nil {
		deps.Media = backends.Media
	}

	loop := reactive.NewLoop()
	defer loop.Close()

	p := &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	ctrl := signin.New(ctx, loop, deps, viewmodel.DefaultValidators())

	var userID string
	if signUp {
		userID, err = runSignUp(ctx, p, loop, ctrl.SignUpViewModel(), timeout)
	} else {
		userID, err = runSignIn(ctx, p, loop, ctrl, timeout)
	}
	if err != nil {
		return err
	}
	return showDashboard(ctx, p, ctrl.DashboardViewModel(), userID, timeout)
}

func runSignIn(ctx context.Context, p *prompter, loop *reactive.Loop, ctrl *signin.Controller, timeout time.Duration) (string, error) {
	for {
		email, err := p.line("Email: ")
		if err != nil {
			return "", err
		}
		ctrl.SetEmail(email)
		ctrl.Submit(signin.FormEmail)
		loop.Flush()
		if ctrl.IsEmailValid().Get() {
			break
		}
		fmt.Fprintln(p.out, validate.CheckEmail(email))
	}

	for {
		password, err := p.secret("Password: ")
		if err != nil {
			return "", err
		}
		ctrl.SetPassword(password)
		loop.Flush()
		if !ctrl.IsPasswordValid().Get() {
			fmt.Fprintln(p.out, validate.CheckPassword(password))
			continue
		}

		outcome := awaitOutcome(ctrl.SignInSuccessful(), isTrue, ctrl.SignInError())
		ctrl.Submit(signin.FormPassword)
		if err := outcome.wait(ctx, timeout); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				fmt.Fprintln(p.out, "Wrong email or password.")
				continue
			}
			return "", err
		}
		return ctrl.Session().Get().UserID, nil
	}
}

func runSignUp(ctx context.Context, p *prompter, loop *reactive.Loop, vm *signup.ViewModel, timeout time.Duration) (string, error) {
	fields := []struct {
		label  string
		secret bool
		set    func(string)
		valid  func() bool
		reason func(string) error
	}{
		{"Email: ", false, vm.Email().Set, vm.IsEmailValid().Get, validate.CheckEmail},
		{"Display name: ", false, vm.DisplayName().Set, vm.IsDisplayNameValid().Get, validate.CheckDisplayName},
		{"Password: ", true, vm.Password().Set, vm.IsPasswordValid().Get, validate.CheckPassword},
	}
	for _, f := range fields {
		for {
			read := p.line
			if f.secret {
				read = p.secret
			}
			v, err := read(f.label)
			if err != nil {
				return "", err
			}
			f.set(v)
			loop.Flush()
			if f.valid() {
				break
			}
			fmt.Fprintln(p.out, f.reason(v))
		}
	}

	outcome := awaitOutcome(vm.SignUpSuccessful(), isTrue, vm.SignUpError())
	vm.SignUp()
	if err := outcome.wait(ctx, timeout); err != nil {
		return "", err
	}
	user := vm.User().Get()

	if vm.Deps().Media == nil {
		return user.ID, nil
	}
	answer, err := p.line("Upload an avatar? [y/N] ")
	if err != nil || !strings.EqualFold(answer, "y") {
		return user.ID, nil
	}
	upload := awaitOutcome(vm.AvatarUpload(), func(u media.Upload) bool { return u.URL != "" }, vm.AvatarError())
	vm.RequestAvatarUpload()
	if err := upload.wait(ctx, timeout); err != nil {
		fmt.Fprintf(p.out, "Avatar upload unavailable: %v\n", err)
		return user.ID, nil
	}
	fmt.Fprintf(p.out, "PUT your image to:\n  %s\n", vm.AvatarUpload().Get().URL)
	return user.ID, nil
}

func showDashboard(ctx context.Context, p *prompter, vm *dashboard.ViewModel, userID string, timeout time.Duration) error {
	loaded := make(chan struct{}, 1)
	unsubscribe := vm.Loading().Subscribe(func(loading bool) {
		if !loading {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	vm.Load(userID)
	select {
	case <-loaded:
	case <-ctx.Done():
		return errCanceled
	case <-time.After(timeout):
		return errors.New("timed out loading the dashboard")
	}

	user := vm.User().Get()
	if user.ID == "" {
		return fmt.Errorf("load user record: %w", vm.LoadError().Get())
	}
	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	fmt.Fprintf(p.out, "\nWelcome, %s\n", name)
	fmt.Fprintf(p.out, "  id:      %s\n", user.ID)
	fmt.Fprintf(p.out, "  email:   %s\n", user.Email)
	fmt.Fprintf(p.out, "  member:  since %s\n", user.CreatedAt.Local().Format(time.DateOnly))
	if url := vm.AvatarURL().Get(); url != "" {
		fmt.Fprintf(p.out, "  avatar:  %s\n", url)
	}
	if err := vm.LoadError().Get(); err != nil {
		fmt.Fprintf(p.out, "  (avatar unavailable: %v)\n", err)
	}
	return nil
}

// outcome collects the first terminal value published by a view model action.
type outcome struct {
	result      chan error
	unsubscribe []func()
}

// awaitOutcome must be called before the action is started so no publication is missed.
func awaitOutcome[T any](done *reactive.Property[T], finished func(T) bool, failure *reactive.Property[error]) *outcome {
	o := &outcome{result: make(chan error, 1)}
	o.unsubscribe = append(o.unsubscribe,
		done.Subscribe(func(v T) {
			if finished(v) {
				o.send(nil)
			}
		}),
		failure.Subscribe(func(err error) {
			if err != nil {
				o.send(err)
			}
		}),
	)
	return o
}

func (o *outcome) send(err error) {
	select {
	case o.result <- err:
	default:
	}
}

func (o *outcome) wait(ctx context.Context, timeout time.Duration) error {
	defer func() {
		for _, fn := range o.unsubscribe {
			fn()
		}
	}()
	select {
	case err := <-o.result:
		return err
	case <-ctx.Done():
		return errCanceled
	case <-time.After(timeout):
		return errors.New("timed out waiting for the server")
	}
}

func isTrue(v bool) bool { return v }

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && (s == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// secret reads without echo when stdin is a terminal.
func (p *prompter) secret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
