package auth

import "context"

// Client exposes the service through completion callbacks. Each call runs on its own goroutine
// and done is invoked from that goroutine.
type Client struct {
	svc *Service
}

// NewClient wraps svc.
func NewClient(svc *Service) *Client {
	return &Client{svc: svc}
}

// SignIn authenticates and reports the outcome to done.
func (c *Client) SignIn(ctx context.Context, email, password string, done func(Session, error)) {
	go func() {
		done(c.svc.Authenticate(ctx, email, password))
	}()
}

// SignUp registers and reports the outcome to done.
func (c *Client) SignUp(ctx context.Context, email, password string, done func(Session, error)) {
	go func() {
		done(c.svc.Register(ctx, email, password))
	}()
}
