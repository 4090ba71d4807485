package notification

import (
	"context"
	"log/slog"
)

const (
	// KindWelcome is sent once an account and its user record exist.
	KindWelcome = "welcome"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger instead of delivering them.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}

// Welcome builds the message greeting a new account.
func Welcome(email, displayName string) Message {
	name := displayName
	if name == "" {
		name = email
	}
	return Message{
		Kind:        KindWelcome,
		Destination: email,
		Body:        "Welcome aboard, " + name + ".",
	}
}
