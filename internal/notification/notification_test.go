package notification

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/signin/internal/logging"
)

func TestWelcomeFallsBackToEmail(t *testing.T) {
	assert.Equal(t, "Welcome aboard, Ada.", Welcome("ada@example.com", "Ada").Body)
	msg := Welcome("ada@example.com", "")
	assert.Equal(t, KindWelcome, msg.Kind)
	assert.Equal(t, "ada@example.com", msg.Destination)
	assert.Equal(t, "Welcome aboard, ada@example.com.", msg.Body)
}

func TestLoggerNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(logging.NewWriter(&buf, "info"))
	require.NoError(t, n.Send(context.Background(), Welcome("ada@example.com", "Ada")))
	assert.Contains(t, buf.String(), `"kind":"welcome"`)
	assert.Contains(t, buf.String(), `"destination":"ada@example.com"`)

	var nilNotifier *LoggerNotifier
	assert.NoError(t, nilNotifier.Send(context.Background(), Message{}))
}
