package testutil

import (
	"testing"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"
	"github.com/stretchr/testify/require"
)

// loggableSender keeps only the messages a production sender would write.
// The internal sender renders every composer it is given, including empty
// error wrappers that cannot be rendered.
type loggableSender struct {
	*send.InternalSender
}

func (s loggableSender) Send(m message.Composer) {
	if m == nil || !m.Loggable() || !s.Level().ShouldLog(m) {
		return
	}
	s.InternalSender.Send(m)
}

// CaptureLogs replaces the global grip sender with an in-memory sender at
// the given threshold for the rest of the test. Messages below the threshold
// and messages with nothing to log are dropped.
func CaptureLogs(t *testing.T, threshold level.Priority) *send.InternalSender {
	prev := grip.GetSender()
	prevLevel := prev.Level()
	sender := send.MakeInternalLogger()
	// SetSender copies the journaler's level onto the new sender
	require.NoError(t, grip.SetSender(loggableSender{InternalSender: sender}))
	require.NoError(t, sender.SetLevel(send.LevelInfo{Default: level.Info, Threshold: threshold}))
	t.Cleanup(func() {
		require.NoError(t, grip.SetSender(prev))
		require.NoError(t, prev.SetLevel(prevLevel))
	})

	return sender
}

// DrainMessages returns every message the sender has captured so far.
func DrainMessages(sender *send.InternalSender) []message.Composer {
	var out []message.Composer
	for {
		m, ok := sender.GetMessageSafe()
		if !ok {
			return out
		}
		out = append(out, m.Message)
	}
}
