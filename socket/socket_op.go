package socket

import (
	"time"

	"shindensen_client/decoder"
	"shindensen_client/errors"

	"go.uber.org/zap"
)

// Drain runs one cycle: it takes at most the budget of currently available
// frames and classifies them in order. A Closed or Error frame emits a
// NetworkError, reopens the session and ends the cycle; frames behind it from
// the old handle are dropped.
func (m *Manager) Drain() {
	if m.handle == nil {
		m.retryIfDue()
		return
	}

	frames := m.handle.Poll(m.budget)
	for i, frame := range frames {
		switch frame.Kind {
		case FrameOpened:
			m.state = Open
			if m.backoff != nil {
				m.backoff.Reset()
			}
			m.log.Info("websocket connection opened")

		case FrameText:
			m.emitter.Emit(decoder.DecodeMessage(frame.Text))

		case FrameClosed:
			m.log.Warn("websocket closed by server", zap.Int("dropped", len(frames)-i-1))
			m.emitter.Emit(errors.NewNetworkError("websocket closed"))
			m.reopen("closed")
			return

		case FrameError:
			detail := "websocket error"
			if frame.Err != nil {
				detail += ": " + frame.Err.Error()
			}
			m.emitter.Emit(errors.NewNetworkError(detail))
			m.reopen("error")
			return

		default:
			m.log.Warn("unknown frame kind", zap.Int("kind", int(frame.Kind)))
		}
	}
}

func (m *Manager) retryIfDue() {
	if m.token == "" || m.retryAt.IsZero() {
		return
	}
	if m.now().Before(m.retryAt) {
		return
	}
	m.retryAt = time.Time{}
	m.dial()
}
