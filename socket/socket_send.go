package socket

import (
	"shindensen_client/errors"
	"shindensen_client/global"
	"shindensen_client/schemas"
)

// Send writes one chat message. It is only allowed while Open; otherwise a
// failure goes to the bus and nothing is queued.
func (m *Manager) Send(chatID int64, text string, files []schemas.FilePayload) {
	if m.state != Open || m.handle == nil {
		m.emitter.Emit(errors.NewMisuse("socket not open"))
		return
	}

	payload := schemas.ChatMessagePayload{
		ChatID: chatID,
		Files:  files,
	}
	if text != "" {
		payload.Content = schemas.StringPtr(text)
	}
	if payload.Files == nil {
		payload.Files = []schemas.FilePayload{}
	}

	if err := global.Validator.Struct(payload); err != nil {
		m.emitter.Emit(errors.NewMisuse("invalid message: " + err.Error()))
		return
	}

	b, err := global.JSON.Marshal(payload)
	if err != nil {
		m.emitter.Emit(errors.NewMisuse("encode message: " + err.Error()))
		return
	}

	if err := m.handle.Send(string(b)); err != nil {
		m.emitter.Emit(errors.NewNetworkError("websocket send: " + err.Error()))
	}
}
