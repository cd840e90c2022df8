package devserver

import (
	"sync"
	"time"

	"shindensen_client/global"
	"shindensen_client/schemas"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const READ_DEADLINE = 190 * time.Second
const WRITE_DEADLINE = 10 * time.Second

type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) write(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(WRITE_DEADLINE)); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// hub tracks the open connections of every user.
type hub struct {
	mu    sync.RWMutex
	peers map[int64]map[*peer]struct{}
}

func newHub() *hub {
	return &hub{peers: make(map[int64]map[*peer]struct{})}
}

func (h *hub) add(userID int64, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.peers[userID] == nil {
		h.peers[userID] = make(map[*peer]struct{})
	}
	h.peers[userID][p] = struct{}{}
}

func (h *hub) remove(userID int64, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers[userID], p)
	if len(h.peers[userID]) == 0 {
		delete(h.peers, userID)
	}
}

func (h *hub) connected(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers[userID])
}

// send writes data to every connection of every user in recipients and
// returns how many writes failed.
func (h *hub) send(recipients []int64, data []byte) int {
	h.mu.RLock()
	var targets []*peer
	for _, id := range recipients {
		for p := range h.peers[id] {
			targets = append(targets, p)
		}
	}
	h.mu.RUnlock()

	failed := 0
	for _, p := range targets {
		if err := p.write(data); err != nil {
			failed++
		}
	}
	return failed
}

func (h *hub) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.peers {
		for p := range set {
			p.conn.Close()
		}
	}
}

// stream starts and maintains websocket connection
func (s *Server) stream(ws *websocket.Conn) {
	userID := ws.Locals("userid").(int64)
	p := &peer{conn: ws}
	s.hub.add(userID, p)
	defer func() {
		s.hub.remove(userID, p)
		ws.Close()
		s.log.Info("websocket closed", zap.Int64("user", userID))
	}()
	s.log.Info("websocket opened", zap.Int64("user", userID))

	for {
		if err := ws.SetReadDeadline(time.Now().Add(READ_DEADLINE)); err != nil {
			s.log.Warn("websocket read deadline", zap.Error(err))
			return
		}
		mt, msg, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read", zap.Int64("user", userID), zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			s.log.Warn("websocket binary message ignored", zap.Int64("user", userID))
			continue
		}
		s.deliver(userID, msg)
	}
}

func (s *Server) deliver(userID int64, raw []byte) {
	var payload schemas.ChatMessagePayload
	if err := global.JSON.Unmarshal(raw, &payload); err != nil {
		s.log.Info("websocket payload invalid", zap.Int64("user", userID), zap.Error(err))
		return
	}
	if err := global.Validator.Struct(payload); err != nil {
		s.log.Info("websocket payload rejected", zap.Int64("user", userID), zap.Error(err))
		return
	}

	msg, recipients, err := s.store.addMessage(userID, payload)
	if err != nil {
		s.log.Info("websocket message refused", zap.Int64("user", userID), zap.Int64("chat", payload.ChatID), zap.Error(err))
		return
	}
	data, err := global.JSON.Marshal(msg)
	if err != nil {
		s.log.Error("encode message", zap.Error(err))
		return
	}
	if failed := s.hub.send(recipients, data); failed > 0 {
		s.log.Warn("message delivery failed", zap.Int64("message", msg.ID), zap.Int("connections", failed))
	}
}
