package transport

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"shindensen_client/socket"

	"github.com/fasthttp/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const FRAME_BUFFER = 256

var ErrNotConnected = errors.New("websocket not connected")

// WebSocket dials the push endpoint. Each Open returns a handle whose reader
// goroutine feeds frames into a buffer the session polls on its tick.
type WebSocket struct {
	url    string
	dialer *websocket.Dialer
	log    *zap.Logger
}

func NewWebSocket(url string, handshakeTimeout time.Duration, log *zap.Logger) *WebSocket {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocket{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		log: log,
	}
}

// Open implements socket.Dialer.
func (w *WebSocket) Open(headers map[string]string) socket.Handle {
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &wsHandle{
		frames: make(chan socket.Frame, FRAME_BUFFER),
		done:   make(chan struct{}),
		cancel: cancel,
		log:    w.log,
	}
	dialer := *w.dialer
	dialer.NetDialContext = h.netDial
	h.wg.Add(1)
	go h.run(ctx, &dialer, w.url, header)
	return h
}

type wsHandle struct {
	frames chan socket.Frame
	done   chan struct{}
	cancel context.CancelFunc
	log    *zap.Logger
	wg     sync.WaitGroup

	mu        sync.Mutex
	raw       net.Conn
	conn      *websocket.Conn
	closeOnce sync.Once
}

// netDial keeps the raw connection so Close can abort a pending handshake.
func (h *wsHandle) netDial(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		conn.Close()
		return nil, context.Canceled
	default:
	}
	h.raw = conn
	return conn, nil
}

func (h *wsHandle) run(ctx context.Context, dialer *websocket.Dialer, url string, header http.Header) {
	defer h.wg.Done()

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.push(socket.Frame{Kind: socket.FrameError, Err: errors.Wrap(err, "dial")})
		return
	}

	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		conn.Close()
		return
	default:
	}
	h.conn = conn
	h.mu.Unlock()

	h.push(socket.Frame{Kind: socket.FrameOpened})

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-h.done:
				return
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.push(socket.Frame{Kind: socket.FrameClosed})
			} else {
				h.push(socket.Frame{Kind: socket.FrameError, Err: errors.Wrap(err, "read")})
			}
			return
		}
		if mt != websocket.TextMessage {
			h.log.Warn("websocket binary frame ignored", zap.Int("size", len(msg)))
			continue
		}
		if !h.push(socket.Frame{Kind: socket.FrameText, Text: string(msg)}) {
			return
		}
	}
}

func (h *wsHandle) push(f socket.Frame) bool {
	select {
	case h.frames <- f:
		return true
	case <-h.done:
		return false
	}
}

// Poll returns up to max buffered frames without blocking.
func (h *wsHandle) Poll(max int) []socket.Frame {
	var out []socket.Frame
	for len(out) < max {
		select {
		case f := <-h.frames:
			out = append(out, f)
		default:
			return out
		}
	}
	return out
}

func (h *wsHandle) Send(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return ErrNotConnected
	}
	return h.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close tears the connection down and waits for the reader to exit. A dial
// still in progress is aborted.
func (h *wsHandle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.cancel()
		h.mu.Lock()
		close(h.done)
		if h.conn != nil {
			_ = h.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			err = h.conn.Close()
		} else if h.raw != nil {
			h.raw.Close()
		}
		h.mu.Unlock()
		h.wg.Wait()
	})
	return err
}
