package transport

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const DEFAULT_CHUNK_SIZE = 4096
const EVENT_BUFFER = 256

// HTTP issues requests with fasthttp and streams response bodies back as chunk events.
type HTTP struct {
	client    *fasthttp.Client
	baseURL   string
	chunkSize int
	log       *zap.Logger

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewHTTP creates a transport rooted at baseURL.
func NewHTTP(baseURL string, timeout time.Duration, chunkSize int, log *zap.Logger) *HTTP {
	if chunkSize <= 0 {
		chunkSize = DEFAULT_CHUNK_SIZE
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTP{
		client: &fasthttp.Client{
			Name:               "shindensen",
			ReadTimeout:        timeout,
			WriteTimeout:       timeout,
			StreamResponseBody: true,
		},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		chunkSize: chunkSize,
		log:       log,
		events:    make(chan Event, EVENT_BUFFER),
		done:      make(chan struct{}),
	}
}

// Events is drained by the session tick.
func (h *HTTP) Events() <-chan Event {
	return h.events
}

// Issue sends req in the background. The outcome arrives on Events under id.
func (h *HTTP) Issue(id string, req Request) {
	select {
	case <-h.done:
		return
	default:
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.do(id, req)
	}()
}

// Close stops delivering events and waits for in-flight requests to return.
func (h *HTTP) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	h.wg.Wait()
}

func (h *HTTP) do(id string, r Request) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.baseURL + "/" + strings.TrimPrefix(r.Path, "/"))
	req.Header.SetMethod(r.Method)
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if r.Body != nil {
		req.SetBody(r.Body)
	}

	if err := h.client.Do(req, resp); err != nil {
		h.emit(Event{RequestID: id, Kind: EventFailed, Err: errors.Wrapf(err, "%s %s", r.Method, r.Path)})
		return
	}
	status := resp.StatusCode()

	if stream := resp.BodyStream(); stream != nil {
		defer resp.CloseBodyStream()
		if err := h.pump(id, stream); err != nil {
			h.emit(Event{RequestID: id, Kind: EventFailed, Err: errors.Wrap(err, "read body")})
			return
		}
	} else if body := resp.Body(); len(body) > 0 {
		h.emit(Event{RequestID: id, Kind: EventChunk, Body: append([]byte(nil), body...)})
	}

	h.log.Debug("http response", zap.String("request", id), zap.String("path", r.Path), zap.Int("status", status))
	h.emit(Event{RequestID: id, Kind: EventComplete, Status: status})
}

func (h *HTTP) pump(id string, stream io.Reader) error {
	buf := make([]byte, h.chunkSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if !h.emit(Event{RequestID: id, Kind: EventChunk, Body: append([]byte(nil), buf[:n]...)}) {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *HTTP) emit(ev Event) bool {
	select {
	case h.events <- ev:
		return true
	case <-h.done:
		return false
	}
}
