// Package stream reassembles chunked response bodies per in-flight request.
package stream

import "github.com/valyala/bytebufferpool"

// Reassembler buffers partial bodies keyed by request id. Buffers come from a
// pool and go back to it as soon as their request completes or is released.
type Reassembler struct {
	buffers map[string]*bytebufferpool.ByteBuffer
	pool    bytebufferpool.Pool
}

func NewReassembler() *Reassembler {
	return &Reassembler{buffers: make(map[string]*bytebufferpool.ByteBuffer)}
}

// Append adds chunk to the end of id's buffer.
func (r *Reassembler) Append(id string, chunk []byte) {
	buf, ok := r.buffers[id]
	if !ok {
		buf = r.pool.Get()
		r.buffers[id] = buf
	}
	buf.Write(chunk)
}

// Complete returns everything appended for id, in order, and releases the
// buffer. An id with no appends yields an empty, non-nil body.
func (r *Reassembler) Complete(id string) []byte {
	buf, ok := r.buffers[id]
	if !ok {
		return []byte{}
	}
	body := make([]byte, buf.Len())
	copy(body, buf.B)
	r.release(id, buf)
	return body
}

// Release drops id's buffer without reading it.
func (r *Reassembler) Release(id string) {
	if buf, ok := r.buffers[id]; ok {
		r.release(id, buf)
	}
}

func (r *Reassembler) release(id string, buf *bytebufferpool.ByteBuffer) {
	delete(r.buffers, id)
	r.pool.Put(buf)
}

// Len returns the number of buffers currently held.
func (r *Reassembler) Len() int {
	return len(r.buffers)
}
