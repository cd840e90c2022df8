package actions

import "go.uber.org/zap"

// Bus queues actions until the consumer drains them on its tick. It must only
// be touched from that tick.
type Bus struct {
	queue []Action
	log   *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{log: log}
}

// Emit appends a to the queue.
func (b *Bus) Emit(a Action) {
	if a == nil {
		return
	}
	b.log.Debug("emit", zap.String("action", a.ActionName()))
	b.queue = append(b.queue, a)
}

// Drain returns every queued action in emission order and empties the queue.
func (b *Bus) Drain() []Action {
	out := b.queue
	b.queue = nil
	return out
}

func (b *Bus) Len() int {
	return len(b.queue)
}
