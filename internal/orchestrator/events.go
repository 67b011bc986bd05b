package orchestrator

import (
	"sync"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

// StageEvent is emitted whenever a stage starts, completes or fails.
type StageEvent struct {
	ProjectID string            `json:"project_id"`
	Result    model.StageResult `json:"result"`
}

// Broadcaster fans stage events out to synchronous callbacks and channel
// subscribers. Slow subscribers drop events rather than stall the pipeline.
type Broadcaster struct {
	mu        sync.Mutex
	subs      map[chan StageEvent]struct{}
	callbacks []func(StageEvent)
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan StageEvent]struct{})}
}

// OnStage registers a callback invoked synchronously for every stage
// event. Callbacks must be fast; they run on the pipeline goroutine.
func (b *Broadcaster) OnStage(fn func(StageEvent)) {
	b.mu.Lock()
	b.callbacks = append(b.callbacks, fn)
	b.mu.Unlock()
}

// Subscribe registers a new listener. The returned cancel func must be
// called to release the channel.
func (b *Broadcaster) Subscribe() (<-chan StageEvent, func()) {
	ch := make(chan StageEvent, 32)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) publish(event StageEvent) {
	b.mu.Lock()
	callbacks := b.callbacks
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	b.mu.Unlock()

	for _, fn := range callbacks {
		fn(event)
	}
}
