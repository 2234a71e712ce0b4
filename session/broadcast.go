package session

import (
	"sync"

	"github.com/accessware/go-console/credentials"
)

// TokenEvent carries a freshly issued credential pair to subscribers,
// replacing a process-global "tokensRefreshed" event with an explicit
// channel both the request pipeline and the UI store hold a reference
// to.
type TokenEvent struct {
	Pair credentials.Pair
}

// TokenEvents fans a TokenEvent out to every subscriber. Each
// subscriber channel is buffered one deep: a subscriber that has not
// drained the previous event keeps only the newest, which is the only
// pair worth having.
type TokenEvents struct {
	lock sync.Mutex
	subs map[chan TokenEvent]struct{}
}

func NewTokenEvents() *TokenEvents {
	return &TokenEvents{subs: make(map[chan TokenEvent]struct{})}
}

func (e *TokenEvents) Subscribe() <-chan TokenEvent {
	e.lock.Lock()
	defer e.lock.Unlock()

	ch := make(chan TokenEvent, 1)
	e.subs[ch] = struct{}{}
	return ch
}

func (e *TokenEvents) Unsubscribe(ch <-chan TokenEvent) {
	e.lock.Lock()
	defer e.lock.Unlock()

	for sub := range e.subs {
		if sub == ch {
			delete(e.subs, sub)
			close(sub)
			return
		}
	}
}

func (e *TokenEvents) Publish(event TokenEvent) {
	e.lock.Lock()
	defer e.lock.Unlock()

	for sub := range e.subs {
		select {
		case sub <- event:
		default:
			// replace the stale undrained event with the new one
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- event:
			default:
			}
		}
	}
}
