package telegram

import (
	"sync"
	"time"

	"club_meeting_bot/internal/domain/roster"

	"github.com/google/uuid"
)

const defaultPendingTTL = 30 * time.Minute

// PendingDelete is a duplicate awaiting confirmation, tied to the cycle it
// was found in.
type PendingDelete struct {
	Entry   roster.Entry
	CycleID string
}

type pendingItem struct {
	PendingDelete
	userID  int64
	created time.Time
}

// PendingDeletes holds delete confirmations between the question and the
// button press. Callback data only carries the token.
type PendingDeletes struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]pendingItem
}

func NewPendingDeletes(ttl time.Duration) *PendingDeletes {
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	return &PendingDeletes{ttl: ttl, now: time.Now, items: make(map[string]pendingItem)}
}

// Put stores d for userID and returns the confirmation token.
func (p *PendingDeletes) Put(userID int64, d PendingDelete) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for token, item := range p.items {
		if now.Sub(item.created) > p.ttl {
			delete(p.items, token)
		}
	}
	token := uuid.NewString()
	p.items[token] = pendingItem{PendingDelete: d, userID: userID, created: now}
	return token
}

// Take removes and returns the confirmation behind token. Only the user who
// asked can confirm, and only within the TTL.
func (p *PendingDeletes) Take(token string, userID int64) (PendingDelete, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, ok := p.items[token]
	if !ok || item.userID != userID {
		return PendingDelete{}, false
	}
	delete(p.items, token)
	if p.now().Sub(item.created) > p.ttl {
		return PendingDelete{}, false
	}
	return item.PendingDelete, true
}

func (p *PendingDeletes) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
