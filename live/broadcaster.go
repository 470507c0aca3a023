package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	// EventScoreUpdate is the event name carried on pushed snapshots.
	EventScoreUpdate = "score_update"

	// subscriberBuffer is the channel depth per subscriber; a consumer
	// that falls further behind than this starts losing updates.
	subscriberBuffer = 16

	defaultSendTimeout = 100 * time.Millisecond
)

// Snapshot is the latest live score of one match. The payload is opaque,
// sport-specific JSON; the broadcaster never looks inside it. Snapshots
// live only in memory and disappear on Clear or process restart.
type Snapshot struct {
	MatchID   int             `json:"match_id"`
	Sport     string          `json:"sport"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Event is the server-push representation of a snapshot delivered to
// subscribers.
type Event struct {
	Event     string          `json:"event"`
	MatchID   int             `json:"match_id"`
	Sport     string          `json:"sport"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
}

func (s Snapshot) event() Event {
	return Event{
		Event:     EventScoreUpdate,
		MatchID:   s.MatchID,
		Sport:     s.Sport,
		Payload:   s.Payload,
		Timestamp: s.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// Broadcaster keeps the in-memory live score snapshots and fans updates
// out to per-match subscriber channels. It is constructed once at process
// start and passed explicitly to whoever publishes or subscribes; it runs
// no background goroutines of its own, so dropping the last reference is
// the whole teardown.
//
// Delivery is at-most-once, best effort: each subscriber send is
// attempted with a bounded wait and a subscriber that cannot accept in
// time is skipped for that update. The broadcaster never closes
// subscriber channels; their lifetime belongs to the subscribing caller.
type Broadcaster struct {
	mu          sync.Mutex
	snapshots   map[int]Snapshot
	subscribers map[int]map[chan Event]struct{}
	sendTimeout time.Duration
	logger      *slog.Logger
}

func NewBroadcaster(sendTimeout time.Duration, logger *slog.Logger) *Broadcaster {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		snapshots:   make(map[int]Snapshot),
		subscribers: make(map[int]map[chan Event]struct{}),
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Update stores the new snapshot for the match, overwriting any previous
// one, and asynchronously notifies all current subscribers of that match.
func (b *Broadcaster) Update(matchID int, sport string, payload json.RawMessage) Snapshot {
	snap := Snapshot{
		MatchID:   matchID,
		Sport:     sport,
		Payload:   payload,
		UpdatedAt: time.Now().UTC(),
	}

	b.mu.Lock()
	b.snapshots[matchID] = snap
	var targets []chan Event
	if set := b.subscribers[matchID]; len(set) > 0 {
		targets = make([]chan Event, 0, len(set))
		for ch := range set {
			targets = append(targets, ch)
		}
	}
	b.mu.Unlock()

	if len(targets) > 0 {
		go b.fanOut(snap.event(), targets)
	}
	return snap
}

// fanOut runs outside the lock so a stalled subscriber can never block
// new updates or new subscriptions.
func (b *Broadcaster) fanOut(ev Event, targets []chan Event) {
	for _, ch := range targets {
		timer := time.NewTimer(b.sendTimeout)
		select {
		case ch <- ev:
			timer.Stop()
		case <-timer.C:
			b.logger.Warn("live subscriber too slow, skipping update",
				slog.Int("match_id", ev.MatchID))
		}
	}
}

// Subscribe returns a channel that receives every subsequent snapshot for
// any of the given match ids until Unsubscribe. The channel is buffered;
// the caller must drain it or accept losing updates.
func (b *Broadcaster) Subscribe(matchIDs []int) chan Event {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range matchIDs {
		set, ok := b.subscribers[id]
		if !ok {
			set = make(map[chan Event]struct{})
			b.subscribers[id] = set
		}
		set[ch] = struct{}{}
	}
	return ch
}

// Unsubscribe removes the channel from the given match ids. The last
// subscriber of a match frees its subscriber set; the stored snapshot
// stays until Clear. The channel itself is left open for the caller.
func (b *Broadcaster) Unsubscribe(ch chan Event, matchIDs []int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range matchIDs {
		set, ok := b.subscribers[id]
		if !ok {
			continue
		}
		delete(set, ch)
		if len(set) == 0 {
			delete(b.subscribers, id)
		}
	}
}

// Get returns the stored snapshot for the match, if any.
func (b *Broadcaster) Get(matchID int) (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap, ok := b.snapshots[matchID]
	return snap, ok
}

// GetMany returns the stored snapshots for the given matches, keyed by
// match id; matches without a snapshot are absent from the result.
func (b *Broadcaster) GetMany(matchIDs []int) map[int]Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make(map[int]Snapshot, len(matchIDs))
	for _, id := range matchIDs {
		if snap, ok := b.snapshots[id]; ok {
			result[id] = snap
		}
	}
	return result
}

// Clear drops the stored snapshot of a match, e.g. once it completed.
// Subscriber registrations are untouched.
func (b *Broadcaster) Clear(matchID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.snapshots, matchID)
}
