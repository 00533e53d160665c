package ledger

import (
	"time"

	"github.com/patrickmn/go-cache"

	"guildguard/internal/logging"
)

const (
	// DefaultTTL is how long an activity record stays relevant.
	DefaultTTL = time.Hour
	// PruneInterval is how often expired records are swept.
	PruneInterval = 30 * time.Minute
)

// Ledger is a time-windowed record of recent actions keyed by user.
// Nothing in the mitigation path reads it; it exists so a future
// rate-limiting layer has usage data to work with.
type Ledger struct {
	entries *cache.Cache
	ttl     time.Duration
	stop    chan struct{}
}

// Record is one observed action by one user.
type Record struct {
	UserID    string
	Action    string
	Timestamp time.Time
}

// New creates a ledger whose records expire after ttl. Pruning is driven
// by RunJanitor rather than the cache's own background sweeper so the
// sweep cadence stays explicit.
func New(ttl time.Duration) *Ledger {
	return &Ledger{
		entries: cache.New(ttl, cache.NoExpiration),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
}

// Observe records that userID performed action now.
func (l *Ledger) Observe(userID, action string) {
	l.entries.Set(userID+":"+action, Record{
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now(),
	}, l.ttl)
}

// Prune drops all expired records.
func (l *Ledger) Prune() {
	l.entries.DeleteExpired()
}

// Len returns the number of live records.
func (l *Ledger) Len() int {
	return l.entries.ItemCount()
}

// RunJanitor sweeps expired records on a fixed interval until Stop is
// called. heartbeat, when non-nil, is invoked after every sweep.
func (l *Ledger) RunJanitor(interval time.Duration, heartbeat func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Prune()
			if heartbeat != nil {
				heartbeat()
			}
			logging.Debug("[LEDGER] Pruned expired activity records, %d live", l.Len())
		case <-l.stop:
			return
		}
	}
}

// Stop terminates a running janitor.
func (l *Ledger) Stop() {
	close(l.stop)
}
