package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserveAndLen(t *testing.T) {
	l := New(DefaultTTL)

	l.Observe("42", "channel_create")
	l.Observe("42", "role_create")
	l.Observe("43", "channel_create")

	assert.Equal(t, 3, l.Len())
}

func TestObserveOverwritesSameUserAction(t *testing.T) {
	l := New(DefaultTTL)

	l.Observe("42", "channel_create")
	l.Observe("42", "channel_create")

	assert.Equal(t, 1, l.Len())
}

func TestPruneDropsExpiredRecords(t *testing.T) {
	l := New(20 * time.Millisecond)

	l.Observe("42", "channel_create")
	time.Sleep(40 * time.Millisecond)
	l.Observe("43", "ban")

	l.Prune()

	assert.Equal(t, 1, l.Len())
}

func TestJanitorSweepsPeriodically(t *testing.T) {
	l := New(10 * time.Millisecond)

	beats := make(chan struct{}, 16)
	go l.RunJanitor(20*time.Millisecond, func() {
		select {
		case beats <- struct{}{}:
		default:
		}
	})
	defer l.Stop()

	l.Observe("42", "kick")

	select {
	case <-beats:
	case <-time.After(time.Second):
		t.Fatal("janitor never ticked")
	}

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 10*time.Millisecond)
}
