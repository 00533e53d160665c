package dispatcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func responseWithHeaders(remaining, limit int, resetAt time.Time) *fasthttp.Response {
	resp := &fasthttp.Response{}
	resp.Header.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	resp.Header.Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	resp.Header.Set("X-RateLimit-Reset", fmt.Sprintf("%d.000", resetAt.Unix()))
	return resp
}

func TestUnknownRouteExecutes(t *testing.T) {
	rlm := NewRateLimitMonitor()
	assert.True(t, rlm.CanExecute("ban", "guild-1"))
}

func TestExhaustedBucketBlocks(t *testing.T) {
	rlm := NewRateLimitMonitor()
	rlm.UpdateFromResponse(responseWithHeaders(0, 5, time.Now().Add(time.Minute)), "ban", "guild-1")

	assert.False(t, rlm.CanExecute("ban", "guild-1"))
	assert.True(t, rlm.CanExecute("ban", "guild-2"))
	assert.True(t, rlm.CanExecute("delete", "guild-1"))
}

func TestBucketResetsAfterWindow(t *testing.T) {
	rlm := NewRateLimitMonitor()
	rlm.UpdateFromResponse(responseWithHeaders(0, 5, time.Now().Add(-time.Second)), "ban", "guild-1")

	assert.True(t, rlm.CanExecute("ban", "guild-1"))
}

func TestRemainingBudgetExecutes(t *testing.T) {
	rlm := NewRateLimitMonitor()
	rlm.UpdateFromResponse(responseWithHeaders(3, 5, time.Now().Add(time.Minute)), "ban", "guild-1")

	assert.True(t, rlm.CanExecute("ban", "guild-1"))
}
