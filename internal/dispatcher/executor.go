package dispatcher

import (
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"guildguard/internal/logging"
)

// Executor issues the punitive ban calls. Bans go through raw fasthttp
// rather than the gateway library so a mitigation burst rides pooled,
// pre-warmed connections. The ban is the only punitive call: kicks are
// detected and alerted on, never issued.
type Executor struct {
	httpPool    *HTTPPool
	rateLimiter *RateLimitMonitor
	token       string
	baseURL     string
}

func NewExecutor(httpPool *HTTPPool, rateLimiter *RateLimitMonitor, token, baseURL string) *Executor {
	return &Executor{
		httpPool:    httpPool,
		rateLimiter: rateLimiter,
		token:       token,
		baseURL:     baseURL,
	}
}

// Ban issues a guild ban with the given audit reason.
func (e *Executor) Ban(guildID, userID, reason string) error {
	if !e.rateLimiter.CanExecute("ban", guildID) {
		return fmt.Errorf("ban rate limited for guild %s", guildID)
	}

	url := fmt.Sprintf("%s/guilds/%s/bans/%s", e.baseURL, guildID, userID)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPut)
	req.Header.Set("Authorization", "Bot "+e.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Audit-Log-Reason", reason)
	req.SetBodyString(`{"delete_message_seconds":0}`)

	start := time.Now()
	client := e.httpPool.GetClient()
	if err := client.DoTimeout(req, resp, 2*time.Second); err != nil {
		return fmt.Errorf("ban request failed: %w", err)
	}

	e.rateLimiter.UpdateFromResponse(resp, "ban", guildID)

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		logging.Info("[DISPATCH] Banned user %s in guild %s (%d ms, status %d)",
			userID, guildID, time.Since(start).Milliseconds(), status)
		return nil
	}

	return fmt.Errorf("ban rejected with status %d", status)
}
