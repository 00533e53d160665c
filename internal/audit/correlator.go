package audit

import (
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"

	"guildguard/internal/events"
	"guildguard/internal/logging"
)

const (
	// entryTTL bounds how long a gateway-observed audit entry can stand
	// in for a REST lookup. Structural events arrive within moments of
	// their audit entries.
	entryTTL = 5 * time.Second

	auditFetchLimit = 5

	// recencyWindow bounds how old a REST-fetched audit entry may be and
	// still attribute an event. A stale kick entry for a user must not
	// attribute that user's later voluntary leave.
	recencyWindow = 15 * time.Second
)

// Correlator attributes raw structural events to the member who caused
// them by consulting the guild audit trail. The event payload's apparent
// actor is never trusted for privileged actions.
type Correlator struct {
	session *discordgo.Session
	entries *cache.Cache
}

func NewCorrelator(session *discordgo.Session) *Correlator {
	return &Correlator{
		session: session,
		entries: cache.New(entryTTL, time.Minute),
	}
}

type cachedEntry struct {
	actorID  string
	targetID string
}

// actionCode maps an engine action type to its audit log action.
func actionCode(action events.ActionType) (discordgo.AuditLogAction, bool) {
	switch action {
	case events.ActionChannelCreate:
		return discordgo.AuditLogActionChannelCreate, true
	case events.ActionChannelDelete:
		return discordgo.AuditLogActionChannelDelete, true
	case events.ActionRoleCreate:
		return discordgo.AuditLogActionRoleCreate, true
	case events.ActionRoleDelete:
		return discordgo.AuditLogActionRoleDelete, true
	case events.ActionBan:
		return discordgo.AuditLogActionMemberBanAdd, true
	case events.ActionKick:
		return discordgo.AuditLogActionMemberKick, true
	case events.ActionBotAdd:
		return discordgo.AuditLogActionBotAdd, true
	default:
		return 0, false
	}
}

func key(guildID string, code discordgo.AuditLogAction) string {
	return guildID + ":" + strconv.Itoa(int(code))
}

// Observe feeds a gateway-delivered audit entry into the cache so a
// following structural event resolves without a REST round trip. Entries
// caused by our own account or by other bot accounts are not cached:
// bot actors resolve to nobody on every path.
func (c *Correlator) Observe(guildID, actorID, targetID string, code int) {
	if c.isBotActor(guildID, actorID) {
		return
	}
	c.entries.Set(key(guildID, discordgo.AuditLogAction(code)), cachedEntry{
		actorID:  actorID,
		targetID: targetID,
	}, cache.DefaultExpiration)
}

// isBotActor reports whether the actor is our own account or a member
// the state cache knows to be a bot account.
func (c *Correlator) isBotActor(guildID, actorID string) bool {
	if c.session == nil || c.session.State == nil {
		return false
	}
	if c.session.State.User != nil && actorID == c.session.State.User.ID {
		return true
	}
	member, err := c.session.State.Member(guildID, actorID)
	if err != nil || member.User == nil {
		return false
	}
	return member.User.Bot
}

// ResolveActor returns the user behind the most recent audit entry for
// the given action, preferring the cache and falling back to a REST
// query. Actions performed by bot accounts resolve to nothing: other
// bots are not this engine's concern.
func (c *Correlator) ResolveActor(guildID string, action events.ActionType, targetID string) (string, bool) {
	code, ok := actionCode(action)
	if !ok {
		return "", false
	}

	if v, found := c.entries.Get(key(guildID, code)); found {
		entry := v.(cachedEntry)
		if targetID == "" || entry.targetID == "" || entry.targetID == targetID {
			if c.isBotActor(guildID, entry.actorID) {
				return "", false
			}
			return entry.actorID, true
		}
	}

	log, err := c.session.GuildAuditLog(guildID, "", "", int(code), auditFetchLimit)
	if err != nil {
		logging.Warn("[AUDIT] Failed to fetch audit log for guild %s action %d: %v", guildID, code, err)
		return "", false
	}

	now := time.Now()
	for _, entry := range log.AuditLogEntries {
		if !isRecentEntry(entry.ID, now) {
			continue
		}
		if targetID != "" && entry.TargetID != "" && entry.TargetID != targetID {
			continue
		}
		if isBotUser(log, entry.UserID) {
			logging.Debug("[AUDIT] Skipping action %d by bot account %s", code, entry.UserID)
			return "", false
		}
		c.entries.Set(key(guildID, code), cachedEntry{
			actorID:  entry.UserID,
			targetID: entry.TargetID,
		}, cache.DefaultExpiration)
		return entry.UserID, true
	}

	return "", false
}

// isRecentEntry reports whether the entry's snowflake timestamp falls
// inside the attribution window.
func isRecentEntry(entryID string, now time.Time) bool {
	ts, err := discordgo.SnowflakeTimestamp(entryID)
	if err != nil {
		return false
	}
	return now.Sub(ts) <= recencyWindow
}

func isBotUser(log *discordgo.GuildAuditLog, userID string) bool {
	for _, user := range log.Users {
		if user.ID == userID {
			return user.Bot
		}
	}
	return false
}
