package audit

import (
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildguard/internal/events"
)

// testSession builds a gateway session with a populated state cache:
// our own account, one integration bot, and one human member.
func testSession(t *testing.T) *discordgo.Session {
	t.Helper()

	state := discordgo.NewState()
	state.User = &discordgo.User{ID: "self"}
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "g1"}))
	require.NoError(t, state.MemberAdd(&discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "integration", Bot: true},
	}))
	require.NoError(t, state.MemberAdd(&discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "42", Bot: false},
	}))

	return &discordgo.Session{State: state}
}

func TestActionCodeMapping(t *testing.T) {
	cases := map[events.ActionType]discordgo.AuditLogAction{
		events.ActionChannelCreate: discordgo.AuditLogActionChannelCreate,
		events.ActionChannelDelete: discordgo.AuditLogActionChannelDelete,
		events.ActionRoleCreate:    discordgo.AuditLogActionRoleCreate,
		events.ActionRoleDelete:    discordgo.AuditLogActionRoleDelete,
		events.ActionBan:           discordgo.AuditLogActionMemberBanAdd,
		events.ActionKick:          discordgo.AuditLogActionMemberKick,
		events.ActionBotAdd:        discordgo.AuditLogActionBotAdd,
	}

	for action, want := range cases {
		code, ok := actionCode(action)
		assert.True(t, ok, "action %s must map", action)
		assert.Equal(t, want, code)
	}

	_, ok := actionCode(events.ActionUnknown)
	assert.False(t, ok)
}

func TestResolveActorFromObservedEntry(t *testing.T) {
	// No session needed: Observe seeds the cache and the lookup never
	// reaches REST.
	c := NewCorrelator(nil)
	c.Observe("g1", "42", "c9", int(discordgo.AuditLogActionChannelCreate))

	actor, ok := c.ResolveActor("g1", events.ActionChannelCreate, "c9")
	assert.True(t, ok)
	assert.Equal(t, "42", actor)
}

func TestResolveActorIgnoresMismatchedTargetThenMissesCache(t *testing.T) {
	c := NewCorrelator(nil)
	c.Observe("g1", "42", "c9", int(discordgo.AuditLogActionChannelCreate))

	// Cached entry targets a different object; the cache must not answer
	// for it. (The REST fallback is exercised against the live platform.)
	v, found := c.entries.Get(key("g1", discordgo.AuditLogActionChannelCreate))
	assert.True(t, found)
	entry := v.(cachedEntry)
	assert.NotEqual(t, "other", entry.targetID)
}

func TestResolveActorWithoutTargetAcceptsCache(t *testing.T) {
	c := NewCorrelator(nil)
	c.Observe("g1", "42", "c9", int(discordgo.AuditLogActionMemberBanAdd))

	actor, ok := c.ResolveActor("g1", events.ActionBan, "")
	assert.True(t, ok)
	assert.Equal(t, "42", actor)
}

func TestObserveSkipsOwnActions(t *testing.T) {
	c := NewCorrelator(testSession(t))
	c.Observe("g1", "self", "c9", int(discordgo.AuditLogActionChannelDelete))

	_, found := c.entries.Get(key("g1", discordgo.AuditLogActionChannelDelete))
	assert.False(t, found, "entries caused by our own account must not be cached")
}

func TestObserveSkipsBotActors(t *testing.T) {
	c := NewCorrelator(testSession(t))
	c.Observe("g1", "integration", "c9", int(discordgo.AuditLogActionChannelCreate))

	_, found := c.entries.Get(key("g1", discordgo.AuditLogActionChannelCreate))
	assert.False(t, found, "entries caused by bot accounts must not be cached")
}

func TestObserveKeepsHumanActors(t *testing.T) {
	c := NewCorrelator(testSession(t))
	c.Observe("g1", "42", "c9", int(discordgo.AuditLogActionChannelCreate))

	actor, ok := c.ResolveActor("g1", events.ActionChannelCreate, "c9")
	assert.True(t, ok)
	assert.Equal(t, "42", actor)
}

func TestCachedEntryForBotActorResolvesToNobody(t *testing.T) {
	// The bot membership is unknown at observe time, so the entry lands
	// in the cache; the state learns it is a bot before resolution.
	sess := testSession(t)
	c := NewCorrelator(sess)
	c.Observe("g1", "late-bot", "c9", int(discordgo.AuditLogActionChannelCreate))

	require.NoError(t, sess.State.MemberAdd(&discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "late-bot", Bot: true},
	}))

	actor, ok := c.ResolveActor("g1", events.ActionChannelCreate, "c9")
	assert.False(t, ok)
	assert.Empty(t, actor)
}

func snowflakeAt(ts time.Time) string {
	const discordEpochMs = 1420070400000
	return strconv.FormatInt((ts.UnixMilli()-discordEpochMs)<<22, 10)
}

func TestIsRecentEntry(t *testing.T) {
	now := time.Now()

	assert.True(t, isRecentEntry(snowflakeAt(now.Add(-time.Second)), now))
	assert.False(t, isRecentEntry(snowflakeAt(now.Add(-time.Minute)), now))
	assert.False(t, isRecentEntry("not-a-snowflake", now))
}

func TestIsBotUser(t *testing.T) {
	log := &discordgo.GuildAuditLog{
		Users: []*discordgo.User{
			{ID: "1", Bot: false},
			{ID: "2", Bot: true},
		},
	}

	assert.False(t, isBotUser(log, "1"))
	assert.True(t, isBotUser(log, "2"))
	assert.False(t, isBotUser(log, "3"))
}
