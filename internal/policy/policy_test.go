package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"guildguard/internal/events"
)

type stubWhitelist struct {
	users map[string]bool
}

func (s *stubWhitelist) Contains(guildID, userID string) bool {
	return s.users[guildID+":"+userID]
}

func testGuild() GuildInfo {
	return GuildInfo{
		ID:             "100",
		OwnerID:        "1",
		BotTopRoleRank: 50,
	}
}

func TestDecideOwnerAlwaysAllowed(t *testing.T) {
	p := New(&stubWhitelist{users: map[string]bool{}})
	guild := testGuild()

	actions := []events.ActionType{
		events.ActionChannelCreate,
		events.ActionChannelDelete,
		events.ActionRoleCreate,
		events.ActionRoleDelete,
		events.ActionBan,
		events.ActionKick,
		events.ActionBotAdd,
	}

	for _, action := range actions {
		// Owner rank is irrelevant, even rank 0 is allowed.
		verdict := p.Decide(guild, Actor{ID: "1", TopRoleRank: 0}, action)
		assert.Equal(t, Allow, verdict, "owner must be allowed for %s", action)
	}
}

func TestDecideWhitelistedAllowed(t *testing.T) {
	p := New(&stubWhitelist{users: map[string]bool{"100:42": true}})
	guild := testGuild()

	verdict := p.Decide(guild, Actor{ID: "42", TopRoleRank: 1}, events.ActionChannelDelete)
	assert.Equal(t, Allow, verdict)
}

func TestDecideWhitelistScopedPerGuild(t *testing.T) {
	p := New(&stubWhitelist{users: map[string]bool{"999:42": true}})
	guild := testGuild()

	verdict := p.Decide(guild, Actor{ID: "42", TopRoleRank: 1}, events.ActionChannelDelete)
	assert.Equal(t, Escalate, verdict)
}

func TestDecideEqualOrHigherRankAllowed(t *testing.T) {
	p := New(&stubWhitelist{users: map[string]bool{}})
	guild := testGuild()

	assert.Equal(t, Allow, p.Decide(guild, Actor{ID: "7", TopRoleRank: 50}, events.ActionRoleDelete))
	assert.Equal(t, Allow, p.Decide(guild, Actor{ID: "7", TopRoleRank: 80}, events.ActionRoleDelete))
}

func TestDecideLowerRankEscalates(t *testing.T) {
	p := New(&stubWhitelist{users: map[string]bool{}})
	guild := testGuild()

	verdict := p.Decide(guild, Actor{ID: "7", TopRoleRank: 49}, events.ActionChannelCreate)
	assert.Equal(t, Escalate, verdict)
}

func TestDecideNilWhitelist(t *testing.T) {
	p := New(nil)
	guild := testGuild()

	assert.Equal(t, Escalate, p.Decide(guild, Actor{ID: "7", TopRoleRank: 1}, events.ActionBan))
	assert.Equal(t, Allow, p.Decide(guild, Actor{ID: "1", TopRoleRank: 1}, events.ActionBan))
}
