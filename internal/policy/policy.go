package policy

import "guildguard/internal/events"

// Verdict is the outcome of gating a single action.
type Verdict uint8

const (
	Allow Verdict = iota
	Escalate
)

func (v Verdict) String() string {
	if v == Allow {
		return "allow"
	}
	return "escalate"
}

// Actor is the acting member as seen at event time.
type Actor struct {
	ID string
	// TopRoleRank is the position of the member's highest role.
	TopRoleRank int
}

// GuildInfo is the slice of guild state the policy needs.
type GuildInfo struct {
	ID             string
	OwnerID        string
	BotTopRoleRank int
}

// Whitelist answers membership queries for explicitly exempted users.
// The guild owner is never stored; ownership is checked separately.
type Whitelist interface {
	Contains(guildID, userID string) bool
}

// Policy decides whether an administrative action is suspicious.
// It is a pure rule evaluation with no side effects.
type Policy struct {
	whitelist Whitelist
}

func New(whitelist Whitelist) *Policy {
	return &Policy{whitelist: whitelist}
}

// Decide applies the gating rules in order, first match wins:
//
//  1. the guild owner is always allowed
//  2. whitelisted users are allowed
//  3. actors ranked at or above the bot are allowed: the engine is
//     incapable of acting against them, so no mitigation may ever be
//     attempted downstream
//  4. everything else escalates
//
// Rule 3 is a capability gate, not a trust statement: it guarantees the
// ban/restore path is never reached for actors the platform would refuse
// to act on.
func (p *Policy) Decide(guild GuildInfo, actor Actor, action events.ActionType) Verdict {
	if actor.ID == guild.OwnerID {
		return Allow
	}
	if p.whitelist != nil && p.whitelist.Contains(guild.ID, actor.ID) {
		return Allow
	}
	if actor.TopRoleRank >= guild.BotTopRoleRank {
		return Allow
	}
	return Escalate
}
