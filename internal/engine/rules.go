package engine

import "guildguard/internal/events"

// Rule is the response configuration for one action type. Making the
// table data rather than branching keeps the per-action behavior
// auditable in one place.
type Rule struct {
	Alert        bool
	Ban          bool
	Restore      bool
	DeleteTarget bool
}

var responseTable = map[events.ActionType]Rule{
	events.ActionChannelCreate: {Alert: true, Ban: true, Restore: true, DeleteTarget: true},
	events.ActionChannelDelete: {Alert: true, Ban: true, Restore: true},
	events.ActionRoleCreate:    {Alert: true, Ban: true, Restore: true, DeleteTarget: true},
	events.ActionRoleDelete:    {Alert: true, Ban: true, Restore: true},
	events.ActionBotAdd:        {Alert: true, Ban: true, Restore: true},
	events.ActionBan:           {Alert: true},
	events.ActionKick:          {Alert: true},
}

// ResponseRule returns the configured response for an action type.
func ResponseRule(action events.ActionType) (Rule, bool) {
	rule, ok := responseTable[action]
	return rule, ok
}
