package events

import "time"

// ActionType identifies an administrative action observed in a guild.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionChannelCreate
	ActionChannelDelete
	ActionRoleCreate
	ActionRoleDelete
	ActionBan
	ActionKick
	ActionBotAdd
)

func (t ActionType) String() string {
	switch t {
	case ActionChannelCreate:
		return "channel_create"
	case ActionChannelDelete:
		return "channel_delete"
	case ActionRoleCreate:
		return "role_create"
	case ActionRoleDelete:
		return "role_delete"
	case ActionBan:
		return "ban"
	case ActionKick:
		return "kick"
	case ActionBotAdd:
		return "bot_add"
	default:
		return "unknown"
	}
}

// Label returns the human-readable form used in alert embeds.
func (t ActionType) Label() string {
	switch t {
	case ActionChannelCreate:
		return "Channel Create"
	case ActionChannelDelete:
		return "Channel Delete"
	case ActionRoleCreate:
		return "Role Create"
	case ActionRoleDelete:
		return "Role Delete"
	case ActionBan:
		return "Ban"
	case ActionKick:
		return "Kick"
	case ActionBotAdd:
		return "Bot Add"
	default:
		return "Unknown"
	}
}

// IsCreate reports whether the action produced a new object that can be
// deleted during cleanup.
func (t ActionType) IsCreate() bool {
	return t == ActionChannelCreate || t == ActionRoleCreate
}

// TargetKind distinguishes what a resolved audit entry points at.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetChannel
	TargetRole
)

// Target is the concrete object an action created or destroyed, when known.
type Target struct {
	Kind TargetKind
	ID   string
	Name string
}

// Event is a single administrative action attributed to an actor.
// Events are ephemeral: they flow through the response engine and are
// never stored.
type Event struct {
	GuildID  string
	ActorID  string
	Type     ActionType
	Target   *Target
	Observed time.Time
}
