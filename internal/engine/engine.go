package engine

import (
	"fmt"

	"guildguard/internal/database"
	"guildguard/internal/events"
	"guildguard/internal/ledger"
	"guildguard/internal/logging"
	"guildguard/internal/policy"
	"guildguard/internal/snapshot"
)

// Platform is the slice of the external platform the engine mutates
// directly during mitigation and cleanup.
type Platform interface {
	BanMember(guildID, userID, reason string) error
	DeleteChannel(channelID, reason string) error
	DeleteRole(guildID, roleID, reason string) error
}

// Alerter delivers best-effort notices to the guild's alert channel.
type Alerter interface {
	Suspicious(guildID string, evt events.Event) bool
	ActionTaken(guildID, message string)
}

// Directory answers guild and member questions at event time.
type Directory interface {
	GuildInfo(guildID string) (policy.GuildInfo, error)
	ActorRank(guildID, userID string) (int, error)
}

// IncidentSink records processed escalations for operators.
type IncidentSink interface {
	LogIncident(incident *database.Incident) error
	AddBannedUser(guildID, userID, reason string) error
}

// Engine sequences the response to one administrative action:
// gate, alert, punish, restore, clean up. One invocation per event;
// events for different guilds proceed independently, and the snapshot
// store serializes the parts that must not interleave within a guild.
type Engine struct {
	policy    *policy.Policy
	snapshots *snapshot.Store
	alerter   Alerter
	platform  Platform
	directory Directory
	activity  *ledger.Ledger
	incidents IncidentSink
}

func New(
	pol *policy.Policy,
	snapshots *snapshot.Store,
	alerter Alerter,
	platform Platform,
	directory Directory,
	activity *ledger.Ledger,
	incidents IncidentSink,
) *Engine {
	return &Engine{
		policy:    pol,
		snapshots: snapshots,
		alerter:   alerter,
		platform:  platform,
		directory: directory,
		activity:  activity,
		incidents: incidents,
	}
}

// Handle runs the full response sequence for one event. It never
// panics out: a failure while handling one event must not take down
// the process.
func (e *Engine) Handle(evt events.Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("[ENGINE] Recovered while handling %s in guild %s: %v", evt.Type, evt.GuildID, r)
		}
	}()

	guild, err := e.directory.GuildInfo(evt.GuildID)
	if err != nil {
		logging.Warn("[ENGINE] Dropping %s event, guild %s unavailable: %v", evt.Type, evt.GuildID, err)
		return
	}

	rank, err := e.directory.ActorRank(evt.GuildID, evt.ActorID)
	if err != nil {
		logging.Warn("[ENGINE] Dropping %s event, actor %s unavailable in guild %s: %v", evt.Type, evt.ActorID, evt.GuildID, err)
		return
	}

	if e.activity != nil {
		e.activity.Observe(evt.ActorID, evt.Type.String())
	}

	verdict := e.policy.Decide(guild, policy.Actor{ID: evt.ActorID, TopRoleRank: rank}, evt.Type)
	if verdict == policy.Allow {
		return
	}

	rule, ok := ResponseRule(evt.Type)
	if !ok {
		logging.Warn("[ENGINE] No response rule for action %s, ignoring", evt.Type)
		return
	}

	logging.Info("[ENGINE] Escalating %s by actor %s in guild %s", evt.Type, evt.ActorID, evt.GuildID)

	if rule.Alert {
		e.alerter.Suspicious(evt.GuildID, evt)
	}

	actionTaken := "alerted"
	if rule.Ban {
		actionTaken = e.mitigate(evt, rule)
	}

	if rule.DeleteTarget && evt.Target != nil && evt.Type.IsCreate() {
		e.clean(evt)
	}

	e.record(evt, actionTaken)
}

// mitigate captures the permission baseline, bans the actor, and
// restores the baseline. A rejected ban ends mitigation: the capability
// gate should have prevented it, so a rejection here is a race and is
// reported rather than retried.
func (e *Engine) mitigate(evt events.Event, rule Rule) string {
	if err := e.snapshots.CaptureIfAbsent(evt.GuildID); err != nil {
		logging.Warn("[ENGINE] Baseline capture failed for guild %s: %v", evt.GuildID, err)
	}

	reason := fmt.Sprintf("Suspicious: %s", evt.Type)
	if err := e.platform.BanMember(evt.GuildID, evt.ActorID, reason); err != nil {
		logging.Warn("[ENGINE] Ban failed for actor %s in guild %s: %v", evt.ActorID, evt.GuildID, err)
		e.alerter.ActionTaken(evt.GuildID, fmt.Sprintf("Ban of <@%s> failed: %v", evt.ActorID, err))
		return "ban failed"
	}

	if e.incidents != nil {
		if err := e.incidents.AddBannedUser(evt.GuildID, evt.ActorID, reason); err != nil {
			logging.Warn("[ENGINE] Failed to record ban of %s: %v", evt.ActorID, err)
		}
	}

	if !rule.Restore {
		e.alerter.ActionTaken(evt.GuildID, fmt.Sprintf("Banned <@%s>.", evt.ActorID))
		return "banned"
	}

	if err := e.snapshots.Restore(evt.GuildID); err != nil {
		logging.Warn("[ENGINE] Restore failed for guild %s: %v", evt.GuildID, err)
		e.alerter.ActionTaken(evt.GuildID, fmt.Sprintf("Banned <@%s>. Server restore failed.", evt.ActorID))
		return "banned, restore failed"
	}

	e.alerter.ActionTaken(evt.GuildID, fmt.Sprintf("Banned <@%s>. Server restored.", evt.ActorID))
	return "banned, restored"
}

// clean deletes the object the actor created. The object may already be
// gone, so failures are suppressed.
func (e *Engine) clean(evt events.Event) {
	var err error
	switch evt.Target.Kind {
	case events.TargetChannel:
		err = e.platform.DeleteChannel(evt.Target.ID, "Suspicious creation")
	case events.TargetRole:
		err = e.platform.DeleteRole(evt.GuildID, evt.Target.ID, "Suspicious creation")
	default:
		return
	}
	if err != nil {
		logging.Debug("[ENGINE] Cleanup delete failed for %s: %v", evt.Target.ID, err)
	}
}

func (e *Engine) record(evt events.Event, actionTaken string) {
	if e.incidents == nil {
		return
	}
	err := e.incidents.LogIncident(&database.Incident{
		GuildID:     evt.GuildID,
		ActorID:     evt.ActorID,
		Action:      evt.Type.String(),
		Verdict:     policy.Escalate.String(),
		ActionTaken: actionTaken,
	})
	if err != nil {
		logging.Warn("[ENGINE] Failed to log incident: %v", err)
	}
}
