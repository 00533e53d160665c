package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"guildguard/internal/audit"
	"guildguard/internal/database"
	"guildguard/internal/engine"
	"guildguard/internal/events"
	"guildguard/internal/guilds"
	"guildguard/internal/logging"
	"guildguard/internal/watchdog"
)

// Handlers wires gateway events into the response engine. Every
// structural event is attributed through the audit correlator before
// it becomes an engine event; events that cannot be attributed are
// dropped rather than guessed at.
type Handlers struct {
	engine              *engine.Engine
	correlator          *audit.Correlator
	profiles            *guilds.ProfileStore
	watchdog            *watchdog.Watchdog
	botInviteProtection bool
}

func NewHandlers(
	eng *engine.Engine,
	correlator *audit.Correlator,
	profiles *guilds.ProfileStore,
	wd *watchdog.Watchdog,
	botInviteProtection bool,
) *Handlers {
	return &Handlers{
		engine:              eng,
		correlator:          correlator,
		profiles:            profiles,
		watchdog:            wd,
		botInviteProtection: botInviteProtection,
	}
}

// Register attaches all gateway handlers to the session.
func (h *Handlers) Register(s *Session) {
	s.AddHandler(h.onReady)
	s.AddHandler(h.onGuildCreate)
	s.AddHandler(h.onAuditLogEntry)
	s.AddHandler(h.onChannelCreate)
	s.AddHandler(h.onChannelDelete)
	s.AddHandler(h.onRoleCreate)
	s.AddHandler(h.onRoleDelete)
	s.AddHandler(h.onBanAdd)
	s.AddHandler(h.onMemberRemove)
	s.AddHandler(h.onMemberAdd)
	s.AddHandler(h.onBanRemove)

	logging.Info("[BOT] Gateway event handlers registered")
}

func (h *Handlers) heartbeat() {
	if h.watchdog != nil {
		h.watchdog.Heartbeat("gateway")
	}
}

// dispatch hands an attributed event to the engine off the gateway
// goroutine so slow mitigation never stalls event delivery.
func (h *Handlers) dispatch(evt events.Event) {
	go h.engine.Handle(evt)
}

// resolve attributes a structural event to its actor. An empty actor
// means the action was ours, another bot's, or unattributable.
func (h *Handlers) resolve(guildID string, action events.ActionType, targetID string) (string, bool) {
	actorID, ok := h.correlator.ResolveActor(guildID, action, targetID)
	if !ok || actorID == "" {
		logging.Warn("[BOT] Dropping %s in guild %s: no attributable actor", action, guildID)
		return "", false
	}
	return actorID, true
}

func (h *Handlers) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	h.heartbeat()
	logging.Info("[BOT] Ready: %s serving %d guilds", r.User.Username, len(r.Guilds))
}

func (h *Handlers) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	h.heartbeat()
	h.profiles.Update(g.ID, func(p *guilds.Profile) {
		p.Name = g.Name
		p.OwnerID = g.OwnerID
		p.MemberCount = g.MemberCount
	})
	logging.Info("[BOT] Guarding guild %s (%s), owner %s", g.Name, g.ID, g.OwnerID)
}

func (h *Handlers) onAuditLogEntry(_ *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate) {
	h.heartbeat()
	if e.GuildID == "" || e.ActionType == nil {
		return
	}
	h.correlator.Observe(e.GuildID, e.UserID, e.TargetID, int(*e.ActionType))
}

func (h *Handlers) onChannelCreate(_ *discordgo.Session, c *discordgo.ChannelCreate) {
	h.heartbeat()
	if c.GuildID == "" {
		return
	}

	actorID, ok := h.resolve(c.GuildID, events.ActionChannelCreate, c.ID)
	if !ok {
		return
	}

	h.dispatch(events.Event{
		GuildID:  c.GuildID,
		ActorID:  actorID,
		Type:     events.ActionChannelCreate,
		Target:   &events.Target{Kind: events.TargetChannel, ID: c.ID, Name: c.Name},
		Observed: time.Now(),
	})
}

func (h *Handlers) onChannelDelete(_ *discordgo.Session, c *discordgo.ChannelDelete) {
	h.heartbeat()
	if c.GuildID == "" {
		return
	}

	actorID, ok := h.resolve(c.GuildID, events.ActionChannelDelete, c.ID)
	if !ok {
		return
	}

	h.dispatch(events.Event{
		GuildID:  c.GuildID,
		ActorID:  actorID,
		Type:     events.ActionChannelDelete,
		Target:   &events.Target{Kind: events.TargetChannel, ID: c.ID, Name: c.Name},
		Observed: time.Now(),
	})
}

func (h *Handlers) onRoleCreate(_ *discordgo.Session, r *discordgo.GuildRoleCreate) {
	h.heartbeat()
	if r.GuildID == "" {
		return
	}
	// Managed roles are created by integrations, not members.
	if r.Role.Managed {
		logging.Debug("[BOT] Skipping managed role create %s in guild %s", r.Role.ID, r.GuildID)
		return
	}

	actorID, ok := h.resolve(r.GuildID, events.ActionRoleCreate, r.Role.ID)
	if !ok {
		return
	}

	h.dispatch(events.Event{
		GuildID:  r.GuildID,
		ActorID:  actorID,
		Type:     events.ActionRoleCreate,
		Target:   &events.Target{Kind: events.TargetRole, ID: r.Role.ID, Name: r.Role.Name},
		Observed: time.Now(),
	})
}

func (h *Handlers) onRoleDelete(_ *discordgo.Session, r *discordgo.GuildRoleDelete) {
	h.heartbeat()
	if r.GuildID == "" {
		return
	}

	actorID, ok := h.resolve(r.GuildID, events.ActionRoleDelete, r.RoleID)
	if !ok {
		return
	}

	h.dispatch(events.Event{
		GuildID:  r.GuildID,
		ActorID:  actorID,
		Type:     events.ActionRoleDelete,
		Target:   &events.Target{Kind: events.TargetRole, ID: r.RoleID},
		Observed: time.Now(),
	})
}

func (h *Handlers) onBanAdd(s *discordgo.Session, b *discordgo.GuildBanAdd) {
	h.heartbeat()
	if b.GuildID == "" {
		return
	}

	actorID, ok := h.resolve(b.GuildID, events.ActionBan, b.User.ID)
	if !ok {
		return
	}
	// Our own mitigation bans echo back as GuildBanAdd.
	if s.State.User != nil && actorID == s.State.User.ID {
		return
	}

	h.dispatch(events.Event{
		GuildID:  b.GuildID,
		ActorID:  actorID,
		Type:     events.ActionBan,
		Observed: time.Now(),
	})
}

func (h *Handlers) onMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	h.heartbeat()
	if m.GuildID == "" {
		return
	}

	// A remove without a matching kick audit entry is a voluntary leave.
	actorID, ok := h.correlator.ResolveActor(m.GuildID, events.ActionKick, m.User.ID)
	if !ok || actorID == "" {
		return
	}
	if s.State.User != nil && actorID == s.State.User.ID {
		return
	}

	h.dispatch(events.Event{
		GuildID:  m.GuildID,
		ActorID:  actorID,
		Type:     events.ActionKick,
		Observed: time.Now(),
	})
}

func (h *Handlers) onMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	h.heartbeat()
	if m.GuildID == "" {
		return
	}

	if !m.User.Bot {
		// A human rejoining after a guard ban gets a clean slate.
		if db := database.GetDB(); db != nil && db.IsBannedUser(m.GuildID, m.User.ID) {
			if err := db.RemoveBannedUser(m.GuildID, m.User.ID); err != nil {
				logging.Warn("[BOT] Failed to clear ban record for %s: %v", m.User.ID, err)
			} else {
				logging.Info("[BOT] Cleared ban record for rejoining user %s in guild %s", m.User.ID, m.GuildID)
			}
		}
		return
	}

	if !h.botInviteProtection {
		return
	}
	if s.State.User != nil && m.User.ID == s.State.User.ID {
		return
	}

	actorID, ok := h.resolve(m.GuildID, events.ActionBotAdd, m.User.ID)
	if !ok {
		return
	}

	h.dispatch(events.Event{
		GuildID:  m.GuildID,
		ActorID:  actorID,
		Type:     events.ActionBotAdd,
		Observed: time.Now(),
	})
}

func (h *Handlers) onBanRemove(_ *discordgo.Session, b *discordgo.GuildBanRemove) {
	h.heartbeat()
	if b.GuildID == "" {
		return
	}

	if db := database.GetDB(); db != nil {
		if err := db.RemoveBannedUser(b.GuildID, b.User.ID); err != nil {
			logging.Warn("[BOT] Failed to clear ban record for unbanned user %s: %v", b.User.ID, err)
		}
	}
}
