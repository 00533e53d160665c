package commands

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"guildguard/internal/logging"
	"guildguard/internal/snapshot"
)

// handleUnlock restores the guild's permission baseline on demand.
// Admin-gated: it is the manual escape hatch after a lockdown.
func (h *Handler) handleUnlock(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	allowed, err := checkAdministrator(s, i)
	if err != nil {
		return err
	}
	if !allowed {
		return respond(s, i, "You need the Administrator permission to unlock the server.")
	}

	if err := h.snapshots.Restore(i.GuildID); err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			return respond(s, i, "No permission baseline has been saved for this server yet.")
		}
		logging.Error("[COMMANDS] Unlock failed for guild %s: %v", i.GuildID, err)
		return respond(s, i, "Restore failed partway through. Check channel permissions manually.")
	}

	logging.Info("[COMMANDS] Guild %s unlocked by %s", i.GuildID, i.Member.User.ID)
	return respond(s, i, "🔓 Server permissions restored to the saved baseline.")
}
