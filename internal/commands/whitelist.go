package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guildguard/internal/logging"
	"guildguard/internal/whitelist"
)

func commandUser(i *discordgo.InteractionCreate, s *discordgo.Session) *discordgo.User {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return nil
	}
	for _, opt := range options[0].Options {
		if opt.Name == "user" {
			return opt.UserValue(s)
		}
	}
	return nil
}

// handleWhitelistAdd trusts a user. Owner-gated: the whitelist exempts
// users from every protection, so only the owner may grow it.
func (h *Handler) handleWhitelistAdd(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guild, err := resolveGuild(s, i.GuildID)
	if err != nil {
		return err
	}

	user := commandUser(i, s)
	if user == nil {
		return respond(s, i, "You must name a user to whitelist.")
	}

	err = h.registry.Add(i.GuildID, guild.OwnerID, i.Member.User.ID, user.ID)
	switch {
	case errors.Is(err, whitelist.ErrNotOwner):
		return respond(s, i, "Only the server owner can manage the whitelist.")
	case errors.Is(err, whitelist.ErrOwnerImplicit):
		return respond(s, i, "The server owner is always trusted and cannot be whitelisted.")
	case err != nil:
		return err
	}

	logging.Info("[COMMANDS] Whitelisted %s in guild %s", user.ID, i.GuildID)
	return respond(s, i, fmt.Sprintf("✅ <@%s> is now whitelisted.", user.ID))
}

func (h *Handler) handleWhitelistRemove(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guild, err := resolveGuild(s, i.GuildID)
	if err != nil {
		return err
	}

	user := commandUser(i, s)
	if user == nil {
		return respond(s, i, "You must name a user to remove.")
	}

	err = h.registry.Remove(i.GuildID, guild.OwnerID, i.Member.User.ID, user.ID)
	switch {
	case errors.Is(err, whitelist.ErrNotOwner):
		return respond(s, i, "Only the server owner can manage the whitelist.")
	case errors.Is(err, whitelist.ErrNotListed):
		return respond(s, i, fmt.Sprintf("<@%s> is not on the whitelist.", user.ID))
	case err != nil:
		return err
	}

	logging.Info("[COMMANDS] Removed %s from whitelist in guild %s", user.ID, i.GuildID)
	return respond(s, i, fmt.Sprintf("✅ <@%s> removed from the whitelist.", user.ID))
}

func (h *Handler) handleWhitelistList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	allowed, err := checkOwnerOnly(s, i)
	if err != nil {
		return err
	}
	if !allowed {
		return respond(s, i, "Only the server owner can view the whitelist.")
	}

	userIDs := h.registry.List(i.GuildID)
	if len(userIDs) == 0 {
		return respond(s, i, "The whitelist is empty.")
	}

	var b strings.Builder
	b.WriteString("**Whitelisted users:**\n")
	for _, userID := range userIDs {
		fmt.Fprintf(&b, "• <@%s> (`%s`)\n", userID, userID)
	}
	return respond(s, i, b.String())
}
