package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guildguard/internal/bot"
	"guildguard/internal/guilds"
	"guildguard/internal/logging"
	"guildguard/internal/snapshot"
	"guildguard/internal/watchdog"
	"guildguard/internal/whitelist"
)

// Handler routes slash command interactions.
type Handler struct {
	session   *bot.Session
	snapshots *snapshot.Store
	registry  *whitelist.Registry
	profiles  *guilds.ProfileStore
	watchdog  *watchdog.Watchdog
}

var globalHandler *Handler

// Initialize wires the command handler and registers the commands.
func Initialize(
	session *bot.Session,
	snapshots *snapshot.Store,
	registry *whitelist.Registry,
	profiles *guilds.ProfileStore,
	wd *watchdog.Watchdog,
) error {
	globalHandler = &Handler{
		session:   session,
		snapshots: snapshots,
		registry:  registry,
		profiles:  profiles,
		watchdog:  wd,
	}

	session.AddHandler(globalHandler.handleInteraction)

	commands := GetAllCommands()
	if err := session.RegisterCommands(commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	logging.Info("[COMMANDS] Handler initialized with %d commands", len(commands))
	return nil
}

// GetHandler returns the global command handler.
func GetHandler() *Handler {
	return globalHandler
}

func (h *Handler) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" || i.Member == nil {
		respondError(s, i, "This command only works inside a server.")
		return
	}

	data := i.ApplicationCommandData()

	var err error
	switch data.Name {
	case "unlock":
		err = h.handleUnlock(s, i)
	case "whitelist":
		if len(data.Options) > 0 {
			switch data.Options[0].Name {
			case "add":
				err = h.handleWhitelistAdd(s, i)
			case "remove":
				err = h.handleWhitelistRemove(s, i)
			case "list":
				err = h.handleWhitelistList(s, i)
			}
		}
	case "status":
		err = h.handleStatus(s, i)
	default:
		err = fmt.Errorf("unknown command: %s", data.Name)
	}

	if err != nil {
		logging.Error("[COMMANDS] Command error [%s]: %v", data.Name, err)
		respondError(s, i, err.Error())
	}
}

// respondError sends an ephemeral error message.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respond sends a plain ephemeral reply.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, message string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
