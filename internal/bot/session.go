package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guildguard/internal/logging"
)

// Session wraps the gateway connection. The guard only needs guild,
// member, moderation, and audit events, so it asks for exactly those
// intents instead of everything.
type Session struct {
	discord *discordgo.Session
	token   string
}

var globalSession *Session

// Initialize creates the gateway session without connecting.
func Initialize(token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create gateway session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildModeration |
		discordgo.IntentGuildIntegrations

	globalSession = &Session{
		discord: dg,
		token:   token,
	}

	return nil
}

// GetSession returns the global session, or nil before Initialize.
func GetSession() *Session {
	return globalSession
}

// GetDiscord returns the underlying gateway session.
func (s *Session) GetDiscord() *discordgo.Session {
	return s.discord
}

// Connect opens the gateway connection and sets presence.
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	if err := s.discord.UpdateWatchStatus(0, "for suspicious activity"); err != nil {
		logging.Warn("[BOT] Failed to set presence: %v", err)
	}

	if s.discord.State.User != nil {
		logging.Info("[BOT] Connected as %s (%s)", s.discord.State.User.Username, s.discord.State.User.ID)
	}
	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// BotUserID returns our own account ID, or "" before Connect.
func (s *Session) BotUserID() string {
	if s.discord.State.User == nil {
		return ""
	}
	return s.discord.State.User.ID
}

// RegisterCommands registers the slash commands globally.
func (s *Session) RegisterCommands(commands []*discordgo.ApplicationCommand) error {
	logging.Info("[BOT] Registering %d slash commands...", len(commands))

	for _, cmd := range commands {
		if _, err := s.discord.ApplicationCommandCreate(s.discord.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		logging.Info("[BOT] Registered command: /%s", cmd.Name)
	}

	return nil
}

// AddHandler adds a gateway event handler.
func (s *Session) AddHandler(handler interface{}) {
	s.discord.AddHandler(handler)
}
