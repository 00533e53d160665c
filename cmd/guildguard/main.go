package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guildguard/internal/alerts"
	"guildguard/internal/audit"
	"guildguard/internal/bot"
	"guildguard/internal/commands"
	"guildguard/internal/config"
	"guildguard/internal/database"
	"guildguard/internal/dispatcher"
	"guildguard/internal/engine"
	"guildguard/internal/guilds"
	"guildguard/internal/ledger"
	"guildguard/internal/logging"
	"guildguard/internal/policy"
	"guildguard/internal/snapshot"
	"guildguard/internal/watchdog"
	"guildguard/internal/whitelist"
)

func main() {
	fmt.Println("Starting Guild Guard")

	cfg := config.LoadOrDefault("config.json")

	if err := logging.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		panic(err)
	}

	if cfg.Bot.Token == "" {
		logging.Error("[MAIN] No bot token configured (set DISCORD_TOKEN or config.json)")
		os.Exit(1)
	}

	if err := database.Initialize(cfg.Database.Path); err != nil {
		logging.Error("[MAIN] Database initialization failed: %v", err)
		os.Exit(1)
	}

	components, err := start(cfg)
	if err != nil {
		logging.Error("[MAIN] Startup failed: %v", err)
		os.Exit(1)
	}

	logging.Info("[MAIN] All components started")

	waitForShutdown()

	stop(components)
	logging.Info("[MAIN] Shutdown complete")
}

type components struct {
	session  *bot.Session
	watchdog *watchdog.Watchdog
	activity *ledger.Ledger
}

func start(cfg *config.Config) (*components, error) {
	registry := whitelist.NewRegistry()
	profiles := guilds.NewProfileStore()
	activity := ledger.New(ledger.DefaultTTL)

	httpPool := dispatcher.NewHTTPPool(cfg.Network.HTTPPoolSize)
	httpPool.Warmup(cfg.Network.APIBaseURL)
	rateLimiter := dispatcher.NewRateLimitMonitor()
	executor := dispatcher.NewExecutor(httpPool, rateLimiter, cfg.Bot.Token, cfg.Network.APIBaseURL)

	wd := watchdog.New(30 * time.Second)
	wd.Register("gateway", 5*time.Minute)
	wd.Register("ledger-janitor", 2*ledger.PruneInterval)

	if err := bot.Initialize(cfg.Bot.Token); err != nil {
		return nil, err
	}
	session := bot.GetSession()
	discord := session.GetDiscord()

	platform := bot.NewPlatform(discord, executor)
	snapshots := snapshot.NewStore(platform)
	resolver := alerts.NewResolver(discord, cfg.Alert.ChannelName, profiles)
	notifier := alerts.NewNotifier(discord, resolver)
	correlator := audit.NewCorrelator(discord)

	eng := engine.New(
		policy.New(registry),
		snapshots,
		notifier,
		platform,
		platform,
		activity,
		database.GetDB(),
	)

	handlers := bot.NewHandlers(eng, correlator, profiles, wd, cfg.Protection.BotInviteProtection)
	handlers.Register(session)

	if err := session.Connect(); err != nil {
		return nil, err
	}

	if err := commands.Initialize(session, snapshots, registry, profiles, wd); err != nil {
		return nil, err
	}

	go activity.RunJanitor(ledger.PruneInterval, func() { wd.Heartbeat("ledger-janitor") })
	wd.Start()

	return &components{
		session:  session,
		watchdog: wd,
		activity: activity,
	}, nil
}

func stop(c *components) {
	c.watchdog.Stop()
	c.activity.Stop()

	if err := c.session.Close(); err != nil {
		logging.Warn("[MAIN] Gateway close failed: %v", err)
	}
	if err := database.Close(); err != nil {
		logging.Warn("[MAIN] Database close failed: %v", err)
	}
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logging.Info("[MAIN] Shutdown signal received")
}
