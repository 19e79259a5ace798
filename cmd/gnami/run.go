package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/agent/actions"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/agent/turn"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/channels"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/channels/console"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/channels/webhook"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/db"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/integrations"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/provider"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/skills"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/store"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/workspace"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateway()
	},
}

func runGateway() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "gnami.db"))
	if err != nil {
		return err
	}
	defer database.Close()
	st := store.New(database)

	ws, err := workspace.New(cfg.DataDir)
	if err != nil {
		return err
	}

	sk, err := skills.NewStore(filepath.Join(cfg.DataDir, "skills"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sk.Watch(ctx); err != nil {
		logging.Warnf("skill watcher unavailable: %v", err)
	}

	var providers []provider.Provider
	if cfg.Providers.Anthropic.APIKey != "" {
		providers = append(providers, provider.NewAnthropicProvider(cfg.Providers.Anthropic.APIKey))
	}
	if cfg.Providers.OpenAI.APIKey != "" || cfg.Providers.OpenAI.BaseURL != "" {
		providers = append(providers, provider.NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.BaseURL))
	}
	if len(providers) == 0 {
		return fmt.Errorf("no model provider configured; set an API key in %s", cfg.Path())
	}
	chain := provider.NewChain(providers, cfg.Models)

	registry := integrations.NewRegistry()
	registry.Register(integrations.NewBrowserApp(cfg.Browser.ControlURL))

	runner := &actions.Runner{
		Skills:       sk,
		Dispatcher:   registry,
		ShellTimeout: time.Duration(cfg.Shell.TimeoutMs) * time.Millisecond,
	}

	engine := turn.New(cfg, st, ws, sk, chain, runner)

	var active []channels.Channel
	if cfg.Channels.Console.Enabled {
		active = append(active, console.New())
	}
	if cfg.Channels.Webhook.Enabled {
		active = append(active, webhook.New(webhook.Config{
			Listen:      cfg.Channels.Webhook.Listen,
			CallbackURL: cfg.Channels.Webhook.CallbackURL,
		}))
	}
	if len(active) == 0 {
		// Console is the fallback so a bare install is still usable
		active = append(active, console.New())
	}

	for _, ch := range active {
		ch := ch
		engine.RegisterSender(ch.ID(), ch)
		ch.SetHandler(func(msg channels.InboundMessage) {
			go engine.HandleInbound(ctx, msg)
		})
		if err := ch.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect channel %s: %w", ch.ID(), err)
		}
		logging.Infof("channel %s connected", ch.ID())
	}
	defer func() {
		for _, ch := range active {
			_ = ch.Disconnect()
		}
	}()

	logging.Info("gnami gateway running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logging.Infof("received %v, shutting down", sig)
	case <-ctx.Done():
	}
	return nil
}
