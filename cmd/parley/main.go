// Command parley is a multi-provider streaming chat client for the
// terminal.
//
// Usage:
//
//	GEMINI_API_KEY=gk-...     parley [flags]
//	OPENROUTER_API_KEY=sk-... parley [flags]
//
// Flags:
//
//	-provider string  Provider: gemini, openrouter, hface, puter (default: last used)
//	-model string     Model ID (default: provider default)
//	-config string    Path to config file (default ~/.parley/config.toml)
//	-data string      Storage directory (default ~/.parley)
//	-attach string    File or glob to attach to the first message
//	-theme string     Theme: dark, light (default: persisted preference)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/parleychat/parley"
	"github.com/parleychat/parley/attach"
	bt "github.com/parleychat/parley/bubbletea"
	"github.com/parleychat/parley/config"
	"github.com/parleychat/parley/controller"
	"github.com/parleychat/parley/storage"
	"github.com/parleychat/parley/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		providerFlag = flag.String("provider", "", "Provider: gemini, openrouter, hface, puter (default: last used)")
		modelFlag    = flag.String("model", "", "Model ID (provider-specific)")
		configFlag   = flag.String("config", config.Path(), "Path to config file")
		dataFlag     = flag.String("data", config.DataDir(), "Storage directory")
		attachFlag   = flag.String("attach", "", "File or glob to attach to the first message")
		themeFlag    = flag.String("theme", "", "Theme: dark, light (default: persisted preference)")
	)
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}

	st, err := storage.NewDir(*dataFlag)
	if err != nil {
		return err
	}
	sessions := store.New(st)

	// Selection precedence: flag > persisted settings > config file.
	settings := store.LoadSettings(st, store.Settings{
		Provider: parley.ProviderID(cfg.Provider),
		Model:    cfg.Model,
	})
	if *providerFlag != "" {
		settings.Provider = parley.ProviderID(*providerFlag)
		settings.Model = ""
	}
	if *modelFlag != "" {
		settings.Model = *modelFlag
	}
	if !settings.Provider.Valid() {
		return fmt.Errorf("unknown provider %q: must be gemini, openrouter, hface, or puter", settings.Provider)
	}

	providers, available, err := resolveProviders(ctx, cfg)
	if err != nil {
		return err
	}

	// Credential fallback: a preferred provider without a working
	// credential falls back to the first available one, surfaced as a
	// banner rather than a per-message error.
	var banner string
	if _, ok := providers[settings.Provider]; !ok {
		fallback := available[0]
		banner = fmt.Sprintf("No credential for %s; using %s instead. Edit %s to fix this.",
			settings.Provider, fallback, *configFlag)
		settings.Provider = fallback
		settings.Model = ""
	}

	theme := resolveTheme(st, cfg, *themeFlag)

	var initialFile *parley.FileRef
	if *attachFlag != "" {
		initialFile, err = attach.Load(*attachFlag)
		if err != nil {
			return err
		}
	}

	ctrl := controller.New(providers, sessions, settings.Provider)

	send := func(ctx context.Context, req bt.SendRequest, ev bt.Events) (parley.Conversation, error) {
		return ctrl.Send(ctx, req.SessionID, req.Conversation, req.Text, req.File,
			sendOptions(req.Provider, req.Model, ev)...)
	}
	regen := func(ctx context.Context, req bt.RegenerateRequest, ev bt.Events) (parley.Conversation, error) {
		return ctrl.Regenerate(ctx, req.SessionID, req.Conversation, req.AssistantID,
			sendOptions(req.Provider, req.Model, ev)...)
	}

	tuiCfg := bt.Config{
		Provider:   settings.Provider,
		Model:      settings.Model,
		Providers:  available,
		Banner:     banner,
		Attachment: initialFile,
	}
	m := bt.New(send, regen, sessions, st, theme, tuiCfg)

	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

func sendOptions(provider parley.ProviderID, model string, ev bt.Events) []controller.SendOption {
	return []controller.SendOption{
		controller.WithProvider(provider),
		controller.WithModel(model),
		controller.WithConversationHandler(ev.OnConversation),
		controller.WithStatusHandler(ev.OnStatus),
	}
}

// resolveTheme picks the theme: flag, then persisted preference, then the
// config file.
func resolveTheme(st storage.Storage, cfg config.Config, flagValue string) parley.Theme {
	if flagValue != "" {
		return parley.ThemeByName(flagValue)
	}
	if _, ok, err := st.Read(storage.KeyTheme); err == nil && ok {
		return store.LoadTheme(st)
	}
	return parley.ThemeByName(cfg.Theme)
}
