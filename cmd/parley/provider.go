package main

import (
	"context"
	"fmt"

	"github.com/parleychat/parley"
	"github.com/parleychat/parley/config"
	"github.com/parleychat/parley/gemini"
	"github.com/parleychat/parley/hface"
	"github.com/parleychat/parley/openrouter"
	"github.com/parleychat/parley/puter"
)

// fallbackOrder is the preference order when the selected provider has no
// working credential. Puter needs no credential, so the list never comes
// up empty.
var fallbackOrder = []parley.ProviderID{
	parley.ProviderGemini,
	parley.ProviderOpenRouter,
	parley.ProviderHFace,
	parley.ProviderPuter,
}

// resolveProviders constructs every provider with a working credential.
// Credentials come from the config (env vars already applied); a missing
// or placeholder key simply leaves that provider out.
func resolveProviders(ctx context.Context, cfg config.Config) (map[parley.ProviderID]parley.Provider, []parley.ProviderID, error) {
	providers := make(map[parley.ProviderID]parley.Provider)
	var available []parley.ProviderID

	for _, id := range fallbackOrder {
		key, ok := cfg.Key(id)
		if !ok {
			continue
		}
		p, err := newProvider(ctx, id, key, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", id, err)
		}
		providers[id] = p
		available = append(available, id)
	}
	return providers, available, nil
}

func newProvider(ctx context.Context, id parley.ProviderID, key string, cfg config.Config) (parley.Provider, error) {
	switch id {
	case parley.ProviderGemini:
		return gemini.New(ctx, key)
	case parley.ProviderOpenRouter:
		var opts []openrouter.Option
		if cfg.Backends.OpenRouterURL != "" {
			opts = append(opts, openrouter.WithBaseURL(cfg.Backends.OpenRouterURL))
		}
		return openrouter.New(key, opts...), nil
	case parley.ProviderHFace:
		var opts []hface.Option
		if cfg.Backends.HFaceURL != "" {
			opts = append(opts, hface.WithBaseURL(cfg.Backends.HFaceURL))
		}
		return hface.New(key, opts...), nil
	case parley.ProviderPuter:
		var opts []puter.Option
		if cfg.Backends.PuterURL != "" {
			opts = append(opts, puter.WithBaseURL(cfg.Backends.PuterURL))
		}
		return puter.New(opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", id)
	}
}
