package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pricedrop/tracker-cli/internal/extract"
	"github.com/pricedrop/tracker-cli/internal/fetch"
	"github.com/pricedrop/tracker-cli/internal/history"
	"github.com/pricedrop/tracker-cli/internal/items"
	"github.com/pricedrop/tracker-cli/internal/journal"
	"github.com/pricedrop/tracker-cli/internal/model"
	"github.com/pricedrop/tracker-cli/internal/notify"
	"github.com/pricedrop/tracker-cli/internal/track"
)

// trackerEnv holds the constructed engine and the stores the check, watch
// and serve commands share.
type trackerEnv struct {
	Store   *history.Store
	Journal journal.Journal
	Tracker *track.Tracker
}

// Close releases resources held by the tracker environment.
func (te *trackerEnv) Close() {
	if te.Journal != nil {
		_ = te.Journal.Close()
	}
}

// initTracker validates the config for the given mode and builds the
// tracking engine with all its dependencies. Callers should defer
// env.Close().
func initTracker(ctx context.Context, mode string) (*trackerEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	jrnl, err := journal.Open(ctx, cfg.Journal.Driver, cfg.Journal.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open journal")
	}

	retry := track.FetchRetryPolicy(cfg.Fetch.MaxRetries)
	if cfg.Fetch.InitialBackoff > 0 {
		retry.InitialBackoff = cfg.Fetch.InitialBackoff
	}
	if cfg.Fetch.MaxBackoff > 0 {
		retry.MaxBackoff = cfg.Fetch.MaxBackoff
	}

	tracker := track.New(buildFetchClient(), buildRegistry(), buildNotifier(), jrnl, track.Options{
		Retry:    retry,
		DelayMin: cfg.Cycle.DelayMin,
		DelayMax: cfg.Cycle.DelayMax,
	})

	return &trackerEnv{
		Store:   history.NewStore(cfg.HistoryFile, cfg.History.MaxPoints),
		Journal: jrnl,
		Tracker: tracker,
	}, nil
}

// buildFetchClient creates the paced HTTP client from config.
func buildFetchClient() *fetch.Client {
	return fetch.NewClient(fetch.Options{
		Timeout:    cfg.Fetch.Timeout,
		PerHostRPS: cfg.Fetch.PerHostRPS,
		Burst:      cfg.Fetch.Burst,
	})
}

// buildRegistry creates the extractor registry, applying selector rule
// overrides when a rules file is configured. A broken rules file falls
// back to the built-in chains rather than blocking the cycle.
func buildRegistry() *extract.Registry {
	var rules *extract.Rules
	if cfg.Extract.RulesFile != "" {
		r, err := extract.LoadRules(cfg.Extract.RulesFile)
		if err != nil {
			zap.L().Warn("selector rules not loaded, using built-in chains",
				zap.String("path", cfg.Extract.RulesFile),
				zap.Error(err),
			)
		} else {
			rules = r
			zap.L().Info("selector rules loaded", zap.String("path", cfg.Extract.RulesFile))
		}
	}
	return extract.NewRegistry(rules)
}

// buildNotifier assembles the configured notification sinks into a fanout.
func buildNotifier() notify.Notifier {
	var sinks []notify.Notifier
	if cfg.Notify.Desktop {
		sinks = append(sinks, notify.NewDesktop())
	}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.Notify.WebhookURL))
	}
	if len(sinks) == 0 {
		zap.L().Warn("no notification sinks configured, alerts will only be logged")
	}
	return notify.NewFanout(sinks...)
}

// runTrackingCycle loads the watchlist and history, runs one cycle, and
// persists the updated history. When name is non-empty only that item is
// checked. The history snapshot is saved even for an interrupted cycle so
// observed prices survive a shutdown.
func runTrackingCycle(ctx context.Context, env *trackerEnv, name string) ([]track.Outcome, error) {
	list, err := items.Load(cfg.ItemsFile)
	if err != nil {
		return nil, err
	}
	if name != "" {
		list = filterByName(list, name)
		if len(list) == 0 {
			return nil, eris.Errorf("no tracked item named %q", name)
		}
	}

	h, err := env.Store.Load()
	if err != nil {
		return nil, err
	}

	outcomes, runErr := env.Tracker.RunCycle(ctx, list, h)

	if len(outcomes) > 0 {
		if saveErr := env.Store.Save(h); saveErr != nil {
			return outcomes, saveErr
		}
	}
	return outcomes, runErr
}

// filterByName returns the items whose name matches exactly.
func filterByName(list []model.Item, name string) []model.Item {
	var out []model.Item
	for _, it := range list {
		if it.Name == name {
			out = append(out, it)
		}
	}
	return out
}
