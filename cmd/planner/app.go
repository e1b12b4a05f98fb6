package main

import (
	"context"
	"fmt"
	"io"

	"github.com/k0kubun/pp/v3"

	"github.com/kimhsiao/creatorplanner/internal/config"
	"github.com/kimhsiao/creatorplanner/internal/db"
	"github.com/kimhsiao/creatorplanner/internal/events"
	"github.com/kimhsiao/creatorplanner/internal/logging"
	"github.com/kimhsiao/creatorplanner/internal/models"
	"github.com/kimhsiao/creatorplanner/internal/settings"
)

// app holds the wired repositories for one invocation.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	hub     *events.Hub
	printer *pp.PrettyPrinter
	out     io.Writer

	settings *db.SettingsRepository
	ideas    *db.IdeaRepository
	videos   *db.VideoRepository
	tags     *db.TagRepository

	unsubscribe func()
	done        chan struct{}
}

func newApp(ctx context.Context, cfg *config.Config, open opener, out io.Writer, color bool) (*app, error) {
	store, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logging.Get(),
		hub:     events.NewHub(),
		printer: pp.New(),
		out:     out,
		done:    make(chan struct{}),
	}
	a.printer.SetOutput(out)
	a.printer.SetColoringEnabled(color)
	a.watch()

	common := []db.Option{db.WithLogger(a.logger), db.WithHub(a.hub)}

	settingsOpts := common
	if path := cfg.Settings.CatalogFile; path != "" {
		settingsOpts = append(settingsOpts, db.WithSeed(func() ([]models.Setting, error) {
			return settings.LoadCatalogFile(path)
		}))
	}
	a.settings = db.NewSettingsRepository(store.DB, settingsOpts...)
	a.videos = db.NewVideoRepository(store.DB, append(common, db.WithCatalog(a.settings.Catalog))...)
	a.ideas = db.NewIdeaRepository(store.DB, append(common,
		db.WithCatalog(a.settings.Catalog),
		db.WithVideoSink(a.videos))...)
	a.tags = db.NewTagRepository(store.DB, common...)

	if _, err := a.settings.Initialize(ctx); err != nil {
		a.close()
		return nil, err
	}
	if _, err := a.ideas.Load(ctx); err != nil {
		a.close()
		return nil, err
	}
	if _, err := a.videos.Load(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// watch logs every change event at debug level until close.
func (a *app) watch() {
	ch, cancel := a.hub.Subscribe()
	a.unsubscribe = cancel
	go func() {
		defer close(a.done)
		for e := range ch {
			a.logger.Debug("change", map[string]interface{}{
				"topic":  string(e.Topic),
				"action": string(e.Action),
				"id":     e.ID,
			})
		}
	}()
}

func (a *app) close() {
	a.unsubscribe()
	<-a.done
}

func (a *app) print(v ...interface{}) {
	a.printer.Println(v...)
}
