package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/tcpanel/internal/adapter/driven/demo"
	pgadapter "github.com/ericfisherdev/tcpanel/internal/adapter/driven/postgres"
	sqliteadapter "github.com/ericfisherdev/tcpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/tcpanel/internal/adapter/driven/teamcity"
	"github.com/ericfisherdev/tcpanel/internal/adapter/driven/versionfile"
	"github.com/ericfisherdev/tcpanel/internal/application"
	"github.com/ericfisherdev/tcpanel/internal/config"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// app holds the wired application services shared by every subcommand.
type app struct {
	client     driven.TeamCityClient
	selections driven.SelectionStore
	catalog    *application.CatalogService
	versions   *application.VersionManager
	dashboard  *application.DashboardService
	closers    []func() error
}

// Close releases the stores in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newApp wires the upstream client, the stores, and the application services.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	// Upstream client: fixture data in demo mode, otherwise TeamCity.
	if cfg.Demo {
		a.client = demo.NewClient()
		slog.Info("demo mode enabled, serving fixture data")
	} else {
		if !cfg.HasTeamCityCredentials() {
			slog.Warn("no teamcity url or token configured, upstream views will report unavailable")
		}
		a.client = teamcity.NewClient(cfg.TeamCityURL, cfg.TeamCityToken, cfg.UpstreamTimeout)
	}

	// Selection and preference stores.
	var prefs driven.PreferenceStore
	if cfg.UsePostgres() {
		db, err := pgadapter.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := pgadapter.RunMigrations(db); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.selections = pgadapter.NewSelectionRepo(db)
		prefs = pgadapter.NewPreferenceRepo(db)
		slog.Info("postgres store opened")
	} else {
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.selections = sqliteadapter.NewSelectionRepo(db)
		prefs = sqliteadapter.NewPreferenceRepo(db)
		slog.Info("sqlite store opened", "path", cfg.DBPath)
	}

	// Services.
	depth := application.DepthNone()
	if cfg.TreeDepth > 0 {
		depth = application.DepthForce(cfg.TreeDepth)
	}

	a.catalog = application.NewCatalogService(a.client, cfg.CacheTTL, cfg.EnrichWorkers, cfg.UpstreamTimeout)
	a.versions = application.NewVersionManager(versionfile.NewStore(cfg.VersionsPath), cfg.VersionMarker)
	a.dashboard = application.NewDashboardService(
		a.catalog,
		a.selections,
		prefs,
		a.versions,
		application.NewTreeBuilder(depth),
	)

	return a, nil
}
