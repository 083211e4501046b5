// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"taxonomy/internal/aggregate"
	"taxonomy/internal/assets"
	"taxonomy/internal/cache"
	"taxonomy/internal/config"
	"taxonomy/internal/database"
	"taxonomy/internal/meta"
	"taxonomy/internal/models"
	"taxonomy/internal/store"
	"taxonomy/internal/taxonomy"
)

// cacheNamespace prefixes every Valkey key written by the CLI.
const cacheNamespace = "taxonomy:"

// flushStore is a cache store that can drop keys by pattern.
type flushStore interface {
	cache.Store
	Flush(ctx context.Context, pattern string) (int, error)
}

// app holds the wired collaborators of one CLI invocation.
type app struct {
	cfg    *config.Config
	siteID string

	db      *sql.DB
	storage *store.SQL
	valkey  *redis.Client
	cache   flushStore

	categories *taxonomy.CategoryStore
	meta       *meta.Cache
	assets     *assets.Resolver
	aggregator *aggregate.Aggregator
}

// newApp loads configuration, connects to the database (running pending
// migrations) and the cache, and wires the engine. The caller must Close it.
func newApp(g *globals, stderr io.Writer) (*app, error) {
	if err := config.LoadDotEnv(g.envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.Debug("configuration loaded", "env", cfg.Env, "driver", cfg.DBDriver, "cache", cfg.CacheBackend)

	a := &app{cfg: cfg, siteID: cfg.SiteID}
	if g.siteID != "" {
		a.siteID = g.siteID
	}

	a.db, err = database.Connect(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(a.db, cfg.DBDriver); err != nil {
		a.Close()
		return nil, err
	}
	if cfg.IsDev() {
		if err := database.Seed(a.db, a.siteID); err != nil {
			a.Close()
			return nil, err
		}
	}

	switch cfg.CacheBackend {
	case config.CacheValkey:
		a.valkey, err = cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.cache = cache.NewValkey(a.valkey, cacheNamespace)
	default:
		a.cache = cache.NewMemory()
	}

	a.storage = store.NewSQL(a.db)
	a.categories = taxonomy.NewCategoryStore(a.storage)
	a.meta = meta.New(a.storage, a.cache, a.categories, meta.Options{
		InheritFromRoot: cfg.MetaInheritFromRoot,
		NoIndexSlugs:    []string{"find", "stores"},
	})
	a.assets = assets.NewResolver()
	a.aggregator = aggregate.New(a.categories, a.meta, a.assets, aggregate.Options{
		MainAssetPolicy: assets.PolicyFallbackAltLast,
	})
	return a, nil
}

// Close releases the database and cache connections.
func (a *app) Close() {
	if a.valkey != nil {
		if err := a.valkey.Close(); err != nil {
			slog.Warn("close valkey", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Warn("close database", "error", err)
		}
	}
}

// category resolves ref, either a numeric id or an exact fullpath.
func (a *app) category(ctx context.Context, ref string) (*models.Category, error) {
	var (
		c   *models.Category
		err error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		c, err = a.categories.ByID(ctx, id)
	} else {
		c, err = a.categories.FindByFullpath(ctx, ref, false, false)
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", ref, taxonomy.ErrCategoryNotFound)
	}
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApp adapts a command body that needs a wired app.
func withApp(g *globals, run func(ctx context.Context, a *app, w io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(g, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, cmd.OutOrStdout(), args)
	}
}
