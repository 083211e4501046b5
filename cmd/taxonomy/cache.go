// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func cacheCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the metadata cache",
	}
	cmd.AddCommand(cacheLogCmd(g), cacheFlushCmd(g), cacheRefreshCmd(g))
	return cmd
}

func cacheLogCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print recent cache invalidations",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, _ []string) error {
			entries, err := a.storage.RecentInvalidations(ctx, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.InvalidatedAt.Format(time.RFC3339), e.EntityType, e.EntityID, e.Action); err != nil {
					return err
				}
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func cacheFlushCmd(g *globals) *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Drop cached metadata dictionaries",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, _ []string) error {
			n, err := a.cache.Flush(ctx, pattern)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "flushed %d keys\n", n)
			return err
		}),
	}
	cmd.Flags().StringVar(&pattern, "pattern", "meta:*", "key pattern")
	return cmd
}

func cacheRefreshCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <category>",
		Short: "Rebuild the cached dictionary of a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.meta.Refresh(ctx, c); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "refreshed %s\n", c.Fullpath)
			return err
		}),
	}
}
