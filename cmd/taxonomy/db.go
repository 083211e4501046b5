// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"taxonomy/internal/database"
)

func migrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, _ []string) error {
			v, err := database.Version(a.db, a.cfg.DBDriver)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "schema version %d (%s)\n", v, a.cfg.DBDriver)
			return err
		}),
	}
}

func seedCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the root category of the site if it is missing",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, _ []string) error {
			if err := database.Seed(a.db, a.siteID); err != nil {
				return err
			}
			root, err := a.categories.Root(ctx, a.siteID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "root %d %s\n", root.ID, root.Fullpath)
			return err
		}),
	}
}
