// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"taxonomy/internal/models"
)

func entryCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Inspect entries",
	}
	cmd.AddCommand(entryViewCmd(g), entryNewestCmd(g), entryOpenerCmd(g))
	return cmd
}

func entryID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q", arg)
	}
	return id, nil
}

func entryViewCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "view <entry-id>",
		Short: "Print the assembled view of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			id, err := entryID(args[0])
			if err != nil {
				return err
			}
			v, err := a.aggregator.ViewByID(ctx, id)
			if err != nil {
				return err
			}
			if v == nil {
				return fmt.Errorf("entry %d not found", id)
			}
			return printJSON(w, v)
		}),
	}
}

func entryNewestCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "newest <category>",
		Short: "Print the most recently published entry of a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			e, err := a.aggregator.NewestEntry(ctx, c)
			if err != nil {
				return err
			}
			if e == nil {
				_, err = fmt.Fprintf(w, "%s has no published entries\n", c.Fullpath)
				return err
			}
			_, err = fmt.Fprintf(w, "%d\t%s\n", e.ID, e.Title)
			return err
		}),
	}
}

func entryOpenerCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "opener <entry-id> <asset-type>",
		Short: "Print the opener asset of an entry",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			id, err := entryID(args[0])
			if err != nil {
				return err
			}
			e, err := a.storage.EntryByID(ctx, id)
			if err != nil {
				return err
			}
			if e == nil {
				return fmt.Errorf("entry %d not found", id)
			}
			asset, err := a.assets.OpenerByType(e, models.AssetType(args[1]))
			if err != nil {
				return err
			}
			return printJSON(w, asset)
		}),
	}
}
