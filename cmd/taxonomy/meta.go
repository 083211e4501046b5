// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func metaCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Read and write category metadata",
	}
	cmd.AddCommand(metaGetCmd(g), metaSetCmd(g), metaSEOCmd(g), metaTrendingCmd(g))
	return cmd
}

func metaGetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "get <category> [key]",
		Short: "Print a category's own values, or one value with inheritance",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				v, ok, err := a.meta.Get(ctx, c, args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s has no value for %q", c.Fullpath, args[1])
				}
				_, err = fmt.Fprintln(w, v)
				return err
			}

			all, err := a.meta.GetAll(ctx, c)
			if err != nil {
				return err
			}
			for _, k := range slices.Sorted(maps.Keys(all)) {
				if _, err := fmt.Fprintf(w, "%s=%s\n", k, all[k]); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func metaSetCmd(g *globals) *cobra.Command {
	var passDown bool
	cmd := &cobra.Command{
		Use:   "set <category> <key> <value>",
		Short: "Store a metadata value and refresh the cached dictionary",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.meta.Set(ctx, c, args[1], args[2], passDown); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "%s %s=%s\n", c.Fullpath, args[1], args[2])
			return err
		}),
	}
	cmd.Flags().BoolVar(&passDown, "pass-down", false, "let descendants inherit the value")
	return cmd
}

func metaSEOCmd(g *globals) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "seo <category>",
		Short: "Print the listing page metadata of a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			md, err := a.meta.SEO(ctx, c, page)
			if err != nil {
				return err
			}
			return printJSON(w, md)
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "listing page number")
	return cmd
}

func metaTrendingCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "trending <category> [tag-slug...]",
		Short: "Print or replace the trending tags of a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			if len(args) > 1 {
				if err := a.meta.SetTrending(ctx, c, args[1:]); err != nil {
					return err
				}
			}
			tags, err := a.meta.Trending(ctx, c)
			if err != nil {
				return err
			}
			for _, t := range tags {
				if _, err := fmt.Fprintf(w, "%s\t%s\n", t.Slug, t.Tag); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}
