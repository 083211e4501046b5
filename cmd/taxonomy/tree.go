// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taxonomy/internal/models"
	"taxonomy/internal/taxonomy"
)

func treeCmd(g *globals) *cobra.Command {
	var (
		includeTags bool
		ofType      string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "tree [category]",
		Short: "Print the active category tree of the site or below a category",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			var trees []*taxonomy.TreeNode
			switch {
			case ofType != "":
				var err error
				trees, err = a.categories.SubtreesOfType(ctx, a.siteID, models.CategoryType(strings.ToUpper(ofType)), includeTags)
				if err != nil {
					return err
				}
			default:
				start, err := a.categories.Root(ctx, a.siteID)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					if start, err = a.category(ctx, args[0]); err != nil {
						return err
					}
				}
				tree, err := a.categories.Subtree(ctx, start.ID, includeTags)
				if err != nil {
					return err
				}
				trees = append(trees, tree)
			}

			if asJSON {
				return printJSON(w, trees)
			}
			var werr error
			for _, tree := range trees {
				tree.Walk(func(n *taxonomy.TreeNode, depth int) {
					if werr != nil {
						return
					}
					var b strings.Builder
					fmt.Fprintf(&b, "%s%s [%d %s]", strings.Repeat("  ", depth), n.Category.Slug, n.Category.ID, n.Category.Type)
					for _, t := range n.Tags {
						fmt.Fprintf(&b, " #%s", t.Slug)
					}
					b.WriteByte('\n')
					_, werr = io.WriteString(w, b.String())
				})
			}
			return werr
		}),
	}
	cmd.Flags().BoolVar(&includeTags, "tags", false, "include the tags owned by each category")
	cmd.Flags().StringVar(&ofType, "type", "", "print one tree per category of this type (GLOBAL, LOCAL, POLY)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func verifyCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every stored fullpath matches the parent graph",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, _ []string) error {
			if _, err := a.categories.Root(ctx, a.siteID); err != nil {
				return err
			}
			if err := a.categories.Verify(ctx, a.siteID); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "site %s ok\n", a.siteID)
			return err
		}),
	}
}

func countCmd(g *globals) *cobra.Command {
	var recursive, primaryOnly bool
	cmd := &cobra.Command{
		Use:   "count <category>",
		Short: "Count the entries of a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			n, err := a.categories.CountEntries(ctx, c, recursive, primaryOnly)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, n)
			return err
		}),
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include every descendant")
	cmd.Flags().BoolVar(&primaryOnly, "primary", false, "count only entries where the category is primary")
	return cmd
}
