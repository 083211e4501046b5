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
)

func categoryCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Create, inspect and restructure categories",
	}
	cmd.AddCommand(
		categoryShowCmd(g),
		categoryCreateCmd(g),
		categoryRenameCmd(g),
		categoryMoveCmd(g),
		categoryDeleteCmd(g),
	)
	return cmd
}

func categoryShowCmd(g *globals) *cobra.Command {
	var defaultPath string
	cmd := &cobra.Command{
		Use:   "show <category>",
		Short: "Print a category with its ancestors",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.categories.FindByPath(ctx, args[0], false, defaultPath)
			if err != nil {
				return err
			}
			if c == nil {
				if c, err = a.category(ctx, args[0]); err != nil {
					return err
				}
			}
			ancestors, err := a.categories.Ancestors(ctx, c, false, true)
			if err != nil {
				return err
			}
			children, err := a.categories.Children(ctx, c, false)
			if err != nil {
				return err
			}
			return printJSON(w, map[string]any{
				"category":  c,
				"ancestors": ancestors,
				"children":  children,
			})
		}),
	}
	cmd.Flags().StringVar(&defaultPath, "default", "", "path shown when the category does not exist")
	return cmd
}

func categoryCreateCmd(g *globals) *cobra.Command {
	var (
		c        models.Category
		parent   string
		typ      string
		inactive bool
		hidden   bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category under a parent",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, _ []string) error {
			c.SiteID = a.siteID
			c.Type = models.CategoryType(strings.ToUpper(typ))
			c.IsActive = !inactive
			c.IsVisible = !hidden
			if !c.IsRoot {
				p, err := a.category(ctx, parent)
				if err != nil {
					return err
				}
				c.ParentID = &p.ID
			}
			if err := a.categories.Create(ctx, &c); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "created %d %s\n", c.ID, c.Fullpath)
			return err
		}),
	}
	cmd.Flags().StringVar(&c.Name, "name", "", "display name")
	cmd.Flags().StringVar(&c.Slug, "slug", "", "slug (generated from the name when empty)")
	cmd.Flags().StringVar(&parent, "parent", "", "parent id or fullpath")
	cmd.Flags().StringVar(&typ, "type", string(models.CategoryTypeLocal), "GLOBAL, LOCAL or POLY")
	cmd.Flags().IntVar(&c.DisplayOrder, "order", 0, "display order among siblings")
	cmd.Flags().BoolVar(&c.IsRoot, "root", false, "create the root category of the site")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the category inactive")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "create the category hidden")
	cmd.MarkFlagsMutuallyExclusive("root", "parent")
	return cmd
}

func categoryRenameCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category> <slug>",
		Short: "Change a category slug and update the paths below it",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			renamed, err := a.categories.Rename(ctx, c.ID, args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "renamed %d %s -> %s\n", c.ID, c.Fullpath, renamed.Fullpath)
			return err
		}),
	}
}

func categoryMoveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "move <category> <new-parent>",
		Short: "Move a category with its subtree under another parent",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			parent, err := a.category(ctx, args[1])
			if err != nil {
				return err
			}
			moved, err := a.categories.Reparent(ctx, c.ID, parent.ID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "moved %d %s -> %s\n", c.ID, c.Fullpath, moved.Fullpath)
			return err
		}),
	}
}

func categoryDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category, its metadata and its whole subtree",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(ctx context.Context, a *app, w io.Writer, args []string) error {
			c, err := a.category(ctx, args[0])
			if err != nil {
				return err
			}
			deleted, err := a.categories.CascadeDelete(ctx, c.ID)
			if err != nil {
				return err
			}
			if err := a.meta.Forget(ctx, deleted...); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "deleted %d categories under %s\n", len(deleted), c.Fullpath)
			return err
		}),
	}
}
