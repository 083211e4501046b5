// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the admin CLI of the taxonomy engine. It loads
// configuration, connects to the database and the metadata cache, and runs
// one command against the category tree of a site.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globals are the persistent flags shared by every command.
type globals struct {
	envFiles []string
	siteID   string
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "taxonomy",
		Short: "Manage content categories, metadata and entry views",
		Example: `taxonomy migrate
taxonomy tree --site us --tags
taxonomy category create --name "Shoes" --parent us/fashion
taxonomy category move us/fashion/shoes us/beauty
taxonomy meta set us/fashion meta_title "Fashion news" --pass-down
taxonomy entry view 42`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	root.PersistentFlags().StringVar(&g.siteID, "site", "", "site id (defaults to SITE_ID)")

	root.AddCommand(
		migrateCmd(g),
		seedCmd(g),
		treeCmd(g),
		verifyCmd(g),
		countCmd(g),
		categoryCmd(g),
		metaCmd(g),
		entryCmd(g),
		cacheCmd(g),
	)
	root.CompletionOptions.HiddenDefaultCmd = true
	return root
}
