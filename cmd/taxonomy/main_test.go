// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxonomy/internal/taxonomy"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SITE_ID", "us")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "taxonomy.db"))
	t.Setenv("CACHE_BACKEND", "memory")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "taxonomy %v", args)
	return out
}

func TestCLIWorkflow(t *testing.T) {
	setupEnv(t)

	assert.Contains(t, mustRun(t, "migrate"), "schema version 1 (sqlite3)")
	assert.Contains(t, mustRun(t, "seed"), " us\n")

	assert.Contains(t, mustRun(t, "category", "create", "--name", "Fashion", "--parent", "us", "--type", "global"), "us/fashion")
	assert.Contains(t, mustRun(t, "category", "create", "--name", "Shoes", "--parent", "us/fashion"), "us/fashion/shoes")
	assert.Contains(t, mustRun(t, "category", "create", "--name", "Boots", "--parent", "us/fashion/shoes"), "us/fashion/shoes/boots")
	assert.Contains(t, mustRun(t, "category", "create", "--name", "Beauty", "--parent", "us", "--order", "1"), "us/beauty")

	assert.Contains(t, mustRun(t, "category", "move", "us/fashion/shoes", "us/beauty"), "-> us/beauty/shoes")
	assert.Contains(t, mustRun(t, "category", "rename", "us/beauty/shoes", "footwear"), "-> us/beauty/footwear")
	assert.Equal(t, "site us ok\n", mustRun(t, "verify"))

	tree := mustRun(t, "tree")
	assert.Contains(t, tree, "\n  beauty [")
	assert.Contains(t, tree, "\n    footwear [")
	assert.Contains(t, tree, "\n      boots [")

	mustRun(t, "meta", "set", "us/beauty", "ads", "on", "--pass-down")
	assert.Equal(t, "on\n", mustRun(t, "meta", "get", "us/beauty/footwear/boots", "ads"))
	assert.Equal(t, "ads=on\n", mustRun(t, "meta", "get", "us/beauty"))
	assert.Contains(t, mustRun(t, "meta", "seo", "us/beauty/footwear", "--page", "2"), `"noindex": true`)
	assert.Contains(t, mustRun(t, "meta", "seo", "us/beauty/footwear"), `"title": "Shoes, Beauty"`)

	assert.Equal(t, "0\n", mustRun(t, "count", "us/beauty", "-r"))
	assert.Contains(t, mustRun(t, "category", "delete", "us/beauty"), "deleted 3 categories")
	assert.Contains(t, mustRun(t, "cache", "log"), "meta_forget")
	assert.Equal(t, "site us ok\n", mustRun(t, "verify"))
}

func TestCLIErrors(t *testing.T) {
	setupEnv(t)
	mustRun(t, "category", "create", "--name", "Fashion", "--parent", "us")
	mustRun(t, "category", "create", "--name", "Shoes", "--parent", "us/fashion")

	_, err := run(t, "category", "move", "us/fashion", "us/fashion/shoes")
	assert.ErrorContains(t, err, "cycle")

	_, err = run(t, "category", "show", "us/nope")
	assert.ErrorIs(t, err, taxonomy.ErrCategoryNotFound)

	_, err = run(t, "category", "create", "--root", "--slug", "again")
	assert.ErrorIs(t, err, taxonomy.ErrDuplicateRoot)

	_, err = run(t, "entry", "view", "abc")
	assert.ErrorContains(t, err, "invalid entry id")

	_, err = run(t, "meta", "get", "us/fashion", "missing")
	assert.ErrorContains(t, err, "no value")
}

var errWrite = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestCLIWriteErrors(t *testing.T) {
	setupEnv(t)
	mustRun(t, "meta", "set", "us", "ads", "on")

	for _, args := range [][]string{
		{"cache", "log"},
		{"meta", "get", "us", "ads"},
		{"meta", "get", "us"},
		{"tree"},
	} {
		cmd := newRootCmd()
		cmd.SetOut(failingWriter{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
		assert.ErrorIs(t, cmd.Execute(), errWrite, "taxonomy %v", args)
	}
}
