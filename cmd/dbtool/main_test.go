package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateThenSeed(t *testing.T) {
	seedFile, err := filepath.Abs(filepath.Join("..", "..", "data", "seeds", "restrooms.json"))
	require.NoError(t, err)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PITSTOP_STORE_DRIVER", "sqlite")
	t.Setenv("PITSTOP_STORE_SQLITE_PATH", filepath.Join(dir, "data", "pitstop.db"))
	t.Setenv("PITSTOP_STORE_AUTO_MIGRATE", "false")
	t.Setenv("PITSTOP_LOG_LEVEL", "error")

	run := func(args ...string) string {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	assert.Contains(t, run("migrate"), "schema ready (sqlite)")
	assert.Contains(t, run("seed", "--file", seedFile), "seeded 7 restrooms")
}

func TestSeed_MissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PITSTOP_STORE_SQLITE_PATH", filepath.Join(dir, "pitstop.db"))
	t.Setenv("PITSTOP_LOG_LEVEL", "error")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"seed", "--file", filepath.Join(dir, "nope.json")})
	assert.Error(t, cmd.Execute())
}
