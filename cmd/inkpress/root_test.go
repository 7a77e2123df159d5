package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfigLayers(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "inkpress.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("name: File Blog\npublish_interval: 5m\ncors_origins: [https://a.example]\n"), 0o644))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("INKPRESS_ADMIN_KEY=from-dotenv\n"), 0o644))
	t.Setenv("INKPRESS_CACHE_TTL", "2m")
	t.Cleanup(func() { os.Unsetenv("INKPRESS_ADMIN_KEY") })

	c := &cli{v: viper.New(), cfgFile: cfgPath, envFile: envPath}
	require.NoError(t, c.initializeConfig(nil))

	assert.Equal(t, "File Blog", c.cfg.Name)
	assert.Equal(t, 5*time.Minute, c.cfg.PublishInterval)
	assert.Equal(t, []string{"https://a.example"}, c.cfg.CORSOrigins)
	assert.Equal(t, 2*time.Minute, c.cfg.CacheTTL)
	assert.Equal(t, "from-dotenv", c.cfg.AdminKey)
	assert.Equal(t, "content", c.cfg.ContentDir)
	assert.Equal(t, 200, c.cfg.WordsPerMinute)
}

func TestInitializeConfigMissingExplicitFile(t *testing.T) {
	c := &cli{v: viper.New(), cfgFile: filepath.Join(t.TempDir(), "nope.yaml")}
	assert.Error(t, c.initializeConfig(nil))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func writePosts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	posts := filepath.Join(dir, "posts")
	require.NoError(t, os.MkdirAll(posts, 0o755))
	files := map[string]string{
		"live.md":   "---\ntitle: Live Post\npublishedAt: 2020-01-01\nlastModified: 2020-01-01\ntags: [go]\n---\nHello gophers.\n",
		"draft.md":  "---\ntitle: Draft Post\npublished: false\n---\nNot yet gophers.\n",
		"future.md": "---\ntitle: Future Post\npublishedAt: 2999-01-01\n---\nLater.\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(posts, name), []byte(body), 0o644))
	}
	return dir
}

func TestListCommand(t *testing.T) {
	dir := writePosts(t)

	out, err := run(t, "list", "--content-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "live-post")
	assert.Contains(t, out, "draft-post")
	assert.Contains(t, out, "scheduled")

	out, err = run(t, "list", "--content-dir", dir, "--status", "draft")
	require.NoError(t, err)
	assert.Contains(t, out, "draft-post")
	assert.NotContains(t, out, "live-post")

	_, err = run(t, "list", "--content-dir", dir, "--status", "archived")
	assert.Error(t, err)

	_, err = run(t, "list", "--content-dir", dir, "--type", "video")
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	dir := writePosts(t)

	out, err := run(t, "search", "--content-dir", dir, "gophers")
	require.NoError(t, err)
	assert.Contains(t, out, "live-post")
	assert.NotContains(t, out, "draft-post")

	out, err = run(t, "search", "--content-dir", dir, "--all", "gophers")
	require.NoError(t, err)
	assert.Contains(t, out, "draft-post")
}

func TestPublishCommandWithoutDueItems(t *testing.T) {
	dir := writePosts(t)
	out, err := run(t, "publish", "--content-dir", dir, "--record=false")
	require.NoError(t, err)
	assert.Equal(t, "nothing to publish", strings.TrimSpace(out))
}

func TestCalendarCommand(t *testing.T) {
	dir := writePosts(t)
	out, err := run(t, "calendar", "--content-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Upcoming (1)")
	assert.Contains(t, out, "future-post")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "inkpress dev\n", out)
}
