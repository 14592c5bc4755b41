package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hotbundle/internal/config"
	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/manifest"
)

func parse(t *testing.T, args ...string) (*kong.Context, *CLI, *Global) {
	t.Helper()
	cli := &CLI{}
	global := &Global{}
	parser, err := kong.New(cli,
		kong.Name("hotbundle"),
		kong.Vars{"version": "test"},
		kong.Bind(global),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli, global
}

func TestParse_Defaults(t *testing.T) {
	ctx, cli, global := parse(t, "dev")
	assert.Equal(t, "dev", ctx.Command())
	assert.Equal(t, config.DefaultFile, cli.Config)
	assert.False(t, cli.Verbose)
	assert.NotNil(t, global.Logger, "AfterApply should install the logger")
}

func TestParse_Flags(t *testing.T) {
	_, cli, _ := parse(t, "-c", "other.yaml", "-v", "dev", "--mode", "production", "-p", "4000")
	assert.Equal(t, "other.yaml", cli.Config)
	assert.True(t, cli.Verbose)
	assert.Equal(t, "production", cli.Dev.Mode)
	assert.Equal(t, 4000, cli.Dev.Port)
}

func TestInit_WritesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)
	require.NoError(t, RunInit(path, false))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "app/entry.client.tsx", cfg.Entries.App)
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("mode: development\n"), 0o600))

	err := RunInit(path, false)
	require.Error(t, err)
	assert.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))

	require.NoError(t, RunInit(path, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# hotbundle configuration"))
}

func TestInit_OutputDirectory(t *testing.T) {
	dir := t.TempDir()
	ctx, cli, global := parse(t, "init", "-o", dir)
	require.NoError(t, ctx.Run(global, cli))
	assert.FileExists(t, filepath.Join(dir, config.DefaultFile))
}

func TestLoadConfig_ModeOverride(t *testing.T) {
	t.Setenv(config.ModeEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("mode: development\n"), 0o600))

	cfg, err := loadConfig(path, "prod")
	require.NoError(t, err)
	assert.Equal(t, config.ModeProduction, cfg.Mode)

	_, err = loadConfig(path, "staging")
	require.Error(t, err)
}

func TestBuild_WritesBundleAndBootstrap(t *testing.T) {
	t.Setenv(config.ModeEnv, "")
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "main.ts"),
		[]byte("export const greeting: string = \"hi\";\n"), 0o644))
	path := filepath.Join(dir, config.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("entries:\n  app: app/main.ts\n  vendor: []\n"), 0o600))

	ctx, cli, global := parse(t, "-c", path, "build")
	require.NoError(t, ctx.Run(global, cli))

	html, err := os.ReadFile(filepath.Join(dir, "public", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "/build/"+manifest.AppEntry+"-")
	assert.Contains(t, string(html), "/build/"+manifest.HMREntry+"-")
}
