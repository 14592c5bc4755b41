package commands

import (
	"time"

	"git.home.luguber.info/inful/hotbundle/internal/devserver"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Mode string `help:"Override the configured mode (development or production)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, b.Mode)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	logger := g.logger()
	srv, err := devserver.New(ctx, cfg, devserver.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer srv.Close()

	start := time.Now()
	if err := srv.BuildOnce(ctx); err != nil {
		return err
	}
	logger.Info("Build completed", "out_dir", cfg.OutRoot(), "bootstrap", cfg.BootstrapPath(), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
