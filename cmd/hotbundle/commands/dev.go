package commands

import (
	"git.home.luguber.info/inful/hotbundle/internal/devserver"
)

// DevCmd implements the 'dev' command.
type DevCmd struct {
	Mode string `help:"Override the configured mode (development or production)"`
	Port int    `short:"p" help:"Override the configured server port"`
}

func (d *DevCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, d.Mode)
	if err != nil {
		return err
	}
	if d.Port > 0 {
		cfg.Server.Port = d.Port
	}

	ctx, stop := signalContext()
	defer stop()

	logger := g.logger()
	srv, err := devserver.New(ctx, cfg, devserver.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("Starting dev server", "addr", cfg.Addr(), "mode", cfg.Mode, "root", cfg.Root)
	return srv.Run(ctx)
}
