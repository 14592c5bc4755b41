package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/hotbundle/cmd/hotbundle/commands"
	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	parser := kong.Parse(cli,
		kong.Name("hotbundle"),
		kong.Description("Incremental bundler with hot module replacement for local development"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := parser.Run(global, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
