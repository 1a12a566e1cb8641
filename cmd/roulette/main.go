package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the WebSocket game server"`
	Play     PlayCmd          `cmd:"" help:"Play a duel against the dealer in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Pit an autopilot against the dealer and report win rates"`
	Bot      BotCmd           `cmd:"" help:"Connect an autopilot to a server and play the dealer"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("roulette"),
		kong.Description("Shell-roulette duels against a scripted dealer or your friends"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
