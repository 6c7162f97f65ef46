package cmd

import (
	"context"
	"fmt"
	"sort"

	humanize "github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gserver/gctl/client"
	"github.com/gserver/gctl/defaults"
	"github.com/gserver/gctl/protocol"
	"github.com/sahib/config"
	"github.com/urfave/cli"
)

// printReply writes the reply of gserver as-is to stdout.
func printReply(ctx *cli.Context, reply *client.Reply) {
	if reply.Empty() {
		return
	}

	fmt.Fprint(ctx.App.Writer, reply.String())
}

// handleCommand returns a handler that sends a single `kind` command.
// The first argument is passed along for commands that take one.
func handleCommand(kind protocol.Kind) cmdHandlerWithClient {
	return func(rctx context.Context, ctx *cli.Context, ctl *client.Client) error {
		cmd := protocol.NewCommand(kind, ctx.Args().First())
		logVerbose(ctx, "sending %s to %s", cmd, ctl.RemoteAddr())

		reply, err := ctl.Exec(rctx, cmd)
		printReply(ctx, reply)
		return translateError(err, kind.Keyword())
	}
}

func handleDownload(ctx *cli.Context) error {
	cfg, _, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	// Read the image before connecting, so bad files never reach the board.
	path := ctx.Args().First()
	payload, err := client.LoadPayload(path, defaults.Bytes(cfg, "upload.max_size"))
	if err != nil {
		if _, ok := err.(client.PayloadSizeError); ok {
			return ExitCode{BadArgs, err.Error()}
		}

		return ExitCode{BadArgs, fmt.Sprintf("Failed to slurp upgrade file: %v", err)}
	}

	logVerbose(ctx, "read %s from %s", humanize.Bytes(uint64(len(payload))), path)

	return connect(ctx, cfg, func(rctx context.Context, ctl *client.Client) error {
		reply, err := ctl.Upload(rctx, payload)
		printReply(ctx, reply)
		return translateError(err, "download")
	})
}

func handleConfigList(ctx *cli.Context) error {
	cfg, _, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	keys := cfg.Keys()
	sort.Strings(keys)

	for _, key := range keys {
		val := fmt.Sprintf("%v", cfg.Get(key))
		def := fmt.Sprintf("%v", cfg.GetDefault(key).Default)

		defaultMark := ""
		if val != def {
			defaultMark = color.YellowString(" (default: %s)", def)
		}

		fmt.Fprintf(
			ctx.App.Writer,
			"%s: %s%s\n",
			color.GreenString(key),
			val,
			defaultMark,
		)
	}

	return nil
}

// loadConfigForKey loads the config and makes sure `key` exists in it.
func loadConfigForKey(ctx *cli.Context, key string) (*config.Config, string, error) {
	cfg, path, err := loadConfig(ctx)
	if err != nil {
		return nil, "", err
	}

	if !cfg.IsValidKey(key) {
		return nil, "", ExitCode{BadArgs, fmt.Sprintf("invalid config key: %s", key)}
	}

	return cfg, path, nil
}

func handleConfigGet(ctx *cli.Context) error {
	key := ctx.Args().Get(0)
	cfg, _, err := loadConfigForKey(ctx, key)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "%v\n", cfg.Get(key))
	return nil
}

func handleConfigDoc(ctx *cli.Context) error {
	key := ctx.Args().Get(0)
	cfg, _, err := loadConfigForKey(ctx, key)
	if err != nil {
		return err
	}

	entry := cfg.GetDefault(key)
	fmt.Fprintf(ctx.App.Writer, "%s: %s\n", color.GreenString("Documentation"), entry.Docs)
	fmt.Fprintf(ctx.App.Writer, "%s: %v\n", color.GreenString("Default"), entry.Default)
	return nil
}

func handleConfigSet(ctx *cli.Context) error {
	key, rawVal := ctx.Args().Get(0), ctx.Args().Get(1)
	cfg, path, err := loadConfigForKey(ctx, key)
	if err != nil {
		return err
	}

	val, err := cfg.Cast(key, rawVal)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("config set: %v", err)}
	}

	if err := cfg.Set(key, val); err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("config set: %v", err)}
	}

	if err := defaults.SaveConfig(path, cfg); err != nil {
		return ExitCode{BadConfig, fmt.Sprintf("config set: %v", err)}
	}

	logVerbose(ctx, "config: set `%s` to `%v` in %s", key, val, path)
	return nil
}
