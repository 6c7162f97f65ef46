package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	colorlog "github.com/gserver/gctl/util/log"
	"github.com/sahib/config"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func logVerbose(ctx *cli.Context, format string, args ...interface{}) {
	if !ctx.GlobalBool("verbose") {
		return
	}

	if !strings.HasSuffix(format, "\n") {
		format = format + "\n"
	}

	fmt.Fprintf(ctx.App.ErrWriter, "-- "+format, args...)
}

// logOutput returns where the log should go to.
// `target` may be "stderr", "stdout" or a file path.
func logOutput(ctx *cli.Context, target string) (io.Writer, error) {
	switch target {
	case "", "stderr":
		return ctx.App.ErrWriter, nil
	case "stdout":
		return ctx.App.Writer, nil
	default:
		fd, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // #nosec
		if err != nil {
			return nil, err
		}

		return fd, nil
	}
}

// setupLogging configures logrus from the config and the global flags.
// Without a readable config the defaults are used;
// the actual error is reported by the command that needs the config.
func setupLogging(ctx *cli.Context, cfg *config.Config) error {
	w, err := logOutput(ctx, ctx.GlobalString("log-path"))
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("could not open log: %v", err)}
	}

	level, colorMode := log.WarnLevel, "auto"
	if cfg != nil {
		if lvl, err := log.ParseLevel(cfg.String("log.level")); err == nil {
			level = lvl
		}

		colorMode = cfg.String("log.colors")
	}

	if ctx.GlobalBool("verbose") {
		level = log.DebugLevel
	}

	colorlog.Setup(w, level, colorMode)
	return nil
}
