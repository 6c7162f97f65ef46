package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"
)

// Help holds the documentation of a single command.
type Help struct {
	Usage       string
	ArgsUsage   string
	Description string
	Flags       []cli.Flag
}

func die(msg string) {
	// be really pedantic when help is missing.
	panic(msg)
}

// HelpTexts maps a command path (e.g. "config.get") to its documentation.
var HelpTexts = map[string]Help{
	"version": {
		Usage: "Print the gserver version running on the board",
		Description: `Ask gserver for its version and print the reply.

EXAMPLES:

   $ gctl version
   gserver 2.1.0
`,
	},
	"build": {
		Usage:       "Print the build tag and date of the board",
		Description: "Ask gserver for the build tag and date of the installed system.",
	},
	"upgrade": {
		Usage: "Run the upgrade script on the board",
		Description: `Tell gserver to install the image that was sent before with »download«.

   The board answers once the upgrade script finished, which may take a while.
   Use »--timeout« to wait longer than the configured »reply.timeout«.
`,
	},
	"reboot": {
		Usage:       "Reboot the board",
		Description: "Tell gserver to reboot the system. The reply may be empty.",
	},
	"netconfig": {
		Usage:     "Set the network configuration of the board",
		ArgsUsage: "<config>",
		Description: `Change how the board configures its network.

   <config> is either 'dhcp' or a list of colon delimited fields in this order:

       ip:netmask:gateway:nameserver1:nameserver2

   Only the first field, 'dhcp' or the ip address, is required.
   Every given field has to be an IPv4 address.

EXAMPLES:

   $ gctl netconfig dhcp
   $ gctl netconfig 192.168.10.210:255.255.255.0:192.168.10.1:8.8.8.8
   $ gctl netconfig 192.168.10.210::192.168.10.1
`,
	},
	"download": {
		Usage:     "Send a root filesystem image to the board",
		ArgsUsage: "<file.xz>",
		Description: `Send a xz compressed root filesystem tarball to the board,
   where it is stored for a later »upgrade«.

   The whole file is read into memory before sending. Empty files and files
   bigger than »upload.max_size« are refused before connecting. The upload
   speed can be limited with »upload.rate_limit«.

EXAMPLES:

   $ gctl download gamry-prod-rootfs.tar.xz
   $ gctl -s 10.0.0.5 download rootfs.tar.xz
`,
	},
	"config": {
		Usage: "Access, list and modify configuration values",
		Description: `Inspect and edit the config file of gctl.

   The file defaults to ~/.config/gctl/config.yml and can be changed
   with »--config« or $GCTL_CONFIG. Command line flags always take
   precedence over the values in the file.
`,
	},
	"config.list": {
		Usage:       "Show all config values",
		Description: "Print every config key with its current value and documentation.",
	},
	"config.get": {
		Usage:       "Get a specific config value",
		ArgsUsage:   "<key>",
		Description: "Print the current value of <key> to stdout.",
	},
	"config.set": {
		Usage:     "Set a specific config value",
		ArgsUsage: "<key> <value>",
		Description: `Validate <value> and store it under <key> in the config file.

EXAMPLES:

   $ gctl config set server.host 10.0.0.5
   $ gctl config set upload.rate_limit "2 MiB"
   $ gctl config set reply.timeout 5m
`,
	},
	"config.doc": {
		Usage:       "Show the documentation of a config key",
		ArgsUsage:   "<key>",
		Description: "Print the documentation and default of <key>.",
	},
}

func injectHelp(cmd *cli.Command, path string) {
	help, ok := HelpTexts[path]
	if !ok {
		die(fmt.Sprintf("bug: no such help entry: %v", path))
	}

	cmd.Usage = help.Usage
	cmd.ArgsUsage = help.ArgsUsage
	cmd.Description = help.Description
	cmd.Flags = help.Flags
}

func translateHelp(cmds []cli.Command, prefix []string) {
	for idx := range cmds {
		path := append(append([]string{}, prefix...), cmds[idx].Name)
		injectHelp(&cmds[idx], strings.Join(path, "."))
		translateHelp(cmds[idx].Subcommands, path)
	}
}

// TranslateHelp fills in the usage and description for each command.
// This is separated from the command definition to make things more readable,
// and separate logic from the (lengthy) documentation.
func TranslateHelp(cmds []cli.Command) []cli.Command {
	translateHelp(cmds, nil)
	return cmds
}
