package defaults

import (
	"github.com/sahib/config"
)

// DefaultsV0 is the default config validation for gctl
var DefaultsV0 = config.DefaultMapping{
	"server": config.DefaultMapping{
		"host": config.DefaultEntry{
			Default:      "192.168.10.210",
			NeedsRestart: false,
			Docs:         "Address of the board running gserver.",
			Validator:    hostValidator,
		},
		"port": config.DefaultEntry{
			Default:      1234,
			NeedsRestart: false,
			Docs:         "Port gserver listens on.",
			Validator:    intRangeValidator(1, 65535),
		},
		"dial_timeout": config.DefaultEntry{
			Default:      "5s",
			NeedsRestart: false,
			Docs:         "How long to wait for the TCP connection to be established.",
			Validator:    durationValidator(false),
		},
	},
	"reply": config.DefaultMapping{
		"max_size": config.DefaultEntry{
			Default:      508,
			NeedsRestart: false,
			Docs: `Maximum number of reply bytes that are accepted from the server.

  Replies reaching this limit are cut and reported as overflow.
`,
			Validator: intRangeValidator(1, 1024*1024),
		},
		"timeout": config.DefaultEntry{
			Default:      "2m",
			NeedsRestart: false,
			Docs: `How long to wait for the server to finish its reply.

  The upgrade command runs a script on the board before answering,
  so this should not be too short. Use "0s" to wait forever.
`,
			Validator: durationValidator(true),
		},
	},
	"upload": config.DefaultMapping{
		"max_size": config.DefaultEntry{
			Default:      "64 MiB",
			NeedsRestart: false,
			Docs:         "Images bigger than this are refused before connecting (e.g. \"64 MiB\").",
			Validator:    sizeValidator,
		},
		"rate_limit": config.DefaultEntry{
			Default:      "0",
			NeedsRestart: false,
			Docs:         "Maximum upload speed per second (e.g. \"2 MiB\"); 0 means unlimited.",
			Validator:    sizeOrZeroValidator,
		},
		"progress": config.DefaultEntry{
			Default:      true,
			NeedsRestart: false,
			Docs:         "Show a progress bar during uploads when running in a terminal.",
		},
	},
	"log": config.DefaultMapping{
		"level": config.DefaultEntry{
			Default:      "warning",
			NeedsRestart: false,
			Docs:         "Minimum severity of log messages.",
			Validator:    enumValidator("debug", "info", "warning", "error"),
		},
		"colors": config.DefaultEntry{
			Default:      "auto",
			NeedsRestart: false,
			Docs:         "Wether log output should be colored.",
			Validator:    enumValidator("auto", "always", "never"),
		},
	},
}
