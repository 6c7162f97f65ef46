package protocol

import (
	"fmt"
	"net"
	"strings"
)

const (
	// MinNetConfigLen is the shortest accepted netconfig string ("dhcp").
	MinNetConfigLen = 4
	// MaxNetConfigLen is the longest netconfig string the service accepts.
	MaxNetConfigLen = 124
	// MinImagePathLen is the shortest accepted image path ("a.xz").
	MinImagePathLen = 4
	// MaxImagePathLen is the longest image path we pass around.
	MaxImagePathLen = 508
	// ImageSuffix is the required ending of an image file.
	ImageSuffix = ".xz"
	// DHCP is the netconfig value that switches the board to dhcp.
	DHCP = "dhcp"
)

var netConfigFields = []string{
	"ip",
	"netmask",
	"gateway",
	"nameserver1",
	"nameserver2",
}

// ArgError describes an invalid command argument.
type ArgError struct {
	Kind   Kind
	Arg    string
	Reason string
}

func (e ArgError) Error() string {
	return fmt.Sprintf("invalid %s argument %q: %s", e.Kind, e.Arg, e.Reason)
}

// ValidateNetConfig checks that `config` is either "dhcp" or a colon
// separated list of ip:netmask:gateway:nameserver1:nameserver2 where only
// the first field is mandatory.
func ValidateNetConfig(config string) error {
	fail := func(reason string, args ...interface{}) error {
		return ArgError{Kind: NetConfig, Arg: config, Reason: fmt.Sprintf(reason, args...)}
	}

	if len(config) < MinNetConfigLen || len(config) > MaxNetConfigLen {
		return fail("length must be between %d and %d", MinNetConfigLen, MaxNetConfigLen)
	}

	if config == DHCP {
		return nil
	}

	fields := strings.Split(config, ":")
	if len(fields) > len(netConfigFields) {
		return fail("too many fields (%d, maximum is %d)", len(fields), len(netConfigFields))
	}

	if fields[0] == "" {
		return fail("the ip address is mandatory")
	}

	for idx, field := range fields {
		if field == "" {
			continue
		}

		ip := net.ParseIP(field)
		if ip == nil || ip.To4() == nil {
			return fail("%s is not an ipv4 address: %s", netConfigFields[idx], field)
		}
	}

	return nil
}

// ValidateImagePath checks that `path` looks like a xz compressed image.
// It does not check if the file exists.
func ValidateImagePath(path string) error {
	if len(path) < MinImagePathLen || len(path) > MaxImagePathLen {
		return ArgError{
			Kind:   Download,
			Arg:    path,
			Reason: fmt.Sprintf("length must be between %d and %d", MinImagePathLen, MaxImagePathLen),
		}
	}

	if !strings.HasSuffix(path, ImageSuffix) {
		return ArgError{Kind: Download, Arg: path, Reason: "filename does not end in " + ImageSuffix}
	}

	return nil
}

// Validate checks the argument of `c` according to its kind.
func Validate(c Command) error {
	switch c.Kind() {
	case NetConfig:
		return ValidateNetConfig(c.Arg())
	case Download:
		return ValidateImagePath(c.Arg())
	case Version, Build, Upgrade, Reboot:
		return nil
	default:
		return ErrUnknownKind
	}
}
