// Package protocol implements the request side of the gserver wire protocol.
// Every request starts with a newline terminated keyword, optionally followed
// by one argument line. The download request is special: its keyword is
// followed by the decimal size of a raw binary payload that comes right after.
//
// Replies are not framed at all; reading them is the job of the client package.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind identifies one of the commands the control service understands.
type Kind int

const (
	// Version asks for the gserver version.
	Version = Kind(iota)
	// Build asks for the build tag and date of the board's system.
	Build
	// Upgrade runs the upgrade script on the board.
	Upgrade
	// Reboot restarts the board.
	Reboot
	// NetConfig changes the network configuration.
	NetConfig
	// Download uploads a root filesystem image for later installation.
	Download
)

var (
	// ErrBulkCommand is returned by Encode for commands that carry
	// a payload and therefore need to be sent via the bulk path.
	ErrBulkCommand = errors.New("command carries a payload; use the bulk transfer")

	// ErrUnknownKind is returned for Kind values outside the enumeration.
	ErrUnknownKind = errors.New("unknown command kind")
)

var kindToKeyword = map[Kind]string{
	Version:   "version",
	Build:     "build",
	Upgrade:   "upgrade",
	Reboot:    "reboot",
	NetConfig: "netconfig",
	Download:  "download",
}

// Keyword returns the word that starts the request on the wire.
func (k Kind) Keyword() string {
	return kindToKeyword[k]
}

func (k Kind) String() string {
	if kw, ok := kindToKeyword[k]; ok {
		return kw
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// HasArg tells if the command needs an argument.
func (k Kind) HasArg() bool {
	return k == NetConfig || k == Download
}

// ParseKind converts a keyword back to its Kind.
func ParseKind(keyword string) (Kind, error) {
	for kind, kw := range kindToKeyword {
		if kw == keyword {
			return kind, nil
		}
	}

	return 0, ErrUnknownKind
}

// Command is a single request. It is immutable after construction.
// For NetConfig, Arg is the configuration string; for Download it is
// the path of the local image file. Other commands ignore Arg.
type Command struct {
	kind Kind
	arg  string
}

// NewCommand creates a new command of `kind`.
// The argument is expected to be validated already.
func NewCommand(kind Kind, arg string) Command {
	if !kind.HasArg() {
		arg = ""
	}

	return Command{kind: kind, arg: arg}
}

// Kind returns the kind of the command.
func (c Command) Kind() Kind {
	return c.kind
}

// Arg returns the argument of the command, if any.
func (c Command) Arg() string {
	return c.arg
}

// IsBulk is true for commands that are followed by a payload.
func (c Command) IsBulk() bool {
	return c.kind == Download
}

func (c Command) String() string {
	if c.kind.HasArg() {
		return fmt.Sprintf("%s(%s)", c.kind, c.arg)
	}

	return c.kind.String()
}

// Encode renders the request frame for `c`.
// No quoting or escaping is done; the argument is copied verbatim.
func (c Command) Encode() ([]byte, error) {
	kw, ok := kindToKeyword[c.kind]
	if !ok {
		return nil, ErrUnknownKind
	}

	if c.IsBulk() {
		return nil, ErrBulkCommand
	}

	frame := make([]byte, 0, len(kw)+len(c.arg)+2)
	frame = append(frame, kw...)
	frame = append(frame, '\n')

	if c.kind == NetConfig {
		frame = append(frame, c.arg...)
		frame = append(frame, '\n')
	}

	return frame, nil
}

// Preamble returns the header of a download request announcing
// a payload of `size` bytes.
func Preamble(size int64) []byte {
	kw := kindToKeyword[Download]

	preamble := make([]byte, 0, len(kw)+22)
	preamble = append(preamble, kw...)
	preamble = append(preamble, '\n')
	preamble = strconv.AppendInt(preamble, size, 10)
	return append(preamble, '\n')
}
