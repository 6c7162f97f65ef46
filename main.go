package main

import (
	"os"

	"github.com/gserver/gctl/cmd"
)

func main() {
	os.Exit(cmd.RunCmdline(os.Args))
}
