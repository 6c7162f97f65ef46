// +build mage

package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Aliases = map[string]interface{}{
	"b": Build.Binary,
	"a": Build.Arm,
	"t": Build.Test,
	"l": Dev.Lint,
}

/////////////////////
// UTILITY HELPERS //
/////////////////////

func speak(format string, args ...interface{}) {
	if mg.Verbose() {
		fmt.Printf("-- "+format+"\n", args...)
	}
}

func readVersion() (*semver.Version, error) {
	data, err := ioutil.ReadFile(".version")
	if err != nil {
		return nil, fmt.Errorf("failed to read .version file: %v", err)
	}

	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte{'v'}) {
		data = data[1:]
	}

	vers, err := semver.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .version: %v", err)
	}

	return &vers, nil
}

func gitRev() string {
	rev, err := sh.Output("git", "rev-parse", "HEAD")
	if err != nil {
		speak("could not get git version: %v", err)
		return ""
	}

	return rev
}

func binaryOutput(suffix string) string {
	path := os.Getenv("GCTL_BINARY_PATH")
	if path != "" {
		speak("using binary path from GCTL_BINARY_PATH: %s", path)
		return path + suffix
	}

	speak("using ${GOBIN}/gctl%s as binary output location", suffix)
	return filepath.Join(os.Getenv("GOBIN"), "gctl"+suffix)
}

func ldflags() ([]string, error) {
	version, err := readVersion()
	if err != nil {
		return nil, err
	}

	releaseType := ""
	if len(version.Pre) > 0 {
		releaseType = version.Pre[0].String()
	}

	imp := "github.com/gserver/gctl/version"
	flags := []string{
		"-X", fmt.Sprintf("%s.Major=%d", imp, version.Major),
		"-X", fmt.Sprintf("%s.Minor=%d", imp, version.Minor),
		"-X", fmt.Sprintf("%s.Patch=%d", imp, version.Patch),
		"-X", fmt.Sprintf("%s.ReleaseType=%s", imp, releaseType),
		"-X", fmt.Sprintf("%s.BuildTime=%s", imp, time.Now().Format(time.RFC3339)),
		"-X", fmt.Sprintf("%s.GitRev=%s", imp, gitRev()),
	}

	if os.Getenv("GCTL_SMALL_BINARY") != "" {
		flags = append(flags, "-s", "-w")
	}

	return flags, nil
}

func build(env map[string]string, suffix string) error {
	flags, err := ldflags()
	if err != nil {
		return err
	}

	return sh.RunWith(
		env,
		"go", "build",
		"-ldflags", strings.Join(flags, " "),
		"-o", binaryOutput(suffix),
	)
}

////////////////////
// ACTUAL TARGETS //
////////////////////

var Default = Build.Binary

type Build mg.Namespace

// Binary builds gctl for the host.
func (Build) Binary() error {
	return build(nil, "")
}

// Arm builds gctl for the board itself (e.g. to run it on another board).
func (Build) Arm() error {
	return build(map[string]string{
		"GOOS":   "linux",
		"GOARCH": "arm",
		"GOARM":  "7",
	}, "-arm")
}

func (Build) Test() error {
	return sh.RunV("go", "test", "./...")
}

// Development tools that are not relevant to the user's building process:
type Dev mg.Namespace

func (Dev) Lint() error {
	findCmd := "find -iname '*.go' -type f ! -path './_examples/*' ! -iname 'build.go'"

	linters := []string{
		fmt.Sprintf("%s -exec gofmt -s -w {} \\;", findCmd),
		fmt.Sprintf("%s -exec golint {} \\;", findCmd),
		fmt.Sprintf("%s -exec misspell {} \\;", findCmd),
		fmt.Sprintf("%s -exec gocyclo -over 20 {} \\; | sort -n", findCmd),
	}

	for _, linter := range linters {
		if err := sh.RunV("sh", "-c", linter); err != nil {
			return err
		}
	}

	return nil
}
