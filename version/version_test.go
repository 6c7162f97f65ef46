package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func withVersion(major, minor, patch, release, rev string, fn func()) {
	oldMajor, oldMinor, oldPatch := Major, Minor, Patch
	oldRelease, oldRev := ReleaseType, GitRev

	Major, Minor, Patch = major, minor, patch
	ReleaseType, GitRev = release, rev
	MajorInt = parseVersionNum(Major, "major")
	MinorInt = parseVersionNum(Minor, "minor")
	PatchInt = parseVersionNum(Patch, "patch")

	defer func() {
		Major, Minor, Patch = oldMajor, oldMinor, oldPatch
		ReleaseType, GitRev = oldRelease, oldRev
		MajorInt = parseVersionNum(Major, "major")
		MinorInt = parseVersionNum(Minor, "minor")
		PatchInt = parseVersionNum(Patch, "patch")
	}()

	fn()
}

func TestStringUnset(t *testing.T) {
	withVersion("", "", "", "", "", func() {
		require.Equal(t, "v0.0.0", String())
	})
}

func TestStringFull(t *testing.T) {
	withVersion("1", "2", "3", "beta", "0123456789abcdef", func() {
		require.Equal(t, "v1.2.3-beta+0123456", String())

		major, minor, patch := Numbers()
		require.Equal(t, 1, major)
		require.Equal(t, 2, minor)
		require.Equal(t, 3, patch)
	})
}

func TestParseVersionNumPanics(t *testing.T) {
	require.Panics(t, func() {
		parseVersionNum("x", "major")
	})
}
