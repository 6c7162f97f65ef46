package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateNetConfig(t *testing.T) {
	valid := []string{
		"dhcp",
		"192.168.10.210",
		"192.168.10.210:255.255.255.0",
		"192.168.10.210:255.255.255.0:192.168.10.1:8.8.8.8",
		"192.168.10.210:255.255.255.0:192.168.10.1:8.8.8.8:8.8.4.4",
		"192.168.10.210:::8.8.8.8",
	}

	for _, cfg := range valid {
		require.Nil(t, ValidateNetConfig(cfg), cfg)
	}

	invalid := []string{
		"",
		"dhc",
		"static",
		":255.255.255.0",
		"1.2.3.4:5.6.7.8:1.2.3.4:1.1.1.1:8.8.8.8:9.9.9.9",
		"1.2.3.4:255.255.255.x",
		"::1:",
		strings.Repeat("1", MaxNetConfigLen+1),
	}

	for _, cfg := range invalid {
		err := ValidateNetConfig(cfg)
		require.NotNil(t, err, cfg)

		argErr, ok := err.(ArgError)
		require.True(t, ok)
		require.Equal(t, NetConfig, argErr.Kind)
	}
}

func TestValidateImagePath(t *testing.T) {
	require.Nil(t, ValidateImagePath("a.xz"))
	require.Nil(t, ValidateImagePath("gamry-prod-rootfs.tar.xz"))

	require.NotNil(t, ValidateImagePath(".xz"))
	require.NotNil(t, ValidateImagePath("rootfs.tar.gz"))
	require.NotNil(t, ValidateImagePath(strings.Repeat("a", MaxImagePathLen)+".xz"))
}

func TestValidate(t *testing.T) {
	require.Nil(t, Validate(NewCommand(Version, "")))
	require.Nil(t, Validate(NewCommand(NetConfig, "dhcp")))
	require.NotNil(t, Validate(NewCommand(NetConfig, "bogus")))
	require.NotNil(t, Validate(NewCommand(Download, "image.tar")))
	require.Equal(t, ErrUnknownKind, Validate(NewCommand(Kind(-1), "")))
}
