package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	require.Equal(t, 0, Clamp(-1, 0, 1), "-1 is not in [0, 1]")
	require.Equal(t, 1, Clamp(+1, 0, 1))
	require.Equal(t, 0, Clamp(0, 0, 1))
	require.Equal(t, 1, Clamp(+2, 0, 1), "2 was not cut")
}

func TestMinMax(t *testing.T) {
	require.Equal(t, 3, Min(3, 4))
	require.Equal(t, 4, Max(3, 4))
	require.Equal(t, int64(-2), Min64(-2, 7))
	require.Equal(t, int64(7), Min64(7, 7))
}
