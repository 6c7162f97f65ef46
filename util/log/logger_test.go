package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	// This test is only for messing with the log output.
	// It has no real (unit) testing value.
	t.Skip("This test is only to debug log formatting")

	Setup(os.Stderr, logrus.DebugLevel, "always")

	logrus.WithFields(logrus.Fields{
		"host": "192.168.10.210",
		"port": 1234,
	}).Debug("Dialing gserver")

	logrus.WithFields(logrus.Fields{
		"size": "10 MB",
	}).Info("Uploading image")

	logrus.WithField("limit", 508).Warn("Overflow of response buffer")
	logrus.Error("Stuff!")
}

func formatEntry(t *testing.T, useColors bool, level logrus.Level, msg string, fields logrus.Fields) string {
	entry := logrus.NewEntry(logrus.New()).WithFields(fields)
	entry.Time = time.Date(2019, 3, 4, 5, 6, 7, 0, time.UTC)
	entry.Level = level
	entry.Message = msg

	data, err := (&FancyLogFormatter{UseColors: useColors}).Format(entry)
	require.Nil(t, err)
	return string(data)
}

func TestFormatPlain(t *testing.T) {
	out := formatEntry(t, false, logrus.WarnLevel, "Overflow of response buffer", logrus.Fields{
		"limit": 508,
		"got":   "600",
	})

	require.True(t, strings.HasPrefix(out, "04.03.2019/05:06:07 ⚠"), out)
	require.True(t, strings.HasSuffix(out, "Overflow of response buffer [got=600 limit=508]\n"), out)
	require.NotContains(t, out, "\x1b[")
}

func TestFormatColored(t *testing.T) {
	out := formatEntry(t, true, logrus.ErrorLevel, "write failed", logrus.Fields{
		"err": errors.New("broken pipe"),
	})

	require.Contains(t, out, "\x1b[")
	require.Contains(t, out, "write failed")
	require.Contains(t, out, "broken pipe")
}

func TestFormatNoFields(t *testing.T) {
	out := formatEntry(t, false, logrus.InfoLevel, "hello", nil)
	require.True(t, strings.HasSuffix(out, " hello\n"), out)
	require.NotContains(t, out, "[")
}

func TestShouldColor(t *testing.T) {
	buf := &bytes.Buffer{}
	require.True(t, ShouldColor("always", buf))
	require.False(t, ShouldColor("never", buf))
	require.False(t, ShouldColor("auto", buf))
	require.False(t, IsTerminal(buf))
}

func TestSetup(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(buf, logrus.InfoLevel, "never")
	defer Setup(os.Stderr, logrus.WarnLevel, "auto")

	logrus.Debug("invisible")
	logrus.Info("visible")

	out := buf.String()
	require.NotContains(t, out, "invisible")
	require.Contains(t, out, "visible")
}
