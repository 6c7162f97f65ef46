package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gserver/gctl/client"
	"github.com/gserver/gctl/client/clienttest"
	"github.com/gserver/gctl/util/testutil"
	"github.com/stretchr/testify/require"
)

type cmdResult struct {
	code   int
	stdout string
	stderr string
}

func withConfigDir(t *testing.T, fn func(cfgPath string)) {
	dir, err := ioutil.TempDir("", "gctl-cmd-test")
	require.Nil(t, err)

	defer os.RemoveAll(dir)
	fn(filepath.Join(dir, "config.yml"))
}

func runGctl(cfgPath string, args ...string) cmdResult {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	fullArgs := append([]string{"gctl", "--config", cfgPath, "--no-progress"}, args...)
	code := run(fullArgs, stdout, stderr)
	return cmdResult{
		code:   code,
		stdout: stdout.String(),
		stderr: stderr.String(),
	}
}

func withGserver(t *testing.T, srv *clienttest.Server, fn func(cfgPath string, addr []string)) {
	withConfigDir(t, func(cfgPath string) {
		err := clienttest.WithServer(srv, func(host string, port int) error {
			fn(cfgPath, []string{"-s", host, "-p", strconv.Itoa(port)})
			return nil
		})

		require.Nil(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	for _, name := range []string{"version", "v"} {
		t.Run(name, func(t *testing.T) {
			srv := &clienttest.Server{Reply: clienttest.ReplyWith("gserver 2.1.0\n")}
			withGserver(t, srv, func(cfgPath string, addr []string) {
				res := runGctl(cfgPath, append(addr, name)...)
				require.Equal(t, Success, res.code, res.stderr)
				require.Equal(t, "gserver 2.1.0\n", res.stdout)
			})

			require.Len(t, srv.Requests(), 1)
			require.Equal(t, []byte("version\n"), srv.Requests()[0].Raw)
		})
	}
}

func TestSimpleCommands(t *testing.T) {
	tcs := map[string]string{
		"build":   "build\n",
		"b":       "build\n",
		"upgrade": "upgrade\n",
		"u":       "upgrade\n",
		"reboot":  "reboot\n",
		"r":       "reboot\n",
	}

	for name, frame := range tcs {
		t.Run(name, func(t *testing.T) {
			srv := &clienttest.Server{Reply: clienttest.ReplyWith("ok\n")}
			withGserver(t, srv, func(cfgPath string, addr []string) {
				res := runGctl(cfgPath, append(addr, name)...)
				require.Equal(t, Success, res.code, res.stderr)
				require.Equal(t, "ok\n", res.stdout)
			})

			require.Len(t, srv.Requests(), 1)
			require.Equal(t, []byte(frame), srv.Requests()[0].Raw)
		})
	}
}

func TestExtraArgsAreRejected(t *testing.T) {
	srv := &clienttest.Server{Reply: clienttest.ReplyWith("ok\n")}
	withGserver(t, srv, func(cfgPath string, addr []string) {
		res := runGctl(cfgPath, append(addr, "version", "build")...)
		require.Equal(t, BadArgs, res.code)
	})

	require.Empty(t, srv.Requests())
}

func TestNetConfig(t *testing.T) {
	srv := &clienttest.Server{Reply: clienttest.ReplyWith("network configured\n")}
	withGserver(t, srv, func(cfgPath string, addr []string) {
		res := runGctl(cfgPath, append(addr, "netconfig", "dhcp")...)
		require.Equal(t, Success, res.code, res.stderr)
		require.Equal(t, "network configured\n", res.stdout)

		res = runGctl(cfgPath, append(addr, "n", "192.168.10.210::192.168.10.1")...)
		require.Equal(t, Success, res.code, res.stderr)
	})

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, []byte("netconfig\ndhcp\n"), reqs[0].Raw)
	require.Equal(t, "192.168.10.210::192.168.10.1", reqs[1].Arg)
}

func TestNetConfigInvalidNeverConnects(t *testing.T) {
	srv := &clienttest.Server{Reply: clienttest.ReplyWith("ok\n")}
	withGserver(t, srv, func(cfgPath string, addr []string) {
		for _, arg := range []string{"dhc", "dhcpd", "1.2.3.4:nope", ":1.2.3.4", "1:2:3:4:5:6"} {
			res := runGctl(cfgPath, append(addr, "netconfig", arg)...)
			require.Equal(t, BadArgs, res.code, arg)
		}

		res := runGctl(cfgPath, append(addr, "netconfig")...)
		require.Equal(t, BadArgs, res.code)
	})

	require.Empty(t, srv.Requests())
}

func TestDownload(t *testing.T) {
	path := testutil.CreateImage(t, 10)
	defer testutil.Remover(t, filepath.Dir(path))

	srv := &clienttest.Server{Reply: clienttest.ReplyWith("image stored\n")}
	withGserver(t, srv, func(cfgPath string, addr []string) {
		res := runGctl(cfgPath, append(addr, "download", path)...)
		require.Equal(t, Success, res.code, res.stderr)
		require.Equal(t, "image stored\n", res.stdout)
	})

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "download", reqs[0].Keyword)
	require.Equal(t, "10", reqs[0].Arg)
	require.Equal(t, testutil.CreateDummyBuf(10), reqs[0].Payload)
}

func TestDownloadRefusedBeforeConnecting(t *testing.T) {
	empty := testutil.CreateImage(t, 0)
	defer testutil.Remover(t, filepath.Dir(empty))

	srv := &clienttest.Server{Reply: clienttest.ReplyWith("ok\n")}
	withGserver(t, srv, func(cfgPath string, addr []string) {
		res := runGctl(cfgPath, append(addr, "download", empty)...)
		require.Equal(t, BadArgs, res.code)
		require.Contains(t, res.stderr, "suspect")

		res = runGctl(cfgPath, append(addr, "d", "rootfs.tar.gz")...)
		require.Equal(t, BadArgs, res.code)

		res = runGctl(cfgPath, append(addr, "d", "/nonexistent/rootfs.tar.xz")...)
		require.Equal(t, BadArgs, res.code)
		require.Contains(t, res.stderr, "Failed to slurp upgrade file")
	})

	require.Empty(t, srv.Requests())
}

func TestOverflowIsReported(t *testing.T) {
	srv := &clienttest.Server{
		Reply: func(req *clienttest.Request) []byte {
			return testutil.CreateDummyBuf(600)
		},
	}

	withGserver(t, srv, func(cfgPath string, addr []string) {
		res := runGctl(cfgPath, append(addr, "build")...)
		require.Equal(t, ProtocolViolation, res.code)
		require.Len(t, res.stdout, client.DefaultMaxReplySize)
		require.Contains(t, res.stderr, "Overflow of response buffer")
	})
}

func TestEmptyReplyIsSuccess(t *testing.T) {
	srv := &clienttest.Server{}
	withGserver(t, srv, func(cfgPath string, addr []string) {
		res := runGctl(cfgPath, append(addr, "reboot")...)
		require.Equal(t, Success, res.code, res.stderr)
		require.Equal(t, "", res.stdout)
	})
}

func TestReplyTimeoutFlag(t *testing.T) {
	srv := &clienttest.Server{KeepOpen: true}
	withGserver(t, srv, func(cfgPath string, addr []string) {
		args := append([]string{"--timeout", "100ms"}, addr...)
		res := runGctl(cfgPath, append(args, "upgrade")...)
		require.Equal(t, ServerNotResponding, res.code)
		require.Contains(t, res.stderr, "timeout")
	})
}

func TestServerNotRunning(t *testing.T) {
	srv := &clienttest.Server{}
	require.Nil(t, srv.Start())
	host, port := srv.Addr()
	require.Nil(t, srv.Close())

	withConfigDir(t, func(cfgPath string) {
		res := runGctl(cfgPath, "-s", host, "-p", strconv.Itoa(port), "version")
		require.Equal(t, ServerNotResponding, res.code)
		require.Contains(t, res.stderr, "Unable to connect")
	})
}

func TestBadPort(t *testing.T) {
	withConfigDir(t, func(cfgPath string) {
		res := runGctl(cfgPath, "-s", "127.0.0.1", "-p", "70000", "version")
		require.Equal(t, BadArgs, res.code)
		require.Contains(t, res.stderr, "Invalid server port")
	})
}

func TestUnknownCommandSuggestion(t *testing.T) {
	withConfigDir(t, func(cfgPath string) {
		res := runGctl(cfgPath, "flash")
		require.Equal(t, BadArgs, res.code)
		require.Contains(t, res.stdout, "is not a valid command")
		require.Contains(t, res.stdout, "download")

		res = runGctl(cfgPath, "rebot")
		require.Equal(t, BadArgs, res.code)
		require.Contains(t, res.stdout, "reboot")
	})
}

func TestClientVersionFlag(t *testing.T) {
	withConfigDir(t, func(cfgPath string) {
		res := runGctl(cfgPath, "--version")
		require.Equal(t, Success, res.code)
		require.Contains(t, res.stdout, "gctl version")
		require.Contains(t, res.stdout, "buildtime")
	})
}

func TestConfigSetGet(t *testing.T) {
	withConfigDir(t, func(cfgPath string) {
		res := runGctl(cfgPath, "config", "get", "server.port")
		require.Equal(t, Success, res.code, res.stderr)
		require.Equal(t, "1234\n", res.stdout)

		res = runGctl(cfgPath, "config", "set", "server.port", "4321")
		require.Equal(t, Success, res.code, res.stderr)

		res = runGctl(cfgPath, "config", "get", "server.port")
		require.Equal(t, Success, res.code, res.stderr)
		require.Equal(t, "4321\n", res.stdout)

		res = runGctl(cfgPath, "config", "set", "upload.rate_limit", "2 MiB")
		require.Equal(t, Success, res.code, res.stderr)

		res = runGctl(cfgPath, "config", "list")
		require.Equal(t, Success, res.code, res.stderr)
		require.Contains(t, res.stdout, "server.port")
		require.Contains(t, res.stdout, "2 MiB")

		res = runGctl(cfgPath, "config", "doc", "reply.timeout")
		require.Equal(t, Success, res.code, res.stderr)
		require.Contains(t, res.stdout, "2m")
	})
}

func TestConfigSetInvalid(t *testing.T) {
	withConfigDir(t, func(cfgPath string) {
		res := runGctl(cfgPath, "config", "set", "no.such.key", "1")
		require.Equal(t, BadArgs, res.code)

		res = runGctl(cfgPath, "config", "set", "server.port", "0")
		require.Equal(t, BadArgs, res.code)

		res = runGctl(cfgPath, "config", "set", "server.port", "abc")
		require.Equal(t, BadArgs, res.code)

		res = runGctl(cfgPath, "config", "set", "log.colors", "sometimes")
		require.Equal(t, BadArgs, res.code)

		res = runGctl(cfgPath, "config", "get", "server.port")
		require.Equal(t, "1234\n", res.stdout)
	})
}

func TestConfigIsUsedForConnecting(t *testing.T) {
	srv := &clienttest.Server{Reply: clienttest.ReplyWith("gserver 2.1.0\n")}
	withGserver(t, srv, func(cfgPath string, addr []string) {
		// addr is [-s host -p port]
		res := runGctl(cfgPath, "config", "set", "server.host", addr[1])
		require.Equal(t, Success, res.code, res.stderr)

		res = runGctl(cfgPath, "config", "set", "server.port", addr[3])
		require.Equal(t, Success, res.code, res.stderr)

		res = runGctl(cfgPath, "version")
		require.Equal(t, Success, res.code, res.stderr)
		require.Equal(t, "gserver 2.1.0\n", res.stdout)
	})
}

func TestSuggestions(t *testing.T) {
	app := newApp(ioutil.Discard, ioutil.Discard, new(int))
	similars := findSimilarCommands("upgarde", app.Commands)
	require.NotEmpty(t, similars)
	require.Equal(t, "upgrade", similars[0].name)

	similars = findSimilarCommands("restart", app.Commands)
	require.Len(t, similars, 1)
	require.Equal(t, "reboot", similars[0].name)

	require.Empty(t, findSimilarCommands("xyzzy", app.Commands))
}
