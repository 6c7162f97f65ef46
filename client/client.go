package client

import (
	"context"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/gserver/gctl/protocol"
	e "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultMaxReplySize is the reply limit gserver is known to respect.
	DefaultMaxReplySize = 508
	// DefaultMaxPayloadSize is the biggest image we are willing to send.
	DefaultMaxPayloadSize = 64 * 1024 * 1024
)

// Options configure a Client. The zero value is not useful;
// start with DefaultOptions() and modify what you need.
type Options struct {
	// MaxReplySize is the maximum number of reply bytes kept.
	// Reaching it aborts reading and yields ErrReplyOverflow.
	MaxReplySize int

	// ReplyTimeout limits how long we wait for the complete reply.
	// Zero means no limit other than the context.
	ReplyTimeout time.Duration

	// MaxPayloadSize is the inclusive upper bound for uploads.
	MaxPayloadSize int64

	// RateLimit throttles payload uploads to this many bytes per second.
	// Zero disables throttling.
	RateLimit int64

	// Progress receives a progress bar while uploading, if not nil.
	Progress io.Writer
}

// DefaultOptions returns the options gserver was designed for.
func DefaultOptions() Options {
	return Options{
		MaxReplySize:   DefaultMaxReplySize,
		ReplyTimeout:   2 * time.Minute,
		MaxPayloadSize: DefaultMaxPayloadSize,
	}
}

// Client executes commands on a gserver control service.
// It is meant to be used for exactly one command; gserver
// closes the connection after sending its reply.
type Client struct {
	rw   io.ReadWriter
	opts Options
	addr string
}

// New creates a client that talks over the already connected stream `rw`.
// If `rw` supports deadlines (like net.Conn), timeouts and
// context cancellation can interrupt blocking reads and writes.
func New(rw io.ReadWriter, opts Options) *Client {
	if opts.MaxReplySize <= 0 {
		opts.MaxReplySize = DefaultMaxReplySize
	}

	if opts.MaxPayloadSize <= 0 {
		opts.MaxPayloadSize = DefaultMaxPayloadSize
	}

	addr := "unknown"
	if conn, ok := rw.(net.Conn); ok && conn.RemoteAddr() != nil {
		addr = conn.RemoteAddr().String()
	}

	return &Client{rw: rw, opts: opts, addr: addr}
}

// Dial connects to gserver at `host`:`port`.
// `dialTimeout` limits the connection setup only.
func Dial(ctx context.Context, host string, port int, dialTimeout time.Duration, opts Options) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: dialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, e.Wrapf(err, "failed to dial %s", addr)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	log.Debugf("connected to %s", addr)
	return New(conn, opts), nil
}

// RemoteAddr returns the address of the server, if known.
func (cl *Client) RemoteAddr() string {
	return cl.addr
}

// Close will close the underlying stream, if it can be closed.
func (cl *Client) Close() error {
	if closer, ok := cl.rw.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Exec runs `cmd` and returns the reply of the server.
// Download commands read the image at cmd.Arg() before touching the network.
//
// The returned reply is never nil when the request was sent,
// even if an error occurred while reading it: a partial reply
// is still worth showing.
func (cl *Client) Exec(ctx context.Context, cmd protocol.Command) (*Reply, error) {
	if cmd.IsBulk() {
		return cl.Download(ctx, cmd.Arg())
	}

	frame, err := cmd.Encode()
	if err != nil {
		return nil, err
	}

	stop := cl.watchContext(ctx)
	defer stop()

	log.WithFields(log.Fields{
		"cmd":  cmd.Kind().String(),
		"addr": cl.addr,
	}).Debugf("sending request")

	if err := cl.writeFull(ctx, frame); err != nil {
		return nil, e.Wrapf(err, "failed to send %s request", cmd.Kind())
	}

	return cl.readReply(ctx)
}

// watchContext interrupts pending reads and writes once `ctx` is done.
// The returned function must be called to release the watcher.
func (cl *Client) watchContext(ctx context.Context) func() {
	dl, ok := cl.rw.(deadlineSetter)
	if !ok || ctx.Done() == nil {
		return func() {}
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)

		select {
		case <-ctx.Done():
			// A deadline in the past wakes up any blocked call.
			_ = dl.SetDeadline(time.Now())
		case <-stopCh:
		}
	}()

	return func() {
		close(stopCh)
		<-doneCh
	}
}

type deadlineSetter interface {
	SetDeadline(t time.Time) error
}

type readDeadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

// replyDeadline computes when reading the reply has to be finished.
// The zero time means "no deadline".
func (cl *Client) replyDeadline(ctx context.Context) time.Time {
	var deadline time.Time
	if cl.opts.ReplyTimeout > 0 {
		deadline = time.Now().Add(cl.opts.ReplyTimeout)
	}

	if ctxDeadline, ok := ctx.Deadline(); ok {
		if deadline.IsZero() || ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
	}

	return deadline
}
