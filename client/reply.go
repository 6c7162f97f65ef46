package client

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/gserver/gctl/util"
	e "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// readChunkSize is how much we ask for in a single read.
	readChunkSize = 512

	// maxEmptyReads is the number of (0, nil) reads tolerated in a row.
	maxEmptyReads = 100
)

var (
	// ErrReplyOverflow is returned when the server sent more than
	// Options.MaxReplySize bytes. The reply is cut at the limit.
	ErrReplyOverflow = errors.New("Overflow of response buffer")

	// ErrReplyTimeout is returned when the reply did not finish in time.
	ErrReplyTimeout = errors.New("timeout while waiting for reply")
)

// Reply is the answer of the server. gserver does not frame its replies,
// so this is simply everything that was received until it closed
// the connection (or until the limit was reached).
type Reply struct {
	// Data is the raw reply, usually human readable text.
	Data []byte

	// Overflow is true if the reply was cut at the size limit.
	Overflow bool
}

func (r *Reply) String() string {
	if r == nil {
		return ""
	}

	return string(r.Data)
}

// Empty tells if nothing at all was received.
func (r *Reply) Empty() bool {
	return r == nil || len(r.Data) == 0
}

// replyBuffer accumulates reply bytes up to a fixed limit.
type replyBuffer struct {
	data  []byte
	limit int
}

func newReplyBuffer(limit int) *replyBuffer {
	return &replyBuffer{
		data:  make([]byte, 0, util.Clamp(limit, 0, readChunkSize)),
		limit: limit,
	}
}

func (rb *replyBuffer) Remaining() int {
	return rb.limit - len(rb.data)
}

func (rb *replyBuffer) Full() bool {
	return rb.Remaining() <= 0
}

// Write appends `p`, refusing anything that exceeds the limit.
func (rb *replyBuffer) Write(p []byte) (int, error) {
	if len(p) > rb.Remaining() {
		n := rb.Remaining()
		rb.data = append(rb.data, p[:n]...)
		return n, ErrReplyOverflow
	}

	rb.data = append(rb.data, p...)
	return len(p), nil
}

func (rb *replyBuffer) Reply() *Reply {
	return &Reply{Data: rb.data, Overflow: rb.Full()}
}

func isTimeout(err error) bool {
	netErr, ok := err.(net.Error)
	return ok && netErr.Timeout()
}

// readReply collects the reply until the server closes the connection.
// Whatever was received is returned, even on errors.
func (cl *Client) readReply(ctx context.Context) (*Reply, error) {
	buf := newReplyBuffer(cl.opts.MaxReplySize)

	if dl, ok := cl.rw.(readDeadlineSetter); ok {
		if err := dl.SetReadDeadline(cl.replyDeadline(ctx)); err != nil {
			return buf.Reply(), e.Wrap(err, "failed to set read deadline")
		}
	}

	chunk := make([]byte, readChunkSize)
	emptyReads := 0

	for {
		if err := ctx.Err(); err != nil {
			return buf.Reply(), e.Wrap(err, "read reply")
		}

		n, err := cl.rw.Read(chunk[:util.Min(buf.Remaining(), len(chunk))])
		if n > 0 {
			emptyReads = 0
			if _, wErr := buf.Write(chunk[:n]); wErr != nil {
				// Cannot happen since we never read more than Remaining().
				return buf.Reply(), wErr
			}
		}

		if buf.Full() {
			log.WithField("limit", cl.opts.MaxReplySize).Warn("Overflow of response buffer")
			return buf.Reply(), ErrReplyOverflow
		}

		switch {
		case err == io.EOF:
			log.WithField("size", len(buf.data)).Debug("server closed connection; reply complete")
			return buf.Reply(), nil
		case err != nil && ctx.Err() != nil:
			return buf.Reply(), e.Wrap(ctx.Err(), "read reply")
		case err != nil && isTimeout(err):
			return buf.Reply(), ErrReplyTimeout
		case err != nil:
			return buf.Reply(), e.Wrap(err, "read")
		case n == 0:
			emptyReads++
			if emptyReads >= maxEmptyReads {
				return buf.Reply(), e.Wrap(io.ErrNoProgress, "read")
			}
		}
	}
}
