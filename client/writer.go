package client

import (
	"context"
	"io"
	"time"

	"github.com/gserver/gctl/util"
	e "github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	// payloadChunkSize is the size of a single payload write.
	// It also bounds the burst of the rate limiter.
	payloadChunkSize = 32 * 1024
)

type writeDeadlineSetter interface {
	SetWriteDeadline(t time.Time) error
}

// writeFull writes all of `data`, resuming after short writes.
// Only the context's deadline applies to writes; the reply timeout
// starts counting once the request was sent.
func (cl *Client) writeFull(ctx context.Context, data []byte) error {
	if err := cl.setWriteDeadline(ctx); err != nil {
		return err
	}

	return writeFull(ctx, cl.rw, data)
}

func (cl *Client) setWriteDeadline(ctx context.Context) error {
	dl, ok := cl.rw.(writeDeadlineSetter)
	if !ok {
		return nil
	}

	deadline, _ := ctx.Deadline()
	if err := dl.SetWriteDeadline(deadline); err != nil {
		return e.Wrap(err, "failed to set write deadline")
	}

	return nil
}

func writeFull(ctx context.Context, w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if n < 0 || n > len(data) {
			return e.Errorf("invalid write count %d for %d bytes", n, len(data))
		}

		data = data[n:]
		if err != nil {
			if ctx.Err() != nil {
				return e.Wrap(ctx.Err(), "write")
			}

			return e.Wrap(err, "write")
		}

		if n == 0 {
			return e.Wrap(io.ErrShortWrite, "write")
		}
	}

	return nil
}

// payloadSender pushes a payload in chunks, honouring an optional
// rate limit and reporting progress after each chunk.
type payloadSender struct {
	cl        *Client
	limiter   *rate.Limiter
	progress  *progress
	chunkSize int
}

func newPayloadSender(cl *Client, total int64) *payloadSender {
	ps := &payloadSender{cl: cl, chunkSize: payloadChunkSize}

	if cl.opts.RateLimit > 0 {
		burst := int(util.Min64(cl.opts.RateLimit, payloadChunkSize))

		ps.limiter = rate.NewLimiter(rate.Limit(cl.opts.RateLimit), burst)
		ps.chunkSize = burst
	}

	if cl.opts.Progress != nil {
		ps.progress = newProgress(cl.opts.Progress, "upload", total)
	}

	return ps
}

func (ps *payloadSender) Send(ctx context.Context, payload []byte) (err error) {
	defer func() {
		ps.progress.Finish(err == nil)
	}()

	if err := ps.cl.setWriteDeadline(ctx); err != nil {
		return err
	}

	for len(payload) > 0 {
		chunk := payload[:util.Min(len(payload), ps.chunkSize)]

		if ps.limiter != nil {
			if err := ps.limiter.WaitN(ctx, len(chunk)); err != nil {
				return e.Wrap(err, "rate limit")
			}
		}

		if err := writeFull(ctx, ps.cl.rw, chunk); err != nil {
			return err
		}

		ps.progress.Add(len(chunk))
		payload = payload[len(chunk):]
	}

	return nil
}
