package client

import (
	"context"
	"fmt"
	"io"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/gserver/gctl/protocol"
	e "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// PayloadSizeError is returned for images that are empty or too big.
type PayloadSizeError struct {
	Size int64
	Max  int64
}

func (err PayloadSizeError) Error() string {
	return fmt.Sprintf(
		"upgrade file size is suspect: %d (must be between 1 and %d bytes)",
		err.Size,
		err.Max,
	)
}

func checkPayloadSize(size, max int64) error {
	if size < 1 || size > max {
		return PayloadSizeError{Size: size, Max: max}
	}

	return nil
}

// LoadPayload reads the whole file at `path` into memory.
// Files that are empty or bigger than `max` bytes are refused
// without reading them.
func LoadPayload(path string, max int64) ([]byte, error) {
	fd, err := os.Open(path) // #nosec
	if err != nil {
		return nil, e.Wrap(err, "open")
	}

	defer fd.Close()

	size, err := fd.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, e.Wrap(err, "seek")
	}

	if err := checkPayloadSize(size, max); err != nil {
		return nil, err
	}

	if _, err := fd.Seek(0, io.SeekStart); err != nil {
		return nil, e.Wrap(err, "seek")
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(fd, payload); err != nil {
		return nil, e.Wrap(err, "failed to slurp upgrade file")
	}

	return payload, nil
}

// Download sends the image at `path` to the server, which stores it
// for a later upgrade. The file is checked and read completely before
// anything is sent.
func (cl *Client) Download(ctx context.Context, path string) (*Reply, error) {
	payload, err := LoadPayload(path, cl.opts.MaxPayloadSize)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"path": path,
		"size": humanize.Bytes(uint64(len(payload))),
	}).Info("uploading image")

	return cl.Upload(ctx, payload)
}

// Upload sends `payload` as download request.
// It is the in-memory counterpart of Download.
func (cl *Client) Upload(ctx context.Context, payload []byte) (*Reply, error) {
	size := int64(len(payload))
	if err := checkPayloadSize(size, cl.opts.MaxPayloadSize); err != nil {
		return nil, err
	}

	stop := cl.watchContext(ctx)
	defer stop()

	if err := cl.writeFull(ctx, protocol.Preamble(size)); err != nil {
		return nil, e.Wrap(err, "failed to send download preamble")
	}

	if err := newPayloadSender(cl, size).Send(ctx, payload); err != nil {
		return nil, e.Wrap(err, "failed to send image")
	}

	log.Debugf("sent %s, waiting for reply", humanize.Bytes(uint64(size)))
	return cl.readReply(ctx)
}
