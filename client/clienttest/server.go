// Package clienttest provides a minimal gserver for tests.
// It speaks the request side of the protocol just like the real service
// does and answers with canned replies.
package clienttest

import (
	"bufio"
	"io"
	"io/ioutil"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	e "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Request is a request as seen by the server.
type Request struct {
	// Keyword is the first line, e.g. "version".
	Keyword string
	// Arg is the second line for netconfig and download, if any.
	Arg string
	// Payload is the binary data following a download preamble.
	Payload []byte
	// Raw is every byte the server consumed for this request.
	Raw []byte
}

// Server is a fake gserver. Set the public fields before calling Start().
type Server struct {
	// Reply computes the reply to `req`. A nil func or nil result
	// makes the server close the connection without sending anything.
	Reply func(req *Request) []byte

	// ChunkSize splits the reply into writes of this size.
	ChunkSize int

	// ChunkDelay is slept between two chunks.
	ChunkDelay time.Duration

	// KeepOpen makes the server keep the connection open after replying
	// until the client hangs up.
	KeepOpen bool

	lst      net.Listener
	mu       sync.Mutex
	requests []*Request
	errs     []error
	wg       sync.WaitGroup
}

// ReplyWith returns a Reply func that always answers with `data`.
func ReplyWith(data string) func(req *Request) []byte {
	return func(req *Request) []byte {
		return []byte(data)
	}
}

// Start listens on a random local port and serves in the background.
func (srv *Server) Start() error {
	lst, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}

	srv.lst = lst
	srv.wg.Add(1)

	go func() {
		defer srv.wg.Done()
		srv.serve()
	}()

	return nil
}

func (srv *Server) serve() {
	for {
		conn, err := srv.lst.Accept()
		if err != nil {
			// Happens when the listener was closed.
			return
		}

		srv.wg.Add(1)
		go func() {
			defer srv.wg.Done()
			defer conn.Close()

			if err := srv.handle(conn); err != nil {
				log.WithError(err).Warnf("fake gserver failed to handle request")
				srv.mu.Lock()
				srv.errs = append(srv.errs, err)
				srv.mu.Unlock()
			}
		}()
	}
}

// recordingReader remembers everything that was read through it.
type recordingReader struct {
	r   io.Reader
	raw []byte
}

func (rr *recordingReader) Read(buf []byte) (int, error) {
	n, err := rr.r.Read(buf)
	rr.raw = append(rr.raw, buf[:n]...)
	return n, err
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(line, "\n"), nil
}

// ReadRequest parses a single request from `r`.
func ReadRequest(r io.Reader) (*Request, error) {
	// The bufio.Reader may read ahead, so record below it
	// and cut the raw data to what was actually consumed.
	rec := &recordingReader{r: r}
	br := bufio.NewReader(rec)
	req := &Request{}

	keyword, err := readLine(br)
	if err != nil {
		return nil, e.Wrap(err, "keyword")
	}

	req.Keyword = keyword

	switch keyword {
	case "version", "build", "upgrade", "reboot":
	case "netconfig":
		if req.Arg, err = readLine(br); err != nil {
			return nil, e.Wrap(err, "netconfig arg")
		}
	case "download":
		if req.Arg, err = readLine(br); err != nil {
			return nil, e.Wrap(err, "download size")
		}

		size, err := strconv.ParseInt(req.Arg, 10, 64)
		if err != nil || size < 0 {
			return nil, e.Errorf("bad download size: %q", req.Arg)
		}

		req.Payload = make([]byte, size)
		if _, err := io.ReadFull(br, req.Payload); err != nil {
			return nil, e.Wrap(err, "payload")
		}
	default:
		return nil, e.Errorf("unknown command: %q", keyword)
	}

	consumed := len(rec.raw) - br.Buffered()
	req.Raw = rec.raw[:consumed]
	return req, nil
}

func (srv *Server) handle(conn net.Conn) error {
	req, err := ReadRequest(conn)
	if err != nil {
		return err
	}

	srv.mu.Lock()
	srv.requests = append(srv.requests, req)
	srv.mu.Unlock()

	var reply []byte
	if srv.Reply != nil {
		reply = srv.Reply(req)
	}

	chunkSize := srv.ChunkSize
	if chunkSize <= 0 {
		chunkSize = len(reply)
	}

	for len(reply) > 0 {
		chunk := reply
		if len(chunk) > chunkSize {
			chunk = chunk[:chunkSize]
		}

		if _, err := conn.Write(chunk); err != nil {
			// Clients may legitimately hang up early (e.g. on overflow).
			return nil
		}

		reply = reply[len(chunk):]
		if len(reply) > 0 && srv.ChunkDelay > 0 {
			time.Sleep(srv.ChunkDelay)
		}
	}

	if srv.KeepOpen {
		// Wait until the client gives up.
		_, _ = io.Copy(ioutil.Discard, conn)
	}

	return nil
}

// Addr returns host and port of the server.
func (srv *Server) Addr() (string, int) {
	addr := srv.lst.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// Requests returns all requests received so far.
func (srv *Server) Requests() []*Request {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return append([]*Request{}, srv.requests...)
}

// Errors returns all errors that happened while handling requests.
func (srv *Server) Errors() []error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return append([]error{}, srv.errs...)
}

// Close stops the server and waits for all handlers to finish.
func (srv *Server) Close() error {
	err := srv.lst.Close()
	srv.wg.Wait()
	return err
}

// WithServer starts `srv`, calls `fn` with its address and closes it again.
func WithServer(srv *Server, fn func(host string, port int) error) error {
	if err := srv.Start(); err != nil {
		return err
	}

	defer srv.Close()

	host, port := srv.Addr()
	return fn(host, port)
}
