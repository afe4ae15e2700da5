// Package ftpclient wraps one FTP session for the mirror engine: listing,
// file retrieval and remote tree statistics. A Client is not safe for
// concurrent use; a mirror pass owns it from Connect to Close.
package ftpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"ftpmirror/config"
	"ftpmirror/internal/mirror"
	"ftpmirror/internal/models"
	"ftpmirror/pkg/utils"
	"github.com/jlaffaye/ftp"
	"io"
	"net"
	"net/textproto"
	"os"
	"path"
	"strconv"
	"time"
)

type Client struct {
	conn   *ftp.ServerConn
	config *config.Config
}

// Connect dials the configured server, logs in and switches the session to
// binary mode.
func Connect(cfg *config.Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("no FTP host configured, run 'ftpmirror init' or set FTPMIRROR_HOST")
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	opts := []ftp.DialOption{
		ftp.DialWithTimeout(time.Duration(cfg.Timeout) * time.Second),
	}
	if cfg.ExplicitTLS {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{ServerName: cfg.Host}))
	}
	if cfg.Debug {
		opts = append(opts, ftp.DialWithDebugOutput(os.Stderr))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	if err := conn.Login(cfg.User, cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("failed to log in as %s: %w", cfg.User, err)
	}

	if err := conn.Type(ftp.TransferTypeBinary); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("failed to switch to binary mode: %w", err)
	}

	return &Client{conn: conn, config: cfg}, nil
}

// Close ends the session with QUIT.
func (c *Client) Close() error {
	if err := c.conn.Quit(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// List returns the entries of one remote directory, reduced to what the
// mirror engine understands. A 550 answer surfaces as mirror.ErrNotFound.
func (c *Client) List(dir string) ([]mirror.Entry, error) {
	raw, err := c.conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, classify(err))
	}
	return convertEntries(raw), nil
}

// Retrieve streams one remote file into w and returns the bytes written.
func (c *Client) Retrieve(p string, w io.Writer) (int64, error) {
	resp, err := c.conn.Retr(p)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve %s: %w", p, classify(err))
	}
	defer resp.Close()

	n, err := io.Copy(w, resp)
	if err != nil {
		return n, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return n, nil
}

// TreeStats walks the whole remote tree under root and aggregates counts,
// total size, the deepest directory and the newest file modification time.
func (c *Client) TreeStats(ctx context.Context, root string) (*models.ServerInfo, error) {
	info := &models.ServerInfo{
		Host:        c.config.Host,
		Port:        c.config.Port,
		User:        c.config.User,
		RemoteDir:   root,
		ExplicitTLS: c.config.ExplicitTLS,
	}

	type level struct {
		path  string
		depth int
	}
	stack := []level{{path: root}}
	maxDepth := 0

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := c.List(cur.path)
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", cur.path, err)
		}

		for _, e := range entries {
			switch e.Kind {
			case mirror.KindDir:
				info.DirCount++
				child := level{path: path.Join(cur.path, e.Name), depth: cur.depth + 1}
				if child.depth > maxDepth {
					maxDepth = child.depth
					info.DeepestPath = child.path
				}
				stack = append(stack, child)
			case mirror.KindFile:
				info.FileCount++
				info.TotalSizeBytes += e.Size
				if e.ModTime.After(info.LastModified) {
					info.LastModified = e.ModTime
				}
			}
		}
	}

	info.TotalSizeHuman = utils.FormatBytes(info.TotalSizeBytes)
	return info, nil
}

func convertEntries(raw []*ftp.Entry) []mirror.Entry {
	entries := make([]mirror.Entry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "" || e.Name == "." || e.Name == ".." {
			continue
		}
		entries = append(entries, convertEntry(e))
	}
	return entries
}

func convertEntry(e *ftp.Entry) mirror.Entry {
	kind := mirror.KindFile
	switch e.Type {
	case ftp.EntryTypeFolder:
		kind = mirror.KindDir
	case ftp.EntryTypeLink:
		kind = mirror.KindLink
	}
	return mirror.Entry{
		Name:    e.Name,
		Kind:    kind,
		Size:    int64(e.Size),
		ModTime: e.Time,
	}
}

// classify maps FTP protocol answers onto the engine's error vocabulary.
// 550 means the path does not exist (or is unreadable, which a mirror
// treats the same way); everything else passes through.
func classify(err error) error {
	var proto *textproto.Error
	if errors.As(err, &proto) && proto.Code == ftp.StatusFileUnavailable {
		return fmt.Errorf("%w: %s", mirror.ErrNotFound, proto.Msg)
	}
	return err
}
