package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"github.com/JaimeStill/aligner/pkg/lifecycle"
)

// local stores blobs as files beneath a root directory.
// All access goes through os.Root so keys cannot resolve outside of it.
type local struct {
	dir    string
	root   *os.Root
	logger *slog.Logger
}

func newLocal(dir string, logger *slog.Logger) (*local, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", dir, err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open storage root %s: %w", dir, err)
	}

	return &local{
		dir:    dir,
		root:   root,
		logger: logger,
	}, nil
}

func (l *local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting storage system", "root", l.dir)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := l.root.Close(); err != nil {
			l.logger.Error("storage root close failed", "error", err)
		}
	})

	return nil
}

// Upload writes to a temporary sibling and renames it into place,
// so a failed write never leaves a partial blob under key.
func (l *local) Upload(ctx context.Context, key string, reader io.Reader, _ string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := l.root.MkdirAll(path.Dir(key), 0o750); err != nil {
		return fmt.Errorf("create blob directory %s: %w", key, err)
	}

	tmp := key + ".tmp-" + randomSuffix()
	f, err := l.root.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create blob %s: %w", key, err)
	}

	_, copyErr := io.Copy(f, &contextReader{ctx: ctx, r: reader})
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = l.root.Remove(tmp)
		return fmt.Errorf("write blob %s: %w", key, err)
	}

	if err := l.root.Rename(tmp, key); err != nil {
		_ = l.root.Remove(tmp)
		return fmt.Errorf("commit blob %s: %w", key, err)
	}

	return nil
}

func (l *local) Download(_ context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	f, err := l.root.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}

	return f, nil
}

func (l *local) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := l.root.Remove(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	// prune now-empty parent directories; Remove fails on non-empty ones
	for dir := path.Dir(key); dir != "."; dir = path.Dir(dir) {
		if l.root.Remove(dir) != nil {
			break
		}
	}

	return nil
}

func (l *local) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	info, err := l.root.Stat(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}

	return info.Mode().IsRegular(), nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func randomSuffix() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
