package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Zelldon/zdb-sub001/internal/journal"
	"github.com/Zelldon/zdb-sub001/internal/keyformat"
	"github.com/Zelldon/zdb-sub001/internal/logger"
	"github.com/Zelldon/zdb-sub001/internal/raftlog"
	"github.com/Zelldon/zdb-sub001/internal/state"
)

// logSource is an open partition log.
type logSource struct {
	journal *journal.Journal
	reader  *raftlog.Reader
}

func (s *logSource) Close() error {
	return multierr.Combine(s.reader.Close(), s.journal.Close())
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --path", err)
	}
	if !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --path: %s is not a directory", path))
	}
	return nil
}

// openLog opens the journal in path. With journal.respectFlushedIndex set the
// reader stops at the index recorded in the metadata file.
func (o *RootOptions) openLog(ctx context.Context, path string) (*logSource, error) {
	if err := checkDir(path); err != nil {
		return nil, err
	}
	jopts := o.Config.JournalOptions()
	jopts.Logger = logger.FromContext(ctx)
	j, err := journal.Open(path, jopts)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open log", err)
	}
	jr, err := j.OpenReader()
	if err != nil {
		_ = j.Close()
		return nil, WrapExitError(ExitFailure, "failed to open log", err)
	}

	var readerOpts []raftlog.ReaderOption
	if o.Config.Journal.RespectFlushedIndex {
		meta, err := journal.LoadMetaStore(path)
		if err != nil {
			_ = multierr.Combine(jr.Close(), j.Close())
			return nil, WrapExitError(ExitFailure, "failed to read journal metadata", err)
		}
		if idx, ok := meta.LastFlushedIndex(); ok {
			jopts.Logger.Debug("bounding reads by flushed index", zap.Int64("lastFlushedIndex", idx))
		}
		readerOpts = append(readerOpts, raftlog.WithFlushedBound(meta))
	}
	jopts.Logger.Debug("opened log",
		zap.String("path", path),
		zap.Int64("firstIndex", j.FirstIndex()),
		zap.Int64("lastIndex", j.LastIndex()))
	return &logSource{journal: j, reader: raftlog.NewReader(jr, readerOpts...)}, nil
}

// keyFlags override the configured key rendering.
type keyFlags struct {
	HexKeys   bool
	KeyFormat string
}

func (o *RootOptions) registry(kf keyFlags) (keyformat.Registry, error) {
	switch {
	case kf.HexKeys:
		return keyformat.HexRegistry(), nil
	case kf.KeyFormat != "":
		reg, err := keyformat.SpecRegistry(kf.KeyFormat)
		if err != nil {
			return keyformat.Registry{}, WrapExitError(ExitCommandError, "invalid --key-format", err)
		}
		return reg, nil
	}
	reg, err := o.Config.Registry()
	if err != nil {
		return keyformat.Registry{}, WrapExitError(ExitCommandError, "invalid key configuration", err)
	}
	return reg, nil
}

// openState opens the state store in path.
func (o *RootOptions) openState(ctx context.Context, path string, kf keyFlags) (*state.Reader, error) {
	if err := checkDir(path); err != nil {
		return nil, err
	}
	reg, err := o.registry(kf)
	if err != nil {
		return nil, err
	}
	r, err := state.Open(path, state.Options{Registry: reg, Logger: logger.FromContext(ctx)})
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open state", err)
	}
	return r, nil
}

// parseHex accepts hex with or without separating spaces, e.g. "00 0a" or "000a".
func parseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}
