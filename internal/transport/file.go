// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package transport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/jonboulle/clockwork"
)

// File writes each batch to its own file in a spool directory. Files
// appear atomically, so a shipper tailing the directory never reads a
// partial batch.
type File struct {
	dir   string
	clock clockwork.Clock
}

// NewFile creates dir if needed and returns a file transport.
func NewFile(dir string, clock clockwork.Clock) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("file transport: directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("file transport: %w", err)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &File{dir: dir, clock: clock}, nil
}

// Send implements Transport.
func (f *File) Send(ctx context.Context, b Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := fmt.Sprintf("%s-%s-%s.json", f.clock.Now().UTC().Format("20060102T150405.000000000Z"), b.Trigger, b.ID)
	path := filepath.Join(f.dir, name)

	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o640))
	if err != nil {
		return fmt.Errorf("create batch file: %w", err)
	}
	defer func() { _ = pf.Cleanup() }()

	if _, err := pf.Write(b.Body); err != nil {
		return fmt.Errorf("write batch file: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("commit batch file: %w", err)
	}
	return nil
}
