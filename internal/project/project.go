// Package project saves and restores a working set of records together with
// the configuration that produced it, so a run can resume after the
// back-azimuth correction.
package project

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/AlbertSeismo/RFs-Seispy/rf/config"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

// ErrVersion indicates a snapshot written by an incompatible version.
var ErrVersion = errors.New("project: unsupported snapshot version")

const version = 1

// Snapshot is the persisted working set.
type Snapshot struct {
	Version int           `msgpack:"version"`
	Run     string        `msgpack:"run"`
	Saved   time.Time     `msgpack:"saved"`
	Config  config.Config `msgpack:"config"`
	Records []seis.Record `msgpack:"records"`
}

// New returns a snapshot of recs stamped with the current time.
func New(run string, cfg config.Config, recs []seis.Record) *Snapshot {
	return &Snapshot{
		Version: version,
		Run:     run,
		Saved:   time.Now().UTC(),
		Config:  cfg,
		Records: recs,
	}
}

// Encode writes s as MessagePack.
func (s *Snapshot) Encode(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("project: encode: %w", err)
	}
	return nil
}

// Decode reads a snapshot.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("project: decode: %w", err)
	}
	if s.Version != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	return &s, nil
}

// Save writes s to path.
func Save(path string, s *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := s.Encode(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads the snapshot at path.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
