// Package statefile persists the arbitrage state document as a single
// JSON file, rewritten in full on every mutation.
package statefile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

// Store reads and writes the state document at a fixed path.
type Store struct {
	path   string
	logger logger.LoggerInterface
}

// NewStore creates a Store for the given file path.
func NewStore(path string, log logger.LoggerInterface) *Store {
	return &Store{path: path, logger: log}
}

// Load reads the document. A missing file is a normal first run and an
// unparseable one is treated as empty state: availability wins over
// consistency here, the loss is logged for the operator.
func (s *Store) Load(ctx context.Context) (*domain.State, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewState(), nil
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStateCorruption, "read state file")
	}

	state := &domain.State{}
	if err := json.Unmarshal(raw, state); err != nil {
		s.logger.Warn(ctx, "state file unparseable, starting from empty state",
			"path", s.path,
			"error", err)
		return domain.NewState(), nil
	}

	if state.SchemaVersion < domain.CurrentSchemaVersion {
		s.logger.Info(ctx, "migrating state document",
			"from_version", state.SchemaVersion,
			"to_version", domain.CurrentSchemaVersion)
	}
	state.Migrate()
	return state, nil
}

// Save rewrites the document atomically: the new content lands in a
// sibling temp file first and replaces the old one with a rename, so a
// crash mid-write leaves the previous document intact.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStateCorruption, "encode state")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStateCorruption, "create temp state file")
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return apperror.Wrap(err, apperror.CodeStateCorruption, "write state")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return apperror.Wrap(err, apperror.CodeStateCorruption, "close temp state file")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return apperror.Wrap(err, apperror.CodeStateCorruption, "replace state file")
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }
