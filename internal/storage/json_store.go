package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"slopgames/internal/model"
	"slopgames/pkg/fsutils"
)

// JSONStore implements CatalogStore on top of a single JSON file holding the
// whole catalog as an array. Nothing is cached: every read re-parses the file
// and every save rewrites it.
type JSONStore struct {
	// FilePath is the catalog file (e.g. data/games.json).
	FilePath string

	logger *slog.Logger
	// mu serializes the read-modify-write of Save within this process.
	mu sync.Mutex
}

// NewJSONStore creates a new JSONStore instance.
// It ensures the directory holding the catalog file exists.
func NewJSONStore(filePath string, logger *slog.Logger) (*JSONStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dir := filepath.Dir(filePath)
	if err := fsutils.CreateDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", dir, err)
	}
	return &JSONStore{FilePath: filePath, logger: logger}, nil
}

// Path returns the catalog file path.
func (js *JSONStore) Path() string {
	return js.FilePath
}

// List reads the full catalog. A missing or corrupt file yields an empty
// catalog so the landing page keeps rendering.
func (js *JSONStore) List() []*model.GameRecord {
	games, err := js.read()
	if err != nil {
		js.logger.Warn("Catalog unreadable, treating as empty", "path", js.FilePath, "error", err)
		return []*model.GameRecord{}
	}
	return games
}

// read parses the catalog file. A missing file is an empty catalog, not an error.
func (js *JSONStore) read() ([]*model.GameRecord, error) {
	data, err := os.ReadFile(js.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*model.GameRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog file %s: %w", js.FilePath, err)
	}

	var games []*model.GameRecord
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog from %s: %w", js.FilePath, err)
	}
	if games == nil {
		games = []*model.GameRecord{}
	}
	return games, nil
}

// Save prepends record to the catalog and rewrites the file.
func (js *JSONStore) Save(record *model.GameRecord) error {
	if record == nil || record.ID == "" {
		return ErrEmptyID
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	// Same policy as List: an unparseable catalog is treated as empty.
	games := js.List()
	for _, g := range games {
		if g.ID == record.ID {
			return fmt.Errorf("save game %s: %w", record.ID, ErrDuplicateID)
		}
	}

	updated := make([]*model.GameRecord, 0, len(games)+1)
	updated = append(updated, record)
	updated = append(updated, games...)

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := fsutils.WriteFileAtomic(js.FilePath, data); err != nil {
		return fmt.Errorf("failed to write catalog file %s: %w", js.FilePath, err)
	}
	js.logger.Debug("Saved game to catalog", "id", record.ID, "count", len(updated))
	return nil
}

// FindByID scans the catalog for a record with the given ID.
func (js *JSONStore) FindByID(id string) (*model.GameRecord, bool) {
	if id == "" {
		return nil, false
	}
	for _, g := range js.List() {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// Search matches query case-insensitively against title, prompt, type and tags.
// An empty query matches nothing.
func (js *JSONStore) Search(query string) []*model.GameRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]*model.GameRecord, 0)
	if q == "" {
		return results
	}
	for _, g := range js.List() {
		if matches(g, q) {
			results = append(results, g)
		}
	}
	return results
}

func matches(g *model.GameRecord, q string) bool {
	fields := append([]string{g.Title, g.Prompt, g.Type}, g.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// ByCategory returns records whose type or one of its tags equals name.
func (js *JSONStore) ByCategory(name string) []*model.GameRecord {
	results := make([]*model.GameRecord, 0)
	if strings.TrimSpace(name) == "" {
		return results
	}
	for _, g := range js.List() {
		if strings.EqualFold(g.Type, strings.TrimSpace(name)) || g.HasTag(name) {
			results = append(results, g)
		}
	}
	return results
}
