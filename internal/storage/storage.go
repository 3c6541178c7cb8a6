package storage

import (
	"errors"

	"slopgames/internal/model"
)

var (
	// ErrEmptyID is returned when saving a record without an ID.
	ErrEmptyID = errors.New("game ID cannot be empty")
	// ErrDuplicateID is returned when saving a record whose ID is already catalogued.
	ErrDuplicateID = errors.New("game ID already exists in catalog")
)

// CatalogStore defines the operations needed for persisting the game catalog.
// The catalog is ordered newest first.
type CatalogStore interface {
	// List returns every record. Unreadable storage yields an empty catalog.
	List() []*model.GameRecord

	// Save prepends the record and rewrites the whole catalog.
	Save(record *model.GameRecord) error

	// FindByID returns the record with the given ID, if any.
	FindByID(id string) (*model.GameRecord, bool)

	// Search returns records whose title, prompt, type or tags contain query.
	Search(query string) []*model.GameRecord

	// ByCategory returns records whose type or one of the tags equals name.
	ByCategory(name string) []*model.GameRecord

	// Path returns the location of the catalog file.
	Path() string
}
