package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"slopgames/internal/model"
)

// Helper function to create a sample record for testing
func createSampleGame(id, title string) *model.GameRecord {
	thumb := "/thumbnails/" + id + ".png"
	return &model.GameRecord{
		ID:        id,
		Prompt:    "a cat jumps over obstacles",
		Title:     title,
		Tags:      []string{"Arcade", "Platformer"},
		Type:      "Arcade",
		Date:      time.Now().UTC().Truncate(time.Second),
		Thumbnail: &thumb,
	}
}

func newTestStore(t *testing.T) *JSONStore {
	t.Helper()
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "data", "games.json"), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	return store
}

func TestNewJSONStore(t *testing.T) {
	tempDir := t.TempDir()
	catalogPath := filepath.Join(tempDir, "data", "games.json")

	store, err := NewJSONStore(catalogPath, nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	if store == nil {
		t.Fatal("NewJSONStore() returned nil store")
	}

	// Check if the parent directory was created
	if _, err := os.Stat(filepath.Dir(catalogPath)); os.IsNotExist(err) {
		t.Errorf("NewJSONStore() did not create the data directory: %s", filepath.Dir(catalogPath))
	}

	if store.Path() != catalogPath {
		t.Errorf("Path() returned %q, want %q", store.Path(), catalogPath)
	}
}

func TestList_MissingFile(t *testing.T) {
	store := newTestStore(t)

	games := store.List()
	if games == nil {
		t.Fatal("List() returned nil, want empty slice")
	}
	if len(games) != 0 {
		t.Errorf("List() returned %d games, want 0", len(games))
	}
}

func TestList_CorruptFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	if games := store.List(); len(games) != 0 {
		t.Errorf("List() on corrupt catalog returned %d games, want 0", len(games))
	}
}

func TestSaveThenList(t *testing.T) {
	store := newTestStore(t)

	first := createSampleGame("game-1", "First")
	if err := store.Save(first); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	before := store.List()

	second := createSampleGame("game-2", "Second")
	second.Thumbnail = nil
	if err := store.Save(second); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	after := store.List()
	if len(after) != len(before)+1 {
		t.Fatalf("List() returned %d games, want %d", len(after), len(before)+1)
	}
	// Newest first: head is the saved record, the rest is the previous catalog.
	if !reflect.DeepEqual(after[0], second) {
		t.Errorf("head of catalog does not match saved record.\nSaved:  %+v\nLoaded: %+v", second, after[0])
	}
	if !reflect.DeepEqual(after[1:], before) {
		t.Errorf("tail of catalog does not match previous catalog.\nBefore: %+v\nTail:   %+v", before, after[1:])
	}
	if after[0].Thumbnail != nil {
		t.Errorf("thumbnail = %q, want nil", *after[0].Thumbnail)
	}
}

func TestSave_NullThumbnailPersisted(t *testing.T) {
	store := newTestStore(t)
	game := createSampleGame("game-null", "No Thumb")
	game.Thumbnail = nil
	if err := store.Save(game); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("reading catalog failed: %v", err)
	}
	if !strings.Contains(string(data), `"thumbnail": null`) {
		t.Errorf("catalog file does not contain a null thumbnail:\n%s", data)
	}
}

func TestSave_Rejects(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&model.GameRecord{}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("Save() with empty ID returned %v, want ErrEmptyID", err)
	}

	game := createSampleGame("dup", "Dup")
	if err := store.Save(game); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := store.Save(createSampleGame("dup", "Dup again")); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Save() with duplicate ID returned %v, want ErrDuplicateID", err)
	}
	if n := len(store.List()); n != 1 {
		t.Errorf("catalog has %d games after rejected save, want 1", n)
	}
}

func TestSave_ConcurrentWritersKeepAllRecords(t *testing.T) {
	store := newTestStore(t)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := store.Save(createSampleGame(fmt.Sprintf("game-%d", i), "Concurrent")); err != nil {
				t.Errorf("Save() failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if n := len(store.List()); n != writers {
		t.Errorf("catalog has %d games, want %d", n, writers)
	}
}

func TestFindByID(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.Save(createSampleGame(id, "Game "+id)); err != nil {
			t.Fatalf("Setup failed: Save(%s): %v", id, err)
		}
	}

	got, ok := store.FindByID("b")
	if !ok {
		t.Fatal("FindByID(b) returned not found")
	}
	if got.ID != "b" || got.Title != "Game b" {
		t.Errorf("FindByID(b) returned %+v", got)
	}

	for _, id := range []string{"", "zzz"} {
		if _, ok := store.FindByID(id); ok {
			t.Errorf("FindByID(%q) found a record, want not found", id)
		}
	}
}

func TestSearchAndCategory(t *testing.T) {
	store := newTestStore(t)

	cave := createSampleGame("cave", "Cave Dash")
	cave.Tags = []string{"Arcade", "Puzzle"}
	cave.Prompt = "dig and avoid rocks"
	words := createSampleGame("words", "Word Hunt")
	words.Type = "Puzzle"
	words.Tags = []string{"Puzzle"}
	words.Prompt = "find hidden words"
	for _, g := range []*model.GameRecord{cave, words} {
		if err := store.Save(g); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title match", "cave", []string{"cave"}},
		{"prompt match", "ROCKS", []string{"cave"}},
		{"tag match", "puzzle", []string{"words", "cave"}},
		{"no match", "racing", []string{}},
		{"empty query", "  ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(store.Search(tt.query)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}

	if got := ids(store.ByCategory("arcade")); !reflect.DeepEqual(got, []string{"cave"}) {
		t.Errorf("ByCategory(arcade) = %v, want [cave]", got)
	}
	if got := ids(store.ByCategory("Puzzle")); !reflect.DeepEqual(got, []string{"words", "cave"}) {
		t.Errorf("ByCategory(Puzzle) = %v, want [words cave]", got)
	}
}

func ids(games []*model.GameRecord) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	return out
}
