package gamemanager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"slopgames/internal/generator"
	"slopgames/internal/model"
	"slopgames/internal/storage"
	"slopgames/pkg/fsutils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GameLoadErrorHTML replaces the game body when its markup file can't be read.
const GameLoadErrorHTML = "<h1>Error loading game</h1><p>The game file could not be found.</p>"

// TextGenerator produces game markup, titles and loading tips.
type TextGenerator interface {
	GenerateGameMarkup(ctx context.Context, prompt, genreHint string) (string, error)
	GenerateTitle(ctx context.Context, tags []string) string
	GenerateLoadingTips(ctx context.Context, title, tagsOrType string) []string
}

// ThumbnailGenerator renders a thumbnail into outputPath and reports success.
type ThumbnailGenerator interface {
	GenerateThumbnail(ctx context.Context, promptText, outputPath string) bool
}

// GameManager runs the game creation flow and the read-side lookups that
// need both the catalog and the artifact files.
type GameManager struct {
	store     storage.CatalogStore
	text      TextGenerator
	images    ThumbnailGenerator // nil disables thumbnails
	artifacts generator.Config
	logger    *slog.Logger

	newID func() string
	now   func() time.Time
}

// NewManager creates a new GameManager instance.
func NewManager(store storage.CatalogStore, text TextGenerator, images ThumbnailGenerator, artifacts generator.Config, logger *slog.Logger) *GameManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &GameManager{
		store:     store,
		text:      text,
		images:    images,
		artifacts: artifacts,
		logger:    logger,
		newID:     func() string { return uuid.Must(uuid.NewV7()).String() },
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Store returns the catalog the manager writes to.
func (m *GameManager) Store() storage.CatalogStore {
	return m.store
}

// LoadingTips returns three tips for the loading screen of req.
func (m *GameManager) LoadingTips(ctx context.Context, req model.CreateRequest) []string {
	about := strings.TrimSpace(req.Tags)
	if about == "" {
		about = req.Type
	}
	return m.text.GenerateLoadingTips(ctx, req.Title, about)
}

// CreateGame generates the markup, writes the artifacts and records the game.
// Only a markup generation or persistence failure is returned; in that case
// no record exists and no artifact file is left behind.
func (m *GameManager) CreateGame(ctx context.Context, req model.CreateRequest) (*model.GameRecord, error) {
	finalPrompt := generator.ComposePrompt(req)
	m.logger.Info("Creating game", "title", req.Title, "type", req.Type)

	markup, err := m.text.GenerateGameMarkup(ctx, finalPrompt, req.Type)
	if err != nil {
		return nil, fmt.Errorf("generating game markup failed: %w", err)
	}

	id := m.newID()
	markupPath, err := generator.WriteMarkup(m.artifacts, id, markup)
	if err != nil {
		m.logger.Error("Error writing game markup", "id", id, "error", err)
		return nil, err
	}

	var thumbnail *string
	thumbPath := m.artifacts.ThumbnailPath(id)
	if m.images != nil && m.images.GenerateThumbnail(ctx, finalPrompt, thumbPath) {
		url := m.artifacts.ThumbnailURL(id)
		thumbnail = &url
	} else {
		m.logger.Warn("Continuing without thumbnail", "id", id)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled Game"
	}
	record := &model.GameRecord{
		ID:        id,
		Prompt:    finalPrompt,
		Title:     title,
		Tags:      generator.ParseTags(req.Tags, req.Type),
		Type:      req.Type,
		Date:      m.now(),
		Thumbnail: thumbnail,
	}

	if err := m.store.Save(record); err != nil {
		m.logger.Error("Error saving game record, removing artifacts", "id", id, "error", err)
		m.removeArtifacts(markupPath, thumbPath)
		return nil, fmt.Errorf("saving game record failed: %w", err)
	}

	m.logger.Info("Successfully created game", "id", id, "title", title, "thumbnail", thumbnail != nil)
	return record, nil
}

func (m *GameManager) removeArtifacts(paths ...string) {
	for _, p := range paths {
		if err := fsutils.RemoveIfExists(p); err != nil {
			m.logger.Warn("Could not remove artifact", "path", p, "error", err)
		}
	}
}

// Game looks up a record and its markup. The bool is false when no record has
// the id. An unreadable markup file yields GameLoadErrorHTML instead.
func (m *GameManager) Game(id string) (*model.GameRecord, string, bool) {
	record, ok := m.store.FindByID(id)
	if !ok {
		return nil, "", false
	}
	path := m.artifacts.MarkupPath(id)
	if !fsutils.FileExists(path) {
		m.logger.Warn("Game markup missing", "id", id, "path", path)
		return record, GameLoadErrorHTML, true
	}
	data, err := fsutils.ReadFile(path)
	if err != nil {
		m.logger.Warn("Game markup unreadable", "id", id, "error", err)
		return record, GameLoadErrorHTML, true
	}
	return record, string(data), true
}

// Suggestions builds n ephemeral tag/title pairs. Titles are generated
// concurrently; each failure already degrades to a fallback title.
func (m *GameManager) Suggestions(ctx context.Context, n int) []model.Suggestion {
	suggestions := make([]model.Suggestion, max(n, 0))
	g, gctx := errgroup.WithContext(ctx)
	for i := range suggestions {
		tags := generator.SampleTags(generator.TagPool, 3)
		suggestions[i].Tags = tags
		g.Go(func() error {
			suggestions[i].Title = m.text.GenerateTitle(gctx, tags)
			return nil
		})
	}
	_ = g.Wait() // Workers never return an error.
	return suggestions
}
