package generator

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"slopgames/internal/model"
	"slopgames/pkg/fsutils"
)

// Config holds the on-disk artifact layout for generated games.
type Config struct {
	GamesDir      string // Directory of <id>.html markup artifacts
	ThumbnailsDir string // Directory of <id>.png thumbnails
	MarkupExt     string
	ImageExt      string
	// URL prefixes under which the static server exposes the two directories.
	GamesURLPrefix      string
	ThumbnailsURLPrefix string
}

// DefaultGeneratorConfig lays artifacts out under dataDir.
func DefaultGeneratorConfig(dataDir string) Config {
	return Config{
		GamesDir:            filepath.Join(dataDir, "games"),
		ThumbnailsDir:       filepath.Join(dataDir, "thumbnails"),
		MarkupExt:           ".html",
		ImageExt:            ".png",
		GamesURLPrefix:      "/games/",
		ThumbnailsURLPrefix: "/thumbnails/",
	}
}

// EnsureDirs creates the artifact directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.GamesDir, c.ThumbnailsDir} {
		if err := fsutils.CreateDir(dir); err != nil {
			return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}
	return nil
}

// MarkupPath is the markup artifact file for id.
func (c Config) MarkupPath(id string) string {
	return filepath.Join(c.GamesDir, id+c.MarkupExt)
}

// ThumbnailPath is the thumbnail file for id.
func (c Config) ThumbnailPath(id string) string {
	return filepath.Join(c.ThumbnailsDir, id+c.ImageExt)
}

// ThumbnailURL is the public path stored in GameRecord.Thumbnail.
func (c Config) ThumbnailURL(id string) string {
	return c.ThumbnailsURLPrefix + id + c.ImageExt
}

// WriteMarkup stores the generated game as <id><MarkupExt>.
func WriteMarkup(cfg Config, id, markup string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("game ID cannot be empty")
	}
	if err := fsutils.CreateDir(cfg.GamesDir); err != nil {
		return "", fmt.Errorf("failed to create games directory %s: %w", cfg.GamesDir, err)
	}
	path := cfg.MarkupPath(id)
	if err := fsutils.WriteFileAtomic(path, []byte(markup)); err != nil {
		return "", fmt.Errorf("failed to write game markup %s: %w", path, err)
	}
	return path, nil
}

// ComposePrompt builds the prompt sent to the text model. With a title and at
// least one non-blank tag the freeform prompt is embedded in a templated
// sentence; otherwise it is used verbatim.
func ComposePrompt(req model.CreateRequest) string {
	title := strings.TrimSpace(req.Title)
	tags := ParseTags(req.Tags, "")
	if title == "" || len(tags) == 0 {
		return req.Prompt
	}
	return fmt.Sprintf("Create a game titled %q with the following tags: %s. Game description: %s",
		title, strings.Join(tags, ", "), req.Prompt)
}

// ParseTags splits a comma separated tag field. Entries are trimmed and empty
// ones dropped. When nothing remains, the result is [gameType] (or empty when
// gameType is blank too).
func ParseTags(tags, gameType string) []string {
	out := make([]string, 0)
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 && strings.TrimSpace(gameType) != "" {
		out = append(out, strings.TrimSpace(gameType))
	}
	return out
}

// Categories are the genres offered on the landing page.
var Categories = []string{"Arcade", "Puzzle", "Text Adventure", "Simulation", "Card Game"}

// TagPool feeds the landing page suggestions.
var TagPool = []string{
	"Arcade", "Puzzle", "Platformer", "Retro", "Space", "Shooter", "Racing",
	"Roguelike", "Cozy", "Horror", "Strategy", "Rhythm", "Card Game",
	"Text Adventure", "Simulation", "Physics", "Pixel Art", "Survival",
	"Tower Defense", "Endless Runner", "Stealth", "Fantasy", "Cyberpunk", "Ocean",
}

// SampleTags picks n distinct tags from pool, uniformly at random (Fisher-Yates
// over a copy). If pool has fewer than n entries, all of them are returned in
// random order.
func SampleTags(pool []string, n int) []string {
	shuffled := append([]string(nil), pool...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n < 0 {
		n = 0
	}
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
