package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const gameSystemPrompt = `You are an expert game developer.
Create a single, self-contained HTML file for a browser-based game.
The game should be simple but playable.
Include all CSS and JavaScript within the HTML file.
Do not use external resources (images, sounds) unless they are generated via code (e.g., Canvas API, Web Audio API) or data URIs.
The game should fit within a 800x600 container but be responsive if possible.
Focus on the gameplay mechanics described by the user.
If the user specifies a genre, adhere to it.
Ensure the code is bug-free and handles errors gracefully.
Return ONLY the HTML code, starting with <!DOCTYPE html> and ending with </html>. Do not wrap it in markdown code blocks.`

// FallbackTips are shown on the loading screen when tip generation fails.
var FallbackTips = []string{
	"Generating your game... this can take up to a minute.",
	"Tip: clear controls and a clear goal make for better games.",
	"Every game is one of a kind. Enjoy the surprise!",
}

// Wire types of the generateContent endpoint.
type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// text joins the parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// TextClient wraps the Gemini text model.
type TextClient struct {
	transport
	titlePolicy *bluemonday.Policy
}

// NewTextClient creates a text client. A nil logger discards logs.
func NewTextClient(cfg Config, logger *slog.Logger) *TextClient {
	return &TextClient{
		transport:   newTransport(cfg, logger),
		titlePolicy: bluemonday.StrictPolicy(),
	}
}

// generate sends one generateContent call and returns the raw text.
func (c *TextClient) generate(ctx context.Context, system, user, mimeType string) (string, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: user}}}},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if mimeType != "" {
		req.GenerationConfig = &generationConfig{ResponseMIMEType: mimeType}
	}

	var resp generateResponse
	if err := c.postJSON(ctx, c.modelURL(c.config.TextModel, "generateContent"), req, &resp); err != nil {
		return "", err
	}
	out := resp.text()
	if strings.TrimSpace(out) == "" {
		return "", errors.New("empty response from text model")
	}
	return out, nil
}

// GenerateGameMarkup asks the model for a self-contained HTML game. Any
// failure, including output that is not a whole HTML document, is returned
// as a *GenerationError.
func (c *TextClient) GenerateGameMarkup(ctx context.Context, prompt, genreHint string) (string, error) {
	genre := strings.TrimSpace(genreHint)
	if genre == "" {
		genre = "browser"
	}
	user := fmt.Sprintf("Create a %s game based on this description: \"%s\".", genre, prompt)

	raw, err := c.generate(ctx, gameSystemPrompt, user, "")
	if err != nil {
		c.logger.Error("Game generation failed", "error", err)
		return "", &GenerationError{Op: "generate game markup", Err: err}
	}

	markup := StripCodeFences(raw)
	if err := ValidateMarkup(markup); err != nil {
		c.logger.Error("Generated markup rejected", "error", err, "length", len(markup))
		return "", &GenerationError{Op: "validate game markup", Err: err}
	}
	return markup, nil
}

// GenerateTitle asks for a short title for a game with the given tags. It
// never fails: on any error it returns FallbackTitle(tags).
func (c *TextClient) GenerateTitle(ctx context.Context, tags []string) string {
	user := fmt.Sprintf("Invent a short, creative title (at most 5 words) for a browser game with these tags: %s. Reply with the title only.",
		strings.Join(tags, ", "))

	raw, err := c.generate(ctx, "", user, "")
	if err != nil {
		c.logger.Warn("Title generation failed, using fallback", "tags", tags, "error", err)
		return FallbackTitle(tags)
	}
	title := c.cleanTitle(raw)
	if title == "" {
		return FallbackTitle(tags)
	}
	return title
}

// cleanTitle keeps the first line, drops markup and surrounding quotes.
func (c *TextClient) cleanTitle(raw string) string {
	title := strings.TrimSpace(StripCodeFences(raw))
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = html.UnescapeString(c.titlePolicy.Sanitize(title))
	title = strings.Trim(title, " \t\"'`*“”‘’")
	return strings.TrimSpace(title)
}

// FallbackTitle is the title used when the model gives none.
func FallbackTitle(tags []string) string {
	if len(tags) == 0 || strings.TrimSpace(tags[0]) == "" {
		return "Untitled Game"
	}
	return fmt.Sprintf("Untitled %s Game", strings.TrimSpace(tags[0]))
}

// GenerateLoadingTips returns exactly three loading-screen tips. On any
// failure it returns a copy of FallbackTips.
func (c *TextClient) GenerateLoadingTips(ctx context.Context, title, tagsOrType string) []string {
	if strings.TrimSpace(title) == "" {
		title = "an untitled game"
	}
	user := fmt.Sprintf("A player is waiting for the game %q (%s) to be generated. "+
		"Write 3 short, fun loading-screen tips or teasers for it, each under 80 characters. "+
		"Reply with a JSON array of exactly 3 strings and nothing else.", title, tagsOrType)

	raw, err := c.generate(ctx, "", user, "application/json")
	if err != nil {
		c.logger.Warn("Tip generation failed, using fallback", "error", err)
		return fallbackTips()
	}
	tips, err := parseTips(raw)
	if err != nil {
		c.logger.Warn("Tip response unusable, using fallback", "error", err)
		return fallbackTips()
	}
	return tips
}

func parseTips(raw string) ([]string, error) {
	var decoded []string
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &decoded); err != nil {
		return nil, fmt.Errorf("decode tips: %w", err)
	}
	tips := make([]string, 0, 3)
	for _, t := range decoded {
		if t = strings.TrimSpace(t); t != "" {
			tips = append(tips, t)
		}
		if len(tips) == 3 {
			return tips, nil
		}
	}
	return nil, fmt.Errorf("got %d usable tips, want 3", len(tips))
}

func fallbackTips() []string {
	return append([]string(nil), FallbackTips...)
}
