package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GameRecord is one catalog entry. The generated markup lives next to the
// catalog as <ID>.html; the thumbnail, when present, as <ID>.png.
type GameRecord struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"` // Final prompt sent to the text model
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	Type      string    `json:"type"`
	Date      time.Time `json:"date"`
	Thumbnail *string   `json:"thumbnail"` // URL path, null when no image was generated
}

// HasTag reports whether the record carries the tag, ignoring case.
func (g *GameRecord) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}

// Suggestion is a tag/title pairing shown on the landing page. Not persisted.
type Suggestion struct {
	Tags  []string `json:"tags"`
	Title string   `json:"title"`
}

// CreateRequest carries the user input of the submit and create steps.
type CreateRequest struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Tags   string `json:"tags"` // Comma separated
}

// UnmarshalJSON accepts tags either as a comma separated string or as an
// array of strings.
func (r *CreateRequest) UnmarshalJSON(data []byte) error {
	type plain CreateRequest
	var aux struct {
		plain
		Tags json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CreateRequest(aux.plain)
	r.Tags = ""

	raw := bytes.TrimSpace(aux.Tags)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '[' {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		r.Tags = strings.Join(list, ",")
		return nil
	}
	if err := json.Unmarshal(raw, &r.Tags); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	return nil
}
