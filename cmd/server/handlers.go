package main

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"slopgames/internal/generator"
	"slopgames/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"
)

const (
	siteTitle            = "SLOPGAMES - Procedural Game Generator"
	suggestionCount      = 5
	maxCreateRequestSize = 64 << 10
	createFailedMessage  = "Failed to generate game. Please try again."
)

// newTemplateData creates the map every page starts from: CSRF token, page
// title and the category navigation.
func (app *application) newTemplateData(r *http.Request, title string) map[string]any {
	if title == "" {
		title = siteTitle
	}
	return map[string]any{
		"CSRFToken":  nosurf.Token(r),
		"Title":      title,
		"Categories": generator.Categories,
		"Query":      "",
	}
}

// render executes a cached page; on failure the client gets a plain 500.
func (app *application) render(w http.ResponseWriter, status int, page string, data map[string]any) {
	if err := app.templates.Render(w, status, page, data); err != nil {
		app.logger.Error("Error rendering template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (app *application) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := app.newTemplateData(r, "Error - SLOPGAMES")
	data["Message"] = message
	app.render(w, status, "error.html", data)
}

func (app *application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("Error writing JSON response", "error", err)
	}
}

// homeHandler serves the landing page: catalog plus fresh suggestions.
func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r, "")
	data["Games"] = app.store.List()
	data["Suggestions"] = app.manager.Suggestions(r.Context(), suggestionCount)
	app.render(w, http.StatusOK, "index.html", data)
}

// searchHandler lists catalog games matching ?q=.
func (app *application) searchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := app.newTemplateData(r, "Search - SLOPGAMES")
	data["Query"] = query
	data["Results"] = app.store.Search(query)
	app.render(w, http.StatusOK, "search.html", data)
}

// categoryHandler lists catalog games of one genre.
func (app *application) categoryHandler(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "name")
	data := app.newTemplateData(r, category+" - SLOPGAMES")
	data["Category"] = category
	data["Results"] = app.store.ByCategory(category)
	app.render(w, http.StatusOK, "category.html", data)
}

// playHandler embeds a generated game.
func (app *application) playHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	game, markup, ok := app.manager.Game(id)
	if !ok {
		app.logger.Info("Game not found", "id", id)
		app.renderError(w, r, http.StatusNotFound, "Game not found.")
		return
	}

	data := app.newTemplateData(r, game.Title+" - SLOPGAMES")
	data["Game"] = game
	data["GameCode"] = markup
	app.render(w, http.StatusOK, "play.html", data)
}

// generateHandler shows the loading screen with tips; the page's script then
// calls the create API.
func (app *application) generateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.logger.Error("Error parsing generate form", "error", err)
		app.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}
	input := formRequest(r)

	data := app.newTemplateData(r, "Generating... - SLOPGAMES")
	data["Input"] = input
	data["Tips"] = app.manager.LoadingTips(r.Context(), input)
	app.render(w, http.StatusOK, "loading.html", data)
}

// createGameHandler runs the full creation flow and answers {"id": ...}.
func (app *application) createGameHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateRequest(w, r)
	if err != nil {
		app.logger.Warn("Invalid create request", "error", err)
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body."})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.Title) == "" {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "A prompt or title is required."})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		req.Prompt = req.Title
	}

	game, err := app.manager.CreateGame(r.Context(), req)
	if err != nil {
		app.logger.Error("Game creation failed", "error", err)
		app.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": createFailedMessage})
		return
	}
	app.writeJSON(w, http.StatusOK, map[string]string{"id": game.ID})
}

// listGamesHandler returns the catalog as JSON.
func (app *application) listGamesHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, app.store.List())
}

func formRequest(r *http.Request) model.CreateRequest {
	return model.CreateRequest{
		Prompt: r.PostForm.Get("prompt"),
		Type:   r.PostForm.Get("type"),
		Title:  r.PostForm.Get("title"),
		Tags:   r.PostForm.Get("tags"),
	}
}

// decodeCreateRequest accepts a JSON body or a urlencoded/multipart form.
func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (model.CreateRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateRequestSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req model.CreateRequest
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			return model.CreateRequest{}, err
		}
		return req, nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxCreateRequestSize); err != nil {
			return model.CreateRequest{}, err
		}
	} else if err := r.ParseForm(); err != nil {
		return model.CreateRequest{}, err
	}
	if len(r.PostForm) == 0 {
		return model.CreateRequest{}, errors.New("empty form")
	}
	return formRequest(r), nil
}
