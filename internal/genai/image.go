package genai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"path/filepath"

	"slopgames/pkg/fsutils"
)

// Wire types of the Imagen predict endpoint.
type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// ImageClient wraps the Imagen model used for thumbnails.
type ImageClient struct {
	transport
}

// NewImageClient creates an image client. A nil logger discards logs.
func NewImageClient(cfg Config, logger *slog.Logger) *ImageClient {
	return &ImageClient{transport: newTransport(cfg, logger)}
}

// ThumbnailPrompt wraps promptText in the fixed pixel-art framing.
func ThumbnailPrompt(promptText string) string {
	return fmt.Sprintf("A pixel art style thumbnail for a browser game about: %s. Colorful, engaging, retro game style.", promptText)
}

// GenerateThumbnail renders one image for promptText and writes it to
// outputPath. It reports whether a file was written; failures are logged.
func (c *ImageClient) GenerateThumbnail(ctx context.Context, promptText, outputPath string) bool {
	req := predictRequest{
		Instances:  []predictInstance{{Prompt: ThumbnailPrompt(promptText)}},
		Parameters: predictParameters{SampleCount: 1, AspectRatio: "4:3"},
	}

	var resp predictResponse
	if err := c.postJSON(ctx, c.modelURL(c.config.ImageModel, "predict"), req, &resp); err != nil {
		c.logger.Warn("Thumbnail generation failed", "error", err)
		return false
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		c.logger.Warn("Unexpected image response structure", "predictions", len(resp.Predictions))
		return false
	}

	img, err := base64.StdEncoding.DecodeString(resp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		c.logger.Warn("Thumbnail payload is not valid base64", "error", err)
		return false
	}
	if err := fsutils.CreateDir(filepath.Dir(outputPath)); err != nil {
		c.logger.Warn("Could not create thumbnail directory", "path", outputPath, "error", err)
		return false
	}
	if err := fsutils.WriteFileAtomic(outputPath, img); err != nil {
		c.logger.Warn("Could not write thumbnail", "path", outputPath, "error", err)
		return false
	}
	c.logger.Debug("Thumbnail written", "path", outputPath, "bytes", len(img))
	return true
}
