package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestImageClient(t *testing.T, api *fakeAPI) *ImageClient {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewImageClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
}

func TestGenerateThumbnail(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	body, _ := json.Marshal(map[string]any{
		"predictions": []any{map[string]any{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(png),
			"mimeType":           "image/png",
		}},
	})
	api := &fakeAPI{body: string(body)}
	client := newTestImageClient(t, api)

	out := filepath.Join(t.TempDir(), "thumbnails", "abc.png")
	if ok := client.GenerateThumbnail(context.Background(), "a cat jumps", out); !ok {
		t.Fatal("GenerateThumbnail() returned false, want true")
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("thumbnail not written: %v", err)
	}
	if !bytes.Equal(got, png) {
		t.Errorf("thumbnail bytes = %q, want %q", got, png)
	}

	req := api.last(t)
	if req.Path != "/v1beta/models/"+DefaultImageModel+":predict" {
		t.Errorf("request path = %q", req.Path)
	}
	raw, _ := json.Marshal(req.Body)
	for _, want := range []string{`"sampleCount":1`, `"aspectRatio":"4:3"`, "pixel art", "a cat jumps"} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("request body missing %q: %s", want, raw)
		}
	}
}

func TestGenerateThumbnail_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-success status", http.StatusForbidden, `{"error":{"message":"quota"}}`},
		{"no predictions", http.StatusOK, `{"predictions":[]}`},
		{"missing payload", http.StatusOK, `{"predictions":[{"mimeType":"image/png"}]}`},
		{"unexpected shape", http.StatusOK, `{"images":["abc"]}`},
		{"invalid base64", http.StatusOK, `{"predictions":[{"bytesBase64Encoded":"!!not-base64!!"}]}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestImageClient(t, &fakeAPI{status: tt.status, body: tt.body})
			out := filepath.Join(t.TempDir(), "abc.png")

			if ok := client.GenerateThumbnail(context.Background(), "anything", out); ok {
				t.Fatal("GenerateThumbnail() returned true, want false")
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("thumbnail file exists after failure (stat err: %v)", err)
			}
		})
	}
}
