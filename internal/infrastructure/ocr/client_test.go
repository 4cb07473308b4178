package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkotenko/docstore/internal/core/domain"
)

func TestRecognizeEncodesImageAndTrimsText(t *testing.T) {
	var capturedImage string
	var capturedMime string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/recognize" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedImage, _ = payload["image"].(string)
		capturedMime, _ = payload["mime_type"].(string)
		_, _ = w.Write([]byte(`{"text":"  recognized text \n"}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	text, err := client.Recognize(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if text != "recognized text" {
		t.Fatalf("text = %q", text)
	}
	if capturedMime != "image/png" {
		t.Fatalf("mime = %q", capturedMime)
	}
	if capturedImage != base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("image not base64 encoded: %q", capturedImage)
	}
}

func TestRecognizeSurfacesSidecarErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "tesseract worker crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	_, err := client.Recognize(context.Background(), []byte("img"), "image/png")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "tesseract worker crashed") {
		t.Fatalf("expected sidecar body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("500 from the sidecar should surface as a temporary error, got %v", err)
	}
}
