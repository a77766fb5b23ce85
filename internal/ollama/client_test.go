package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

func TestGenerateSendsOptions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"response": "Podsumowanie raportu.", "done": true})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "llama3.2:latest", ContextWindow: 4096})
	out, err := c.Generate(context.Background(), "prompt text", GenerateOptions{MaxTokens: 600, Temperature: 0})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "Podsumowanie raportu." {
		t.Errorf("got %q", out)
	}
	if got["model"] != "llama3.2:latest" {
		t.Errorf("model=%v", got["model"])
	}
	if got["stream"] != false {
		t.Errorf("stream=%v", got["stream"])
	}
	opts, ok := got["options"].(map[string]any)
	if !ok {
		t.Fatalf("options missing: %v", got)
	}
	if opts["num_predict"] != float64(600) {
		t.Errorf("num_predict=%v", opts["num_predict"])
	}
	if opts["num_ctx"] != float64(4096) {
		t.Errorf("num_ctx=%v", opts["num_ctx"])
	}
	// Temperature zero must be sent explicitly, not omitted.
	if temp, present := opts["temperature"]; !present || temp != float64(0) {
		t.Errorf("temperature=%v present=%v", temp, present)
	}
}

func TestGenerateModelOverride(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		gotModel, _ = req["model"].(string)
		json.NewEncoder(w).Encode(map[string]any{"response": "ok", "done": true})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "default-model"})
	if _, err := c.Generate(context.Background(), "p", GenerateOptions{Model: "mistral:7b"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotModel != "mistral:7b" {
		t.Errorf("model=%q", gotModel)
	}
}

func TestEmbedAndBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("path=%s", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "nomic-embed-text" {
			t.Errorf("model=%v", req["model"])
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	vec, err := c.Embed(context.Background(), "chunk text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("got %v", vec)
	}

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 {
		t.Errorf("got %d embeddings", len(vecs))
	}
}

func TestEmbedEmptyVectorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{}})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.Embed(context.Background(), "text"); err == nil {
		t.Error("expected error for empty embedding")
	}
}

func TestListModelsAndHasModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path=%s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"models": []map[string]any{
			{"name": "llama3.2:latest", "size": 2019393189},
			{"name": "nomic-embed-text:latest", "size": 274302450},
		}})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	list, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(list) != 2 || list[0].Name != "llama3.2:latest" {
		t.Errorf("got %+v", list)
	}

	has, err := c.HasModel(context.Background(), "llama3.2:latest")
	if err != nil || !has {
		t.Errorf("has=%v err=%v", has, err)
	}
	has, err = c.HasModel(context.Background(), "missing:latest")
	if err != nil || has {
		t.Errorf("has=%v err=%v", has, err)
	}
}

func TestPull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Errorf("path=%s", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["name"] != "llama3.2:latest" {
			t.Errorf("name=%v", req["name"])
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if err := c.Pull(context.Background(), "llama3.2:latest"); err != nil {
		t.Errorf("Pull: %v", err)
	}
}

func TestUnreachableServerWrapsErrModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.Generate(context.Background(), "p", GenerateOptions{}); !errors.Is(err, models.ErrModelUnavailable) {
		t.Errorf("Generate err=%v, want ErrModelUnavailable", err)
	}
	if _, err := c.Embed(context.Background(), "t"); !errors.Is(err, models.ErrModelUnavailable) {
		t.Errorf("Embed err=%v, want ErrModelUnavailable", err)
	}
	if err := c.Ping(context.Background()); !errors.Is(err, models.ErrModelUnavailable) {
		t.Errorf("Ping err=%v, want ErrModelUnavailable", err)
	}
}

func TestMissingModelWrapsErrModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model 'nope' not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "nope"})
	if _, err := c.Generate(context.Background(), "p", GenerateOptions{}); !errors.Is(err, models.ErrModelUnavailable) {
		t.Errorf("err=%v, want ErrModelUnavailable", err)
	}
}

func TestServerErrorIsNotModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), "p", GenerateOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, models.ErrModelUnavailable) {
		t.Errorf("500 should not classify as model unavailable: %v", err)
	}
}
