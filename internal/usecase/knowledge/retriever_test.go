package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/johnquangdev/clinic-assistant/pkg/config"
)

// keywordEmbedder maps texts onto axis-aligned vectors by keyword so ranking
// is fully deterministic in tests
type keywordEmbedder struct {
	mu         sync.Mutex
	batchCalls int
	failBatch  bool
}

func (e *keywordEmbedder) vectorFor(text string) []float32 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "dạ dày"):
		return []float32{1, 0, 0}
	case strings.Contains(lower, "huyết áp"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.vectorFor(text), nil
}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batchCalls++
	failed := e.failBatch
	e.mu.Unlock()
	if failed {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vectorFor(text)
	}
	return out, nil
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestRetriever(embedder *keywordEmbedder, dir string, topK int) *Retriever {
	return NewRetriever(embedder, &config.KnowledgeConfig{
		DocumentsDir: dir,
		ChunkSize:    1000,
		ChunkOverlap: 200,
		TopK:         topK,
	}, nil)
}

func TestRetrieve_RanksBySimilarity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "gastritis.md", "Phác đồ viêm dạ dày: PPI liều chuẩn.")
	writeDoc(t, dir, "hypertension.txt", "Phác đồ tăng huyết áp: amlodipine 5mg.")

	r := newTestRetriever(&keywordEmbedder{}, dir, 1)

	chunks, err := r.Retrieve(context.Background(), "bệnh nhân đau dạ dày")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk with topK=1, got %d", len(chunks))
	}
	if chunks[0].Source != "gastritis.md" {
		t.Fatalf("expected gastritis.md ranked first, got %s", chunks[0].Source)
	}
}

func TestRetrieve_TopKCapsResults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "tài liệu một")
	writeDoc(t, dir, "b.txt", "tài liệu hai")
	writeDoc(t, dir, "c.txt", "tài liệu ba")

	r := newTestRetriever(&keywordEmbedder{}, dir, 2)

	chunks, err := r.Retrieve(context.Background(), "tài liệu")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks with topK=2, got %d", len(chunks))
	}
}

func TestRetrieve_EmptyCorpus(t *testing.T) {
	t.Parallel()

	r := newTestRetriever(&keywordEmbedder{}, t.TempDir(), 3)

	if err := r.Initialize(context.Background()); err != nil {
		t.Fatalf("empty corpus must initialize cleanly: %v", err)
	}
	chunks, err := r.Retrieve(context.Background(), "viêm dạ dày")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestRetrieve_MissingDirectory(t *testing.T) {
	t.Parallel()

	r := newTestRetriever(&keywordEmbedder{}, filepath.Join(t.TempDir(), "does-not-exist"), 3)

	chunks, err := r.Retrieve(context.Background(), "viêm dạ dày")
	if err != nil {
		t.Fatalf("missing directory must not be an error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestRetrieve_BlankQuery(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "tài liệu một")

	r := newTestRetriever(&keywordEmbedder{}, dir, 3)

	chunks, err := r.Retrieve(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank query, got %d", len(chunks))
	}
}

func TestInitialize_RunsOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "tài liệu một")

	embedder := &keywordEmbedder{}
	r := newTestRetriever(embedder, dir, 3)

	for i := 0; i < 3; i++ {
		if err := r.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize %d failed: %v", i, err)
		}
	}
	if embedder.batchCalls != 1 {
		t.Fatalf("expected a single corpus embedding call, got %d", embedder.batchCalls)
	}
}

func TestInitialize_FailureIsSticky(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "tài liệu một")

	embedder := &keywordEmbedder{failBatch: true}
	r := newTestRetriever(embedder, dir, 3)

	if err := r.Initialize(context.Background()); err == nil {
		t.Fatal("expected initialization error")
	}
	// The failed build is not retried; later calls observe the same error
	if err := r.Initialize(context.Background()); err == nil {
		t.Fatal("expected sticky initialization error")
	}
	if embedder.batchCalls != 1 {
		t.Fatalf("expected a single build attempt, got %d", embedder.batchCalls)
	}
}

func TestBuildIndex_IgnoresNonTextFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "notes.md", "Phác đồ viêm dạ dày")
	writeDoc(t, dir, "audio.mp3", "not a document")
	writeDoc(t, dir, "data.json", `{"ignored": true}`)

	r := newTestRetriever(&keywordEmbedder{}, dir, 10)

	chunks, err := r.Retrieve(context.Background(), "viêm dạ dày")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Source != "notes.md" {
		t.Fatalf("expected only notes.md indexed, got %v", chunks)
	}
}

func TestChunkText(t *testing.T) {
	t.Parallel()

	t.Run("short text is one chunk", func(t *testing.T) {
		parts := chunkText("ngắn gọn", 100, 20)
		if len(parts) != 1 || parts[0] != "ngắn gọn" {
			t.Fatalf("unexpected chunks %v", parts)
		}
	})

	t.Run("empty text yields nothing", func(t *testing.T) {
		if parts := chunkText("   ", 100, 20); parts != nil {
			t.Fatalf("expected nil, got %v", parts)
		}
	})

	t.Run("overlapping windows cover the whole text", func(t *testing.T) {
		text := strings.Repeat("a", 25)
		parts := chunkText(text, 10, 4)
		if len(parts) == 0 {
			t.Fatal("expected chunks")
		}
		// Windows step by size-overlap; each starts 6 runes after the last
		if parts[0] != strings.Repeat("a", 10) {
			t.Fatalf("unexpected first chunk %q", parts[0])
		}
		last := parts[len(parts)-1]
		if !strings.HasSuffix(text, last) {
			t.Fatalf("last chunk %q must end the text", last)
		}
		total := 0
		for _, p := range parts {
			total += len(p)
		}
		if total < len(text) {
			t.Fatal("chunks must cover the full text")
		}
	})

	t.Run("multibyte runes split on rune boundaries", func(t *testing.T) {
		text := strings.Repeat("đau dạ dày ", 20)
		for _, p := range chunkText(text, 30, 10) {
			if !strings.HasPrefix(text, p) && !strings.Contains(text, p) {
				t.Fatalf("chunk %q is not a substring of the input", p)
			}
		}
	})
}
