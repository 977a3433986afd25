package knowledge

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	pkgai "github.com/johnquangdev/clinic-assistant/pkg/ai"
	"github.com/johnquangdev/clinic-assistant/pkg/config"
)

// Chunk is one retrievable slice of a protocol document
type Chunk struct {
	Source string
	Text   string
	vector []float32
}

// Retriever maintains an in-memory semantic index over the clinical protocol
// documents. The index is built at most once per process and is read-only
// afterwards, so concurrent Retrieve calls need no locking.
type Retriever struct {
	embedder     pkgai.Embedder
	documentsDir string
	chunkSize    int
	chunkOverlap int
	topK         int
	logger       *zap.Logger

	initOnce sync.Once
	initErr  error
	chunks   []Chunk
}

// NewRetriever creates a retriever over the configured documents directory
func NewRetriever(embedder pkgai.Embedder, cfg *config.KnowledgeConfig, logger *zap.Logger) *Retriever {
	return &Retriever{
		embedder:     embedder,
		documentsDir: cfg.DocumentsDir,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		topK:         cfg.TopK,
		logger:       logger,
	}
}

// Initialize builds the index on first call. Later calls are no-ops and
// observe the result of the first build, even under concurrent first access.
// An empty documents directory is not an error; retrieval just returns
// nothing until the process restarts with documents present.
func (r *Retriever) Initialize(ctx context.Context) error {
	r.initOnce.Do(func() {
		r.initErr = r.buildIndex(ctx)
	})
	return r.initErr
}

// Retrieve returns up to topK chunks ranked by embedding similarity to the
// query. An empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Chunk, error) {
	if err := r.Initialize(ctx); err != nil {
		return nil, err
	}

	if len(r.chunks) == 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(r.chunks))
	for i := range r.chunks {
		ranked = append(ranked, scored{idx: i, score: cosineSimilarity(queryVec, r.chunks[i].vector)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	k := r.topK
	if k <= 0 {
		k = 3
	}
	if k > len(ranked) {
		k = len(ranked)
	}

	results := make([]Chunk, 0, k)
	for _, s := range ranked[:k] {
		results = append(results, r.chunks[s.idx])
	}
	return results, nil
}

func (r *Retriever) buildIndex(ctx context.Context) error {
	entries, err := os.ReadDir(r.documentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			if r.logger != nil {
				r.logger.Warn("⚠️ Knowledge directory missing, retrieval disabled",
					zap.String("dir", r.documentsDir),
				)
			}
			return nil
		}
		return fmt.Errorf("failed to read knowledge directory: %w", err)
	}

	var chunks []Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(r.documentsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read document %s: %w", entry.Name(), err)
		}

		for _, text := range chunkText(string(content), r.chunkSize, r.chunkOverlap) {
			chunks = append(chunks, Chunk{Source: entry.Name(), Text: text})
		}
	}

	if len(chunks) == 0 {
		if r.logger != nil {
			r.logger.Warn("⚠️ No protocol documents found, retrieval will return empty results",
				zap.String("dir", r.documentsDir),
			)
		}
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed corpus: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i := range chunks {
		chunks[i].vector = vectors[i]
	}
	r.chunks = chunks

	if r.logger != nil {
		r.logger.Info("✅ Knowledge index built",
			zap.Int("chunk_count", len(chunks)),
			zap.String("dir", r.documentsDir),
		)
	}
	return nil
}

// chunkText splits text into overlapping rune windows. Overlap keeps
// sentences that straddle a boundary retrievable from both sides.
func chunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var parts []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return parts
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
