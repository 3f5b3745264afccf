// Package knowledge はスキーム情報のベクトル索引と、チャット用の参照情報検索を提供します。
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrasar-api/pkg/llm"
	"agrasar-api/pkg/models"
)

// 既定の検索件数と類似度の下限
const (
	DefaultTopK     = 3
	DefaultMinScore = 0.35
)

// schemeNamespace はスキームIDから決定的なポイントIDを作るための名前空間です。
// 同じスキームを再索引しても重複しません。
var schemeNamespace = uuid.MustParse("6f1c1d9e-3b0a-4d8f-9a57-2f4f1f0c8a11")

// Document は索引に保存する1件のテキストです。
type Document struct {
	ID       string
	SourceID string
	Title    string
	Text     string
}

// Match は検索結果です。
type Match struct {
	Document
	Score float32
}

// VectorIndex はベクトルの保存と近傍検索を行うストアです。
type VectorIndex interface {
	EnsureCollection(ctx context.Context, dimensions uint64) error
	Upsert(ctx context.Context, docs []Document, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, limit uint64) ([]Match, error)
}

// SchemeDocument はスキームを索引用のドキュメントに変換します。
func SchemeDocument(s models.Scheme) Document {
	return Document{
		ID:       uuid.NewSHA1(schemeNamespace, []byte(s.ID)).String(),
		SourceID: s.ID,
		Title:    s.Name,
		Text:     s.Text(),
	}
}

// Retriever はクエリを埋め込み、類似するスキーム情報を返します。
type Retriever struct {
	embedder llm.Embedder
	index    VectorIndex
	topK     uint64
	minScore float32
	logger   *zap.Logger
}

// NewRetriever は新しいRetrieverを作成します。
func NewRetriever(embedder llm.Embedder, index VectorIndex, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     DefaultTopK,
		minScore: DefaultMinScore,
		logger:   logger,
	}
}

// IndexSchemes は全スキームを埋め込んで索引に登録し、登録件数を返します。
func (r *Retriever) IndexSchemes(ctx context.Context, schemes []models.Scheme) (int, error) {
	if len(schemes) == 0 {
		return 0, nil
	}
	docs := make([]Document, 0, len(schemes))
	vectors := make([][]float32, 0, len(schemes))
	for _, s := range schemes {
		doc := SchemeDocument(s)
		vector, err := r.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return 0, fmt.Errorf("embed scheme %s: %w", s.ID, err)
		}
		docs = append(docs, doc)
		vectors = append(vectors, vector)
	}

	// 次元数は埋め込みモデルによって異なるため、最初のベクトルから決める
	if err := r.index.EnsureCollection(ctx, uint64(len(vectors[0]))); err != nil {
		return 0, err
	}
	if err := r.index.Upsert(ctx, docs, vectors); err != nil {
		return 0, err
	}
	r.logger.Info("スキームを索引に登録しました", zap.Int("count", len(docs)))
	return len(docs), nil
}

// Retrieve は質問に関連するスキーム情報の本文を類似度順に返します。
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := r.index.Search(ctx, vector, r.topK)
	if err != nil {
		return nil, err
	}

	snippets := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Score < r.minScore {
			continue
		}
		snippets = append(snippets, m.Text)
	}
	r.logger.Debug("参照情報を検索しました", zap.Int("matches", len(matches)), zap.Int("used", len(snippets)))
	return snippets, nil
}
