package contract

import (
	"context"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredGuideArticle pairs an article with its cosine similarity score (0-1).
type ScoredGuideArticle struct {
	Article *entity.GuideArticle
	Score   float64
}

type GuideRepository interface {
	CreateArticle(ctx context.Context, article *entity.GuideArticle) error
	CreateEmbeddings(ctx context.Context, embeddings []*entity.GuideEmbedding) error
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	FindArticles(ctx context.Context, specs ...specification.Specification) ([]*entity.GuideArticle, error)

	// SearchSimilar runs a cosine-distance nearest-neighbour search over
	// guide embeddings, joined back to their articles and filtered by
	// destination. Articles below threshold are dropped.
	SearchSimilar(ctx context.Context, embedding []float32, destination string, limit int, threshold float64) ([]*ScoredGuideArticle, error)
}
