package entity

import (
	"time"

	"github.com/google/uuid"
)

// GuideArticle is a destination guide used as supporting context for
// outline and chunk generation.
type GuideArticle struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Url         string    `json:"url"`
	Snippet     string    `json:"snippet"`
	Content     string    `json:"content,omitempty"`
	Destination string    `json:"destination"`
	Score       float32   `json:"score,omitempty"` // Similarity score when returned by retrieval
	CreatedAt   time.Time `json:"created_at"`
}

// GuideEmbedding is one embedded chunk of a guide article.
type GuideEmbedding struct {
	Id         uuid.UUID
	GuideId    uuid.UUID
	Document   string
	Embedding  []float32
	ChunkIndex int
	CreatedAt  time.Time
}
