package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestGuideRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Url         string `json:"url" validate:"omitempty,url"`
	Snippet     string `json:"snippet" validate:"max=1000"`
	Content     string `json:"content" validate:"required"`
	Destination string `json:"destination" validate:"required,max=255"`
}

type IngestGuideResponse struct {
	Id uuid.UUID `json:"id"`
}

// PublishEmbedGuideMessage is the embed-pipeline message emitted after a
// guide article is ingested.
type PublishEmbedGuideMessage struct {
	GuideId uuid.UUID `json:"guide_id"`
}

type GuideSearchResponse struct {
	Id             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Url            string    `json:"url"`
	Snippet        string    `json:"snippet"`
	Destination    string    `json:"destination"`
	RelevanceScore *float64  `json:"relevance_score,omitempty"` // 0.0-1.0
	CreatedAt      time.Time `json:"created_at"`
}
