package mapper

import (
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type GuideMapper struct{}

func NewGuideMapper() *GuideMapper {
	return &GuideMapper{}
}

func (m *GuideMapper) ToEntity(g *model.GuideArticle) *entity.GuideArticle {
	if g == nil {
		return nil
	}
	return &entity.GuideArticle{
		Id:          g.Id,
		Title:       g.Title,
		Url:         g.Url,
		Snippet:     g.Snippet,
		Content:     g.Content,
		Destination: g.Destination,
		CreatedAt:   g.CreatedAt,
	}
}

func (m *GuideMapper) ToModel(g *entity.GuideArticle) *model.GuideArticle {
	if g == nil {
		return nil
	}
	return &model.GuideArticle{
		Id:          g.Id,
		Title:       g.Title,
		Url:         g.Url,
		Snippet:     g.Snippet,
		Content:     g.Content,
		Destination: g.Destination,
		CreatedAt:   g.CreatedAt,
	}
}

func (m *GuideMapper) ToEntities(guides []*model.GuideArticle) []*entity.GuideArticle {
	entities := make([]*entity.GuideArticle, len(guides))
	for i, g := range guides {
		entities[i] = m.ToEntity(g)
	}
	return entities
}

func (m *GuideMapper) EmbeddingToEntity(e *model.GuideEmbedding) *entity.GuideEmbedding {
	if e == nil {
		return nil
	}
	return &entity.GuideEmbedding{
		Id:         e.Id,
		GuideId:    e.GuideId,
		Document:   e.Document,
		Embedding:  e.EmbeddingValue.Slice(),
		ChunkIndex: e.ChunkIndex,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *GuideMapper) EmbeddingToModel(e *entity.GuideEmbedding) *model.GuideEmbedding {
	if e == nil {
		return nil
	}
	return &model.GuideEmbedding{
		Id:             e.Id,
		GuideId:        e.GuideId,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.Embedding),
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *GuideMapper) EmbeddingsToModels(embeddings []*entity.GuideEmbedding) []*model.GuideEmbedding {
	models := make([]*model.GuideEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.EmbeddingToModel(e)
	}
	return models
}
