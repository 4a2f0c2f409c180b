package implementation

import (
	"context"
	"sort"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/mapper"
	"ai-tripplanner-be/internal/model"
	"ai-tripplanner-be/internal/repository/contract"
	"ai-tripplanner-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type GuideRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GuideMapper
}

func NewGuideRepository(db *gorm.DB) contract.GuideRepository {
	return &GuideRepositoryImpl{
		db:     db,
		mapper: mapper.NewGuideMapper(),
	}
}

func (r *GuideRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GuideRepositoryImpl) CreateArticle(ctx context.Context, article *entity.GuideArticle) error {
	m := r.mapper.ToModel(article)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*article = *r.mapper.ToEntity(m)
	return nil
}

func (r *GuideRepositoryImpl) CreateEmbeddings(ctx context.Context, embeddings []*entity.GuideEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.EmbeddingsToModels(embeddings)
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *GuideRepositoryImpl) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("guide_id = ?", id).
		Delete(&model.GuideEmbedding{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&model.GuideArticle{}, id).Error
}

func (r *GuideRepositoryImpl) FindArticles(ctx context.Context, specs ...specification.Specification) ([]*entity.GuideArticle, error) {
	var models []*model.GuideArticle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

// scoredGuideRow carries the article columns plus the computed distance.
type scoredGuideRow struct {
	model.GuideArticle
	Distance float64
}

func (r *GuideRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, destination string, limit int, threshold float64) ([]*contract.ScoredGuideArticle, error) {
	if limit <= 0 {
		limit = 5
	}

	var rows []scoredGuideRow

	// Cosine distance over embeddings, joined back to the owning article.
	// DISTINCT ON keeps the best chunk per article so a long article does
	// not crowd out the rest of the result set.
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (guide_articles.id)
		       guide_articles.*,
		       guide_embeddings.embedding_value <=> ? AS distance
		FROM guide_embeddings
		JOIN guide_articles ON guide_articles.id = guide_embeddings.guide_id
		WHERE guide_articles.destination = ?
		  AND guide_embeddings.deleted_at IS NULL
		  AND guide_articles.deleted_at IS NULL
		ORDER BY guide_articles.id, distance ASC
		`, pgvector.NewVector(embedding), destination).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*contract.ScoredGuideArticle, 0, len(rows))
	for i := range rows {
		score := 1.0 - rows[i].Distance
		if score < threshold {
			continue
		}
		results = append(results, &contract.ScoredGuideArticle{
			Article: r.mapper.ToEntity(&rows[i].GuideArticle),
			Score:   score,
		})
	}

	// Rows come back ordered by article id, re-rank by score.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
