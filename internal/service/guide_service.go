package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/pkg/logger"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/retrieval"

	"github.com/google/uuid"
)

type IGuideService interface {
	// Ingest stores a guide article and queues it for embedding.
	Ingest(ctx context.Context, req *dto.IngestGuideRequest) (*dto.IngestGuideResponse, error)

	// Search runs a semantic search over ingested guides.
	Search(ctx context.Context, destination, query string) ([]*dto.GuideSearchResponse, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

type guideService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	retriever        *retrieval.Retriever
	log              logger.ILogger
}

func NewGuideService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	retriever *retrieval.Retriever,
	log logger.ILogger,
) IGuideService {
	return &guideService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		retriever:        retriever,
		log:              log,
	}
}

func (s *guideService) Ingest(ctx context.Context, req *dto.IngestGuideRequest) (*dto.IngestGuideResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	article := entity.GuideArticle{
		Id:          uuid.New(),
		Title:       req.Title,
		Url:         req.Url,
		Snippet:     req.Snippet,
		Content:     req.Content,
		Destination: req.Destination,
		CreatedAt:   time.Now(),
	}
	if err := uow.GuideRepository().CreateArticle(ctx, &article); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishEmbedGuideMessage{
		GuideId: article.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.IngestGuideResponse{Id: article.Id}, nil
}

func (s *guideService) Search(ctx context.Context, destination, query string) ([]*dto.GuideSearchResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	articles := s.retriever.Search(ctx, uow, destination, query)

	res := make([]*dto.GuideSearchResponse, 0, len(articles))
	for _, article := range articles {
		score := float64(article.Score)
		res = append(res, &dto.GuideSearchResponse{
			Id:             article.Id,
			Title:          article.Title,
			Url:            article.Url,
			Snippet:        article.Snippet,
			Destination:    article.Destination,
			RelevanceScore: &score,
			CreatedAt:      article.CreatedAt,
		})
	}
	return res, nil
}

func (s *guideService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	articles, err := uow.GuideRepository().FindArticles(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return nil
	}
	return uow.GuideRepository().DeleteArticle(ctx, id)
}
