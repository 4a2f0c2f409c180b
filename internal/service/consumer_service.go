package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/pkg/logger"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/embedding"
	"ai-tripplanner-be/pkg/plancache"
	"ai-tripplanner-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Chunking parameters for guide embeddings. 1500 characters keeps each
// chunk well inside embedding context limits, the overlap preserves
// sentence continuity at boundaries.
const (
	guideChunkSize    = 1500
	guideChunkOverlap = 200
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the guide embedding topic: split the article,
// embed every chunk, replace the stored vectors, then invalidate cached
// outlines for the destination so new generations see the guide.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	outlineCache      *plancache.RedisOutlineCache
	log               logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	outlineCache *plancache.RedisOutlineCache,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		outlineCache:      outlineCache,
		log:               log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedGuideMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("ConsumerService", "failed to unmarshal embed message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Invalid payloads never become valid, drop them
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	articles, err := uow.GuideRepository().FindArticles(ctx, specification.ByID{ID: payload.GuideId})
	if err != nil {
		cs.log.Error("ConsumerService", "failed to load guide article", map[string]interface{}{
			"guide_id": payload.GuideId,
			"error":    err.Error(),
		})
		msg.Nack()
		return
	}
	if len(articles) == 0 {
		// Deleted between ingest and embed, nothing to do
		msg.Ack()
		return
	}
	article := articles[0]

	document := fmt.Sprintf("Guide: %s\nDestination: %s\n\n%s", article.Title, article.Destination, article.Content)
	chunks := utils.SplitText(document, guideChunkSize, guideChunkOverlap)

	var embeddings []*entity.GuideEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			cs.log.Error("ConsumerService", "chunk embedding failed", map[string]interface{}{
				"guide_id": payload.GuideId,
				"chunk":    i,
				"error":    err.Error(),
			})
			msg.Nack()
			return
		}
		embeddings = append(embeddings, &entity.GuideEmbedding{
			Id:         uuid.New(),
			GuideId:    article.Id,
			Document:   chunk,
			Embedding:  res.Embedding.Values,
			ChunkIndex: i,
			CreatedAt:  time.Now(),
		})
	}

	if err := uow.GuideRepository().CreateEmbeddings(ctx, embeddings); err != nil {
		cs.log.Error("ConsumerService", "failed to store embeddings", map[string]interface{}{
			"guide_id": payload.GuideId,
			"error":    err.Error(),
		})
		msg.Nack()
		return
	}

	// New guide content changes what retrieval would surface, so cached
	// outlines for the destination are stale now.
	if cs.outlineCache != nil {
		if err := cs.outlineCache.InvalidateDestination(ctx, article.Destination); err != nil {
			cs.log.Warn("ConsumerService", "outline cache invalidation failed", map[string]interface{}{
				"destination": article.Destination,
				"error":       err.Error(),
			})
		}
	}

	cs.log.Info("ConsumerService", "guide embedded", map[string]interface{}{
		"guide_id": payload.GuideId,
		"chunks":   len(chunks),
	})
	msg.Ack()
}
