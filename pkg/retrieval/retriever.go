package retrieval

import (
	"context"
	"fmt"
	"strings"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/pkg/logger"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/embedding"
)

// Config encapsulates guide search parameters.
type Config struct {
	Threshold float64
	TopK      int
}

func DefaultConfig() Config {
	return Config{
		Threshold: 0.35,
		TopK:      5,
	}
}

// Retriever looks up destination guide context for generation prompts.
// Retrieval is best effort: any failure returns an empty result so the
// generation path proceeds ungrounded rather than failing.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	config            Config
	log               logger.ILogger
}

func NewRetriever(embeddingProvider embedding.EmbeddingProvider, config Config, log logger.ILogger) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		config:            config,
		log:               log,
	}
}

// Search embeds the query and runs a similarity search over guide chunks
// for the destination.
func (r *Retriever) Search(ctx context.Context, uow unitofwork.UnitOfWork, destination, query string) []*entity.GuideArticle {
	if r.embeddingProvider == nil {
		return nil
	}

	embeddingRes, err := r.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		r.log.Warn("retrieval", "query embedding failed, continuing without guide context", map[string]interface{}{
			"destination": destination,
			"error":       err.Error(),
		})
		return nil
	}

	scored, err := uow.GuideRepository().SearchSimilar(ctx, embeddingRes.Embedding.Values, destination, r.config.TopK, r.config.Threshold)
	if err != nil {
		r.log.Warn("retrieval", "guide search failed, continuing without guide context", map[string]interface{}{
			"destination": destination,
			"error":       err.Error(),
		})
		return nil
	}

	articles := make([]*entity.GuideArticle, 0, len(scored))
	for _, s := range scored {
		article := s.Article
		article.Score = float32(s.Score)
		articles = append(articles, article)
	}

	r.log.Debug("retrieval", "guide context resolved", map[string]interface{}{
		"destination": destination,
		"articles":    len(articles),
	})
	return articles
}

// BuildContext renders retrieved articles into a prompt section. Returns
// an empty string when nothing was retrieved.
func BuildContext(articles []*entity.GuideArticle) string {
	if len(articles) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant destination guides:\n")
	for _, a := range articles {
		fmt.Fprintf(&b, "- %s (%s): %s\n", a.Title, a.Url, a.Snippet)
	}
	return b.String()
}
