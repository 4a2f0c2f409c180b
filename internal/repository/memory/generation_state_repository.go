package memory

import (
	"time"

	"ai-tripplanner-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type GenerationStateRepository struct {
	cache *cache.Cache
}

func NewGenerationStateRepository() *GenerationStateRepository {
	// Generations finish in minutes. One hour of retention covers clients
	// that reconnect to poll a finished job, purge runs every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &GenerationStateRepository{
		cache: c,
	}
}

func (r *GenerationStateRepository) Save(state *store.GenerationState) {
	r.cache.Set(state.PlanID, state, cache.DefaultExpiration)
}

func (r *GenerationStateRepository) Get(planID string) (*store.GenerationState, bool) {
	if x, found := r.cache.Get(planID); found {
		return x.(*store.GenerationState), true
	}
	return nil, false
}
