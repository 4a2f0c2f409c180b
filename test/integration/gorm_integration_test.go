package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.SubscriptionRepository())
	assert.NotNil(t, uow.PlanRepository())
	assert.NotNil(t, uow.GuideRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Plan Repository", func(t *testing.T) {
		count, err := uow.PlanRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Saved plan count: %d", count)
	})

	t.Run("Check Atomic Quota Consume", func(t *testing.T) {
		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Role:     entity.UserRoleUser,
			Status:   entity.UserStatusActive,
		}

		ctx := context.Background()
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)
		defer uow.UserRepository().Delete(ctx, userId)

		// Limit 2: two consumes pass, the third is rejected without error.
		for i := 0; i < 2; i++ {
			ok, err := uow.UserRepository().ConsumeFeatureIfBelow(ctx, userId, entity.FeaturePlanGeneration, 2)
			assert.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := uow.UserRepository().ConsumeFeatureIfBelow(ctx, userId, entity.FeaturePlanGeneration, 2)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Check Ticket Consume Order", func(t *testing.T) {
		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Ticket Test User",
			Role:     entity.UserRoleUser,
			Status:   entity.UserStatusActive,
		}

		ctx := context.Background()
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)
		defer uow.UserRepository().Delete(ctx, userId)

		validUntil := time.Now().Add(24 * time.Hour)
		ticket := &entity.GenerationTicket{
			Id:             uuid.New(),
			UserId:         userId,
			Feature:        entity.FeaturePlanGeneration,
			GrantedCount:   1,
			RemainingCount: 1,
			Status:         entity.TicketStatusActive,
			ValidUntil:     &validUntil,
			SourceType:     "ticket_pack",
		}
		err = uow.TicketRepository().Create(ctx, ticket)
		assert.NoError(t, err)

		remaining, err := uow.TicketRepository().TotalRemaining(ctx, userId, entity.FeaturePlanGeneration)
		assert.NoError(t, err)
		assert.Equal(t, 1, remaining)

		ok, err := uow.TicketRepository().ConsumeOne(ctx, userId, entity.FeaturePlanGeneration)
		assert.NoError(t, err)
		assert.True(t, ok)

		// The single unit is spent, the second consume finds nothing.
		ok, err = uow.TicketRepository().ConsumeOne(ctx, userId, entity.FeaturePlanGeneration)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Check Plan Lifecycle Roundtrip", func(t *testing.T) {
		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Plan Test User",
			Role:     entity.UserRoleUser,
			Status:   entity.UserStatusActive,
		}

		ctx := context.Background()
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)
		defer uow.UserRepository().Delete(ctx, userId)

		planId := uuid.New()
		plan := &entity.SavedPlan{
			Id:          planId,
			UserId:      userId,
			Destination: "Kyoto",
			Title:       "3 days in Kyoto",
			Request: entity.TripRequest{
				Destinations: []string{"Kyoto"},
				Dates:        "2026-10-01..2026-10-03",
			},
			Outline: &entity.PlanOutline{
				Destination: "Kyoto",
				Days: []entity.DayTitle{
					{Day: 1, Title: "Arrival and Gion"},
					{Day: 2, Title: "Temples"},
					{Day: 3, Title: "Arashiyama"},
				},
			},
			Status: entity.PlanStatusOutline,
		}
		err = uow.PlanRepository().Create(ctx, plan)
		assert.NoError(t, err)
		defer uow.PlanRepository().Delete(ctx, planId)

		found, err := uow.PlanRepository().FindOne(ctx,
			specification.ByID{ID: planId},
			specification.ByUserID{UserID: userId},
		)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, "Kyoto", found.Destination)
			assert.Len(t, found.Outline.Days, 3)
		}

		itinerary := &entity.Itinerary{
			Id:          planId,
			Destination: "Kyoto",
			Days: []entity.DayPlan{
				{Day: 1, Title: "Arrival and Gion", Activities: []entity.Activity{{Time: "10:00", Name: "Check in"}}},
				{Day: 2, Title: "Temples", Activities: []entity.Activity{{Time: "09:00", Name: "Kinkaku-ji"}}},
				{Day: 3, Title: "Arashiyama", Activities: []entity.Activity{{Time: "09:00", Name: "Bamboo grove"}}},
			},
			GeneratedAt: time.Now(),
		}
		err = uow.PlanRepository().UpdateItinerary(ctx, planId, itinerary, entity.PlanStatusComplete)
		assert.NoError(t, err)

		found, err = uow.PlanRepository().FindOne(ctx, specification.ByID{ID: planId})
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, entity.PlanStatusComplete, found.Status)
			assert.Len(t, found.Itinerary.Days, 3)
		}
	})
}
