package main

import (
	"log"
	"os"

	"ai-tripplanner-be/internal/model"
	"ai-tripplanner-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Subscription Plans...")

	plans := []model.SubscriptionPlan{
		{
			Name:                "Free",
			Slug:                "free",
			Description:         "Try the planner with a handful of generations per month",
			Price:               0,
			BillingPeriod:       "monthly",
			PlanGenerationLimit: 5,
			TravelInfoLimit:     20,
			MaxSavedPlans:       5,
			IsActive:            true,
			SortOrder:           1,
		},
		{
			Name:                "Traveler",
			Slug:                "traveler",
			Description:         "For frequent travelers who plan several trips a month",
			Price:               49000,
			BillingPeriod:       "monthly",
			PlanGenerationLimit: 50,
			TravelInfoLimit:     200,
			MaxSavedPlans:       50,
			IsActive:            true,
			SortOrder:           2,
		},
		{
			Name:                "Agency",
			Slug:                "agency",
			Description:         "Unlimited generation for travel professionals",
			Price:               199000,
			BillingPeriod:       "monthly",
			PlanGenerationLimit: -1,
			TravelInfoLimit:     -1,
			MaxSavedPlans:       -1,
			IsActive:            true,
			SortOrder:           3,
		},
	}

	for _, p := range plans {
		var existing model.SubscriptionPlan
		if err := db.Where("slug = ?", p.Slug).First(&existing).Error; err == nil {
			log.Printf("Plan '%s' already exists, skipping...", p.Slug)
			continue
		}

		if err := db.Create(&p).Error; err != nil {
			log.Printf("Error creating plan '%s': %v", p.Slug, err)
		} else {
			log.Printf("Created plan: %s (%s)", p.Name, p.Slug)
		}
	}

	log.Println("Plan seeding completed!")
}
