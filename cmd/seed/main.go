package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"travel-ai-planner/internal/config"
	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	pg "travel-ai-planner/internal/infra/db/postgres"
)

// Seeds a demo user and survey so a fresh environment has something to
// generate a plan from.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewUserRepo(pool)
	surveyRepo := pg.NewSurveyRepo(pool)

	const demoEmail = "demo@example.com"
	user, err := userRepo.FindByEmail(ctx, nil, demoEmail)
	switch {
	case err == nil:
		fmt.Printf("demo user already present: %s\n", user.ID)
		return
	case errors.Is(err, domain.ErrNotFound):
		// fall through and create
	default:
		log.Fatalf("find demo user: %v", err)
	}

	user = model.NewUser(uuid.NewString(), demoEmail, "Demo Traveler")
	if err := userRepo.Save(ctx, nil, user); err != nil {
		log.Fatalf("save demo user: %v", err)
	}

	start := time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	survey := model.NewTravelSurvey(uuid.NewString(), user.ID, "Kyoto", start, start.AddDate(0, 0, 2), 2)
	survey.BudgetLevel = "medium"
	survey.Themes = []string{"food", "history"}
	survey.FreeText = "We would love one quiet temple morning."
	if err := surveyRepo.Save(ctx, nil, survey); err != nil {
		log.Fatalf("save demo survey: %v", err)
	}

	fmt.Printf("seeded demo user %s with survey %s\n", user.ID, survey.ID)
}
