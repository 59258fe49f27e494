package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/admitra/portal-backend/internal/config"
	"github.com/admitra/portal-backend/internal/database"
	"github.com/admitra/portal-backend/internal/logger"
	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
	"github.com/admitra/portal-backend/internal/service"
)

// Seeds the department catalogue, one published sample question set per
// department, and a batch of applicant accounts for local development.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	applicantRepo := repository.NewApplicantRepository(pool)
	questionSetRepo := repository.NewQuestionSetRepository(pool)

	fmt.Println("=== Seeding Departments ===")

	departments := []struct {
		slug string
		name string
	}{
		{"cse", "Computer Science & Engineering"},
		{"eee", "Electrical & Electronic Engineering"},
		{"ce", "Civil Engineering"},
		{"bba", "Business Administration"},
	}

	for _, d := range departments {
		_, err := pool.Exec(ctx,
			`INSERT INTO departments (slug, name, open)
			 VALUES ($1, $2, TRUE)
			 ON CONFLICT (slug) DO NOTHING`, d.slug, d.name)
		if err != nil {
			log.Fatal().Err(err).Str("department", d.slug).Msg("Failed to seed department")
		}
		fmt.Printf("Department %s ready\n", d.slug)
	}

	fmt.Println("\n=== Seeding Question Sets ===")

	for _, d := range departments {
		hasPublished, err := questionSetRepo.HasPublished(ctx, d.slug)
		if err != nil {
			log.Fatal().Err(err).Str("department", d.slug).Msg("Failed to check published sets")
		}
		if hasPublished {
			fmt.Printf("Department %s already has a published set, skipping\n", d.slug)
			continue
		}

		qs := &model.QuestionSet{
			Department: d.slug,
			Title:      fmt.Sprintf("Sample %s admission bank", d.slug),
			Questions:  service.SampleBankFor(d.slug),
		}
		if err := questionSetRepo.Create(ctx, qs); err != nil {
			log.Fatal().Err(err).Str("department", d.slug).Msg("Failed to create question set")
		}
		if _, err := questionSetRepo.Publish(ctx, qs.ID.String()); err != nil {
			log.Fatal().Err(err).Str("department", d.slug).Msg("Failed to publish question set")
		}
		fmt.Printf("Published sample set for %s (%d questions)\n", d.slug, len(qs.Questions))
	}

	fmt.Println("\n=== Seeding 50 Applicants ===")

	hash, err := bcrypt.GenerateFromPassword([]byte("admitra123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash seed password")
	}

	successCount := 0
	for i := 0; i < 50; i++ {
		dept := departments[i%len(departments)].slug
		formID := fmt.Sprintf("AF-2026-%04d", i+1)
		ssc := 3.0 + float64(i%21)*0.1
		hsc := 3.0 + float64((i*7)%21)*0.1

		applicant := &model.Applicant{
			Name:     fmt.Sprintf("Test Applicant %02d", i+1),
			Phone:    fmt.Sprintf("017000000%02d", i+1),
			Password: string(hash),
		}

		if err := applicantRepo.Create(ctx, applicant); err != nil {
			fmt.Printf("Error creating applicant %s: %v\n", applicant.Phone, err)
			continue
		}

		applicant.AdmissionFormID = &formID
		applicant.Department = &dept
		applicant.SSCGPA = &ssc
		applicant.HSCGPA = &hsc
		if err := applicantRepo.UpdateProfile(ctx, applicant); err != nil {
			fmt.Printf("Error filling profile for %s: %v\n", applicant.Phone, err)
			continue
		}

		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Created %d applicants...\n", i+1)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/50 applicants.\n", successCount)
}
