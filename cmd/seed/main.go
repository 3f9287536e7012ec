// Command seed fills an empty database with demo profiles, contracts and jobs.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/config"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/db"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/logger"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/utils"
)

const demoPassword = "password123"

type profileSeed struct {
	first, last, profession, email string
	role                           models.Role
	balance                        string
}

var profileSeeds = []profileSeed{
	{"Harry", "Potter", "Wizard", "harry@example.com", models.RoleClient, "1150"},
	{"Mr", "Robot", "Hacker", "robot@example.com", models.RoleClient, "231.11"},
	{"John", "Snow", "Knows nothing", "john@example.com", models.RoleClient, "451.3"},
	{"Ash", "Kethcum", "Pokemon master", "ash@example.com", models.RoleClient, "1.3"},
	{"John", "Lenon", "Musician", "lenon@example.com", models.RoleContractor, "64"},
	{"Linus", "Torvalds", "Programmer", "linus@example.com", models.RoleContractor, "1214"},
	{"Alan", "Turing", "Programmer", "alan@example.com", models.RoleContractor, "22"},
	{"Aragorn", "II Elessar Telcontarvalds", "Fighter", "aragorn@example.com", models.RoleContractor, "314"},
}

type contractSeed struct {
	client, contractor int
	status             models.ContractStatus
	jobs               []jobSeed
}

type jobSeed struct {
	description string
	price       string
	paidDaysAgo int // 0 means unpaid
}

var contractSeeds = []contractSeed{
	{0, 4, models.ContractStatusTerminated, []jobSeed{{"work", "200", 0}}},
	{0, 5, models.ContractStatusInProgress, []jobSeed{{"work", "201", 0}, {"work", "21", 3}}},
	{1, 5, models.ContractStatusInProgress, []jobSeed{{"work", "202", 0}, {"work", "121", 5}}},
	{1, 6, models.ContractStatusInProgress, []jobSeed{{"work", "200", 0}, {"work", "2020", 2}}},
	{2, 4, models.ContractStatusNew, []jobSeed{{"work", "200", 1}}},
	{2, 6, models.ContractStatusInProgress, []jobSeed{{"work", "200", 0}}},
	{3, 7, models.ContractStatusInProgress, []jobSeed{{"work", "200", 4}}},
	{3, 6, models.ContractStatusInProgress, []jobSeed{{"work", "200", 0}}},
	{3, 5, models.ContractStatusInProgress, []jobSeed{{"work", "200", 6}}},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	gdb, err := db.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	var existing int64
	if err := gdb.Model(&models.Profile{}).Count(&existing).Error; err != nil {
		log.Fatal().Err(err).Msg("count profiles")
	}
	if existing > 0 {
		log.Info().Int64("profiles", existing).Msg("database already seeded")
		return
	}

	if err := gdb.Transaction(func(tx *gorm.DB) error { return seed(tx) }); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("profiles", len(profileSeeds)).Int("contracts", len(contractSeeds)).Msg("database seeded")
}

func seed(tx *gorm.DB) error {
	hash, err := utils.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	profiles := make([]*models.Profile, 0, len(profileSeeds))
	for _, s := range profileSeeds {
		p := &models.Profile{
			FirstName:    s.first,
			LastName:     s.last,
			Profession:   s.profession,
			Email:        s.email,
			PasswordHash: hash,
			Role:         s.role,
			Balance:      decimal.RequireFromString(s.balance),
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("profile %s: %w", s.email, err)
		}
		profiles = append(profiles, p)
	}

	now := time.Now().UTC()
	for _, s := range contractSeeds {
		c := &models.Contract{
			ClientID:     profiles[s.client].ID,
			ContractorID: profiles[s.contractor].ID,
			Terms:        "bla bla bla",
			Status:       s.status,
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		for _, js := range s.jobs {
			j := &models.Job{
				ContractID:  c.ID,
				Description: js.description,
				Price:       decimal.RequireFromString(js.price),
			}
			if js.paidDaysAgo > 0 {
				paidAt := now.AddDate(0, 0, -js.paidDaysAgo)
				j.Paid = true
				j.PaymentDate = &paidAt
			}
			if err := tx.Create(j).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
