package main

import (
	"context"
	"fmt"

	"volunteerhub/internal/db"
	"volunteerhub/internal/seed"
	"volunteerhub/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Sync categories and skills with the seed lists",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()
		logger := newLogger()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("connected to database")

		if _, err := seed.SeedCategories(ctx, logger, store.NewCategoryRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		if _, err := seed.SeedSkills(ctx, logger, store.NewSkillRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed skills: %w", err)
		}

		return nil
	},
}
