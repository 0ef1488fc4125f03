package main

import (
	"context"
	"fmt"

	"volunteerhub/internal/db"
	"volunteerhub/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var inspectUserCommand = &cli.Command{
	Name:  "inspect-user",
	Usage: "Pretty-print a stored profile and its skills",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "User id (the identity provider's sub)",
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		userID := c.String("id")

		user, err := store.NewUserRepository(pool).User(ctx, userID)
		if err != nil {
			return err
		}

		skills, err := store.NewSkillRepository(pool).SkillsByVolunteer(ctx, userID)
		if err != nil {
			return err
		}

		pp.Println(user)
		pp.Println(skills)

		return nil
	},
}
