// Package seed keeps the reference tables in step with the definitions in
// this package. The lists here are the source of truth: rows missing from a
// list are deleted, everything else is upserted by id.
//
// To generate new IDs: `go run ./cmd/volunteerhub nanoid -c 1`
package seed

import (
	"context"
	"fmt"

	"volunteerhub/pkg/types"

	"github.com/sirupsen/logrus"
)

type CategoryStore interface {
	AllCategoriesUnfiltered(ctx context.Context) ([]*types.Category, error)
	UpsertCategory(ctx context.Context, category *types.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type SkillStore interface {
	AllSkills(ctx context.Context) ([]*types.Skill, error)
	UpsertSkill(ctx context.Context, skill *types.Skill) error
	DeleteSkill(ctx context.Context, id string) error
}

// Result counts what a sync changed.
type Result struct {
	Upserted int
	Deleted  int
}

func SeedCategories(ctx context.Context, logger logrus.FieldLogger, repo CategoryStore) (Result, error) {
	var res Result
	entry := logger.WithField("table", "categories")

	seedIDs := make(map[string]bool, len(categories))
	for _, cat := range categories {
		seedIDs[cat.ID] = true
	}

	existing, err := repo.AllCategoriesUnfiltered(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to fetch existing categories: %w", err)
	}

	for _, cat := range existing {
		if seedIDs[cat.ID] {
			continue
		}
		entry.WithField("id", cat.ID).Infof("deleting category %s", cat.Name)
		if err := repo.DeleteCategory(ctx, cat.ID); err != nil {
			return res, fmt.Errorf("failed to delete category %s: %w", cat.ID, err)
		}
		res.Deleted++
	}

	for _, cat := range categories {
		if err := repo.UpsertCategory(ctx, &cat); err != nil {
			return res, fmt.Errorf("failed to upsert category %s: %w", cat.Slug, err)
		}
		res.Upserted++
	}

	entry.WithFields(logrus.Fields{"upserted": res.Upserted, "deleted": res.Deleted}).Info("category sync complete")

	return res, nil
}

func SeedSkills(ctx context.Context, logger logrus.FieldLogger, repo SkillStore) (Result, error) {
	var res Result
	entry := logger.WithField("table", "skills")

	seedIDs := make(map[string]bool, len(skills))
	for _, skill := range skills {
		seedIDs[skill.ID] = true
	}

	existing, err := repo.AllSkills(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to fetch existing skills: %w", err)
	}

	for _, skill := range existing {
		if seedIDs[skill.ID] {
			continue
		}
		entry.WithField("id", skill.ID).Infof("deleting skill %s", skill.Name)
		if err := repo.DeleteSkill(ctx, skill.ID); err != nil {
			return res, fmt.Errorf("failed to delete skill %s: %w", skill.ID, err)
		}
		res.Deleted++
	}

	for _, skill := range skills {
		if err := repo.UpsertSkill(ctx, &skill); err != nil {
			return res, fmt.Errorf("failed to upsert skill %s: %w", skill.Slug, err)
		}
		res.Upserted++
	}

	entry.WithFields(logrus.Fields{"upserted": res.Upserted, "deleted": res.Deleted}).Info("skill sync complete")

	return res, nil
}
