package store

import (
	"context"
	"fmt"
	"time"

	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	skillTableName                   = "volunteerhub.skills"
	applicationSkillsTableName       = "volunteerhub.application_skills"
	volunteerSkillsTableName         = "volunteerhub.volunteer_skills"
	opportunitySkillExpectationTable = "volunteerhub.opportunity_skill_expectations"
)

var skillColumns = utils.StructTagValues(types.Skill{})

type SkillRepository struct {
	pool *pgxpool.Pool
}

func NewSkillRepository(pool *pgxpool.Pool) *SkillRepository {
	return &SkillRepository{pool: pool}
}

func (r *SkillRepository) AllSkills(ctx context.Context) ([]*types.Skill, error) {
	query, args, err := psql().
		Select(skillColumns...).
		From(skillTableName).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate skills query: %w", err)
	}

	var skills = make([]*types.Skill, 0)
	err = pgxscan.Select(ctx, r.pool, &skills, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch skills: %w", err)
	}

	return skills, nil
}

// SkillsByNames resolves skill labels (names, slugs or ids) to rows. Unknown
// labels are silently dropped; callers compare lengths to report them.
func (r *SkillRepository) SkillsByNames(ctx context.Context, names []string) ([]*types.Skill, error) {
	if len(names) == 0 {
		return []*types.Skill{}, nil
	}

	slugs := make([]string, 0, len(names))
	for _, n := range names {
		slugs = append(slugs, utils.Slugify(n))
	}

	query, args, err := psql().
		Select(skillColumns...).
		From(skillTableName).
		Where(sq.Or{sq.Eq{"slug": slugs}, sq.Eq{"id": names}}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate skills by name query: %w", err)
	}

	var skills = make([]*types.Skill, 0)
	err = pgxscan.Select(ctx, r.pool, &skills, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch skills by name: %w", err)
	}

	return skills, nil
}

func (r *SkillRepository) SkillsByOpportunity(ctx context.Context, opportunityID string) ([]*types.Skill, error) {
	return r.linkedSkills(ctx, opportunitySkillExpectationTable, "opportunity_id", opportunityID)
}

func (r *SkillRepository) SkillsByVolunteer(ctx context.Context, userID string) ([]*types.Skill, error) {
	return r.linkedSkills(ctx, volunteerSkillsTableName, "user_id", userID)
}

func (r *SkillRepository) SkillsByApplication(ctx context.Context, applicationID string) ([]*types.Skill, error) {
	return r.linkedSkills(ctx, applicationSkillsTableName, "application_id", applicationID)
}

func (r *SkillRepository) linkedSkills(ctx context.Context, table, ownerColumn, ownerID string) ([]*types.Skill, error) {
	query, args, err := linkedSkillsQuery(table, ownerColumn, ownerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate linked skills query: %w", err)
	}

	var skills = make([]*types.Skill, 0)
	err = pgxscan.Select(ctx, r.pool, &skills, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch skills from %s: %w", table, err)
	}

	return skills, nil
}

func linkedSkillsQuery(table, ownerColumn, ownerID string) sq.SelectBuilder {
	return psql().
		Select(utils.PrefixColumns("s", skillColumns)...).
		From(skillTableName + " s").
		Join(table + " l ON l.skill_id = s.id").
		Where(sq.Eq{"l." + ownerColumn: ownerID}).
		OrderBy("s.name ASC")
}

func (r *SkillRepository) LinkApplicationSkills(ctx context.Context, applicationID string, skillIDs []string) error {
	return r.link(ctx, r.pool, applicationSkillsTableName, "application_id", applicationID, skillIDs)
}

func (r *SkillRepository) LinkOpportunitySkills(ctx context.Context, opportunityID string, skillIDs []string) error {
	return r.link(ctx, r.pool, opportunitySkillExpectationTable, "opportunity_id", opportunityID, skillIDs)
}

// ReplaceVolunteerSkills swaps the volunteer's skill set in one transaction.
func (r *SkillRepository) ReplaceVolunteerSkills(ctx context.Context, userID string, skillIDs []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query, args, err := psql().
			Delete(volunteerSkillsTableName).
			Where(sq.Eq{"user_id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete volunteer skills query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to clear volunteer skills: %w", err)
		}

		return r.link(ctx, tx, volunteerSkillsTableName, "user_id", userID, skillIDs)
	})
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *SkillRepository) link(ctx context.Context, db execer, table, ownerColumn, ownerID string, skillIDs []string) error {
	if len(skillIDs) == 0 {
		return nil
	}

	query, args, err := linkSkillsQuery(table, ownerColumn, ownerID, skillIDs, time.Now()).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate link skills query: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, fmt.Sprintf("failed to link skills into %s", table))
}

func linkSkillsQuery(table, ownerColumn, ownerID string, skillIDs []string, now time.Time) sq.InsertBuilder {
	builder := psql().
		Insert(table).
		Columns(ownerColumn, "skill_id", "created_at")

	for _, skillID := range skillIDs {
		builder = builder.Values(ownerID, skillID, now)
	}

	return builder.Suffix("ON CONFLICT DO NOTHING")
}

func (r *SkillRepository) UpsertSkill(ctx context.Context, skill *types.Skill) error {
	if skill.CreatedAt.IsZero() {
		skill.CreatedAt = time.Now()
	}

	skillMap := utils.StructToMap(skill)

	query, args, err := psql().
		Insert(skillTableName).
		SetMap(skillMap).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(skillMap, "id", "created_at")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert skill query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert skill")
}

func (r *SkillRepository) DeleteSkill(ctx context.Context, id string) error {
	query, args, err := psql().
		Delete(skillTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete skill query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete skill")
}
