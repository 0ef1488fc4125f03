package store

import (
	"context"
	"fmt"
	"time"

	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const opportunityTableName = "volunteerhub.opportunities"

var opportunityColumns = utils.StructTagValues(types.Opportunity{})

type OpportunityRepository struct {
	pool *pgxpool.Pool
}

func NewOpportunityRepository(pool *pgxpool.Pool) *OpportunityRepository {
	return &OpportunityRepository{pool: pool}
}

func (r *OpportunityRepository) Opportunity(ctx context.Context, opportunityID string) (*types.Opportunity, error) {
	query, args, err := psql().
		Select(opportunityColumns...).
		From(opportunityTableName).
		Where(sq.Eq{"id": opportunityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate opportunity query: %w", err)
	}

	var opportunity = new(types.Opportunity)
	err = pgxscan.Get(ctx, r.pool, opportunity, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to fetch opportunity: %w", err)
	}

	return opportunity, nil
}

func (r *OpportunityRepository) AllOpportunities(ctx context.Context) ([]*types.Opportunity, error) {
	query, args, err := psql().
		Select(opportunityColumns...).
		From(opportunityTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate opportunities query: %w", err)
	}

	var opportunities = make([]*types.Opportunity, 0)
	err = pgxscan.Select(ctx, r.pool, &opportunities, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}

	return opportunities, nil
}

func (r *OpportunityRepository) OpportunitiesByCreator(ctx context.Context, creatorID string) ([]*types.Opportunity, error) {
	query, args, err := psql().
		Select(opportunityColumns...).
		From(opportunityTableName).
		Where(sq.Eq{"creator_id": creatorID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate opportunities by creator query: %w", err)
	}

	var opportunities = make([]*types.Opportunity, 0)
	err = pgxscan.Select(ctx, r.pool, &opportunities, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities for creator %s: %w", creatorID, err)
	}

	return opportunities, nil
}

func (r *OpportunityRepository) CreateOpportunity(ctx context.Context, opportunity *types.Opportunity) error {

	now := time.Now()
	opportunity.ID = utils.NanoID()
	opportunity.CreatedAt = now
	opportunity.UpdatedAt = now

	query, args, err := psql().
		Insert(opportunityTableName).
		SetMap(utils.StructToMap(opportunity)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert opportunity query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create opportunity")
}

func (r *OpportunityRepository) UpdateOpportunity(ctx context.Context, opportunityID string, opportunity *types.Opportunity) error {

	opportunity.ID = opportunityID
	opportunity.UpdatedAt = time.Now()

	opportunityMap := utils.StructToMap(opportunity)
	delete(opportunityMap, "created_at")
	delete(opportunityMap, "creator_id")

	query, args, err := psql().
		Update(opportunityTableName).
		SetMap(opportunityMap).
		Where(sq.Eq{"id": opportunityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update opportunity query for opportunity %s: %w", opportunityID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrOpportunityNotFound
	}

	return nil
}

func (r *OpportunityRepository) DeleteOpportunity(ctx context.Context, opportunityID string) error {

	query, args, err := psql().
		Delete(opportunityTableName).
		Where(sq.Eq{"id": opportunityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete opportunity query for opportunity %s: %w", opportunityID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete opportunity")
}
