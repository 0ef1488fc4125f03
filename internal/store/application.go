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

const applicationTableName = "volunteerhub.applications"

var applicationColumns = utils.StructTagValues(types.Application{})

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

type applicationWithCreator struct {
	types.Application
	CreatorID string `db:"creator_id"`
}

// ApplicationWithCreator loads an application together with the creator_id
// of the opportunity it belongs to.
func (r *ApplicationRepository) ApplicationWithCreator(ctx context.Context, applicationID string) (*types.Application, string, error) {
	query, args, err := applicationWithCreatorQuery(applicationID).ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate application with creator query: %w", err)
	}

	var row applicationWithCreator
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, "", types.ErrApplicationNotFound
		}
		return nil, "", fmt.Errorf("failed to fetch application %s: %w", applicationID, err)
	}

	return &row.Application, row.CreatorID, nil
}

func applicationWithCreatorQuery(applicationID string) sq.SelectBuilder {
	columns := append(utils.PrefixColumns("a", applicationColumns), "o.creator_id")

	return psql().
		Select(columns...).
		From(applicationTableName + " a").
		Join(opportunityTableName + " o ON o.id = a.opportunity_id").
		Where(sq.Eq{"a.id": applicationID}).
		Limit(1)
}

func (r *ApplicationRepository) ApplicationByVolunteerAndOpportunity(ctx context.Context, volunteerID, opportunityID string) (*types.Application, error) {
	query, args, err := psql().
		Select(applicationColumns...).
		From(applicationTableName).
		Where(sq.Eq{"volunteer_id": volunteerID, "opportunity_id": opportunityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate application lookup query: %w", err)
	}

	var application = new(types.Application)
	err = pgxscan.Get(ctx, r.pool, application, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	return application, nil
}

// ApplicationsByVolunteer returns the volunteer's applications, newest first,
// joined with the summary fields of each opportunity.
func (r *ApplicationRepository) ApplicationsByVolunteer(ctx context.Context, volunteerID string) ([]*types.VolunteerApplication, error) {
	query, args, err := applicationsByVolunteerQuery(volunteerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate volunteer applications query: %w", err)
	}

	var applications = make([]*types.VolunteerApplication, 0)
	err = pgxscan.Select(ctx, r.pool, &applications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications for volunteer %s: %w", volunteerID, err)
	}

	return applications, nil
}

func applicationsByVolunteerQuery(volunteerID string) sq.SelectBuilder {
	columns := append(utils.PrefixColumns("a", applicationColumns),
		"o.title AS opportunity_title",
		"o.organization_name AS organization_name",
		"o.date AS opportunity_date",
		"o.location AS opportunity_location",
	)

	return psql().
		Select(columns...).
		From(applicationTableName + " a").
		Join(opportunityTableName + " o ON o.id = a.opportunity_id").
		Where(sq.Eq{"a.volunteer_id": volunteerID}).
		OrderBy("a.applied_at DESC")
}

func (r *ApplicationRepository) ApplicationsByOpportunityIDs(ctx context.Context, opportunityIDs []string) ([]*types.Application, error) {
	if len(opportunityIDs) == 0 {
		return []*types.Application{}, nil
	}

	query, args, err := psql().
		Select(applicationColumns...).
		From(applicationTableName).
		Where(sq.Eq{"opportunity_id": opportunityIDs}).
		OrderBy("applied_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate applications by opportunity query: %w", err)
	}

	var applications = make([]*types.Application, 0)
	err = pgxscan.Select(ctx, r.pool, &applications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications by opportunity: %w", err)
	}

	return applications, nil
}

// CreateApplication inserts a pending application. The caller may preassign
// the ID (used to build the resume storage path before insert).
func (r *ApplicationRepository) CreateApplication(ctx context.Context, application *types.Application) error {

	if application.ID == "" {
		application.ID = utils.NanoID()
	}
	application.Status = types.ApplicationStatusPending
	application.AppliedAt = time.Now()
	application.ReviewedAt = nil
	application.ReviewedBy = nil

	query, args, err := psql().
		Insert(applicationTableName).
		SetMap(utils.StructToMap(application)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert application query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// UpdateStatus moves a pending application to status. The WHERE clause only
// matches pending rows so concurrent reviews cannot both win.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, applicationID string, status types.ApplicationStatus, reviewerID string) (*types.Application, error) {
	query, args, err := updateStatusQuery(applicationID, status, reviewerID, time.Now()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update application status query: %w", err)
	}

	var application = new(types.Application)
	err = pgxscan.Get(ctx, r.pool, application, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update status of application %s: %w", applicationID, err)
	}

	return application, nil
}

func updateStatusQuery(applicationID string, status types.ApplicationStatus, reviewerID string, reviewedAt time.Time) sq.UpdateBuilder {
	return psql().
		Update(applicationTableName).
		Set("status", status).
		Set("reviewed_at", reviewedAt).
		Set("reviewed_by", reviewerID).
		Where(sq.Eq{"id": applicationID, "status": types.ApplicationStatusPending}).
		Suffix("RETURNING " + joinColumns(applicationColumns))
}
