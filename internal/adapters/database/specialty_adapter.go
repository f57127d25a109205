package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// SpecialtyAdapter implements the SpecialtyRepository interface
type SpecialtyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSpecialtyAdapter creates a new specialty adapter
func NewSpecialtyAdapter(client *postgres.Client) repositories.SpecialtyRepository {
	return &SpecialtyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// List retrieves all specialties ordered by name
func (a *SpecialtyAdapter) List(ctx context.Context) ([]*entities.Specialty, error) {
	query, args, err := a.db.Select("id", "name").
		From("specialties").
		Order(goqu.I("name").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.querySpecialties(ctx, query, args)
}

// GetByIDs retrieves specialties for a set of ids in a single query. An
// empty id set returns an empty result without touching the database.
func (a *SpecialtyAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Specialty, error) {
	if len(ids) == 0 {
		return []*entities.Specialty{}, nil
	}

	query, args, err := a.db.Select("id", "name").
		From("specialties").
		Where(goqu.Ex{"id": ids}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.querySpecialties(ctx, query, args)
}

func (a *SpecialtyAdapter) querySpecialties(ctx context.Context, query string, args []interface{}) ([]*entities.Specialty, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list specialties", err)
	}
	defer rows.Close()

	var specialties []*entities.Specialty
	for rows.Next() {
		specialty := &entities.Specialty{}
		if err := rows.Scan(&specialty.ID, &specialty.Name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan specialty", err)
		}
		specialties = append(specialties, specialty)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating specialties", err)
	}

	return specialties, nil
}
