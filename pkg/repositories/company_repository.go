package repositories

import (
	"context"
	"fmt"

	"github.com/yenduku/trend-engine/pkg/database"
	"github.com/yenduku/trend-engine/pkg/models"
)

// CompanyRepository reads the company registry. Seeding and mutation of the
// registry happen elsewhere; the engine only needs the active set.
type CompanyRepository interface {
	// ListActive returns all active companies ordered by ascending id.
	ListActive(ctx context.Context) ([]models.Company, error)
}

type companyRepository struct {
	db *database.DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *database.DB) CompanyRepository {
	return &companyRepository{db: db}
}

var _ CompanyRepository = (*companyRepository)(nil)

func (r *companyRepository) ListActive(ctx context.Context) ([]models.Company, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, sector, revenue, aliases, featured_free, active, created_at
		FROM companies
		WHERE active = true
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Sector, &c.Revenue, &c.Aliases, &c.FeaturedFree, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}

	return companies, nil
}
