package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kollektivet/rentmatch/internal/models"
)

const dateLayout = "2006-01-02"

// CreateTenant persists a new tenant to the database.
func (s *SQLiteStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if tenant.CreatedAt == 0 {
		tenant.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, phone, start_date, departure_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tenant.ID, tenant.Name, tenant.Phone,
		nullDate(tenant.StartDate), nullDate(tenant.DepartureDate), tenant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

// GetTenant retrieves a tenant by ID.
func (s *SQLiteStore) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, start_date, departure_date, created_at
		 FROM tenants WHERE id = ?`, tenantID)

	tenant, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

// ListTenants returns all tenants ordered by name.
func (s *SQLiteStore) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, start_date, departure_date, created_at
		 FROM tenants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}
	return tenants, nil
}

func scanTenant(sc scanner) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	var startDate, departureDate sql.NullString

	err := sc.Scan(&tenant.ID, &tenant.Name, &tenant.Phone,
		&startDate, &departureDate, &tenant.CreatedAt)
	if err != nil {
		return nil, err
	}

	if tenant.StartDate, err = parseDate(startDate); err != nil {
		return nil, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if tenant.DepartureDate, err = parseDate(departureDate); err != nil {
		return nil, fmt.Errorf("failed to parse departure_date: %w", err)
	}
	return tenant, nil
}

func parseDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(dateLayout)
}
