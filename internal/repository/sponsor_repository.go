package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/raptorhall/tutoring-api/internal/models"
)

const sponsorColumns = `id, email, password_hash, full_name, subject, lunch_period, active, created_at, updated_at`

// SponsorRepository reads the sponsor directory. Sponsors are created and
// retired elsewhere; this API only authenticates and references them.
type SponsorRepository struct {
	db *sqlx.DB
}

// NewSponsorRepository constructs the repository.
func NewSponsorRepository(db *sqlx.DB) *SponsorRepository {
	return &SponsorRepository{db: db}
}

// FindByID returns a sponsor by its ID.
func (r *SponsorRepository) FindByID(ctx context.Context, id string) (*models.Sponsor, error) {
	query := fmt.Sprintf(`SELECT %s FROM sponsors WHERE id = $1`, sponsorColumns)
	var sponsor models.Sponsor
	if err := r.db.GetContext(ctx, &sponsor, query, id); err != nil {
		return nil, err
	}
	return &sponsor, nil
}

// FindByEmail returns a sponsor by email for login.
func (r *SponsorRepository) FindByEmail(ctx context.Context, email string) (*models.Sponsor, error) {
	query := fmt.Sprintf(`SELECT %s FROM sponsors WHERE email = $1`, sponsorColumns)
	var sponsor models.Sponsor
	if err := r.db.GetContext(ctx, &sponsor, query, email); err != nil {
		return nil, err
	}
	return &sponsor, nil
}

// UpdatePassword replaces the stored password hash.
func (r *SponsorRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE sponsors SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("update sponsor password: %w", err)
	}
	return nil
}

// List returns sponsors filtered by the provided criteria.
func (r *SponsorRepository) List(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM sponsors%s ORDER BY full_name ASC LIMIT %d OFFSET %d`,
		sponsorColumns, clause, size, offset)

	var sponsors []models.Sponsor
	if err := r.db.SelectContext(ctx, &sponsors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sponsors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM sponsors%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sponsors: %w", err)
	}
	return sponsors, total, nil
}
