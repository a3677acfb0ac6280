package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ottocrm/ottocrm/internal/domain"
)

// ProfileRepository encapsulates user profile persistence.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	Update(ctx context.Context, profile *domain.UserProfile) error
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
	ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.UserProfile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO user_profiles (id, role, full_name)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.Role,
		profile.FullName,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        UPDATE user_profiles SET role=$1, full_name=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query,
		profile.Role,
		profile.FullName,
		profile.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	const query = `
        SELECT id, role, full_name, created_at, updated_at
        FROM user_profiles WHERE id=$1`
	var profile domain.UserProfile
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Role,
		&profile.FullName,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.UserProfile, error) {
	placeholders := make([]string, len(roles))
	args := make([]any, len(roles))
	for i, role := range roles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = role
	}
	query := fmt.Sprintf(`
        SELECT id, role, full_name, created_at, updated_at
        FROM user_profiles WHERE role IN (%s) ORDER BY full_name`,
		strings.Join(placeholders, ","))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UserProfile
	for rows.Next() {
		var profile domain.UserProfile
		if err := rows.Scan(
			&profile.ID,
			&profile.Role,
			&profile.FullName,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}
