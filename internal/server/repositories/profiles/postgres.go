package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mpetrenko/accountd/internal/common"
	"github.com/mpetrenko/accountd/internal/dbx"
	"github.com/mpetrenko/accountd/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, user_id)
		VALUES ($1, $2)
		RETURNING is_verified, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, profile.ID, profile.UserID).
		Scan(&profile.IsVerified, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return profile, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT id, user_id, avatar_key, phone, birth_date, bio, location, website,
		       gender, is_verified, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.AvatarKey, &profile.Phone,
		&profile.BirthDate, &profile.Bio, &profile.Location, &profile.Website,
		&profile.Gender, &profile.IsVerified, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return profile, nil
}

func (r *PostgresRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET avatar_key = $2, phone = $3, birth_date = $4, bio = $5,
		    location = $6, website = $7, gender = $8, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.AvatarKey, profile.Phone, profile.BirthDate,
		profile.Bio, profile.Location, profile.Website, profile.Gender); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
