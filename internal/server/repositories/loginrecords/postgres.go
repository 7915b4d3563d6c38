package loginrecords

import (
	"context"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, record *models.LoginRecord) error {
	query := `
		INSERT INTO login_records (id, user_id, ip_address, user_agent, login_method, is_successful, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.IPAddress, record.UserAgent,
		record.LoginMethod, record.IsSuccessful, record.FailureReason); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, since time.Time) ([]*models.LoginRecord, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, login_method, is_successful, failure_reason, login_time
		FROM login_records
		WHERE user_id = $1 AND login_time >= $2
		ORDER BY login_time DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var records []*models.LoginRecord
	for rows.Next() {
		record := &models.LoginRecord{}
		if err := rows.Scan(&record.ID, &record.UserID, &record.IPAddress,
			&record.UserAgent, &record.LoginMethod, &record.IsSuccessful,
			&record.FailureReason, &record.LoginTime); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return records, nil
}

func (r *PostgresRepository) Stats(ctx context.Context, userID string, recentSince time.Time) (*models.LoginStats, error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE login_time >= $2),
		       count(*) FILTER (WHERE is_successful),
		       count(*) FILTER (WHERE NOT is_successful)
		FROM login_records
		WHERE user_id = $1
	`
	stats := &models.LoginStats{}
	if err := r.db.QueryRowContext(ctx, query, userID, recentSince).Scan(
		&stats.TotalLogins, &stats.RecentLogins,
		&stats.SuccessfulLogins, &stats.FailedLogins); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stats, nil
}
