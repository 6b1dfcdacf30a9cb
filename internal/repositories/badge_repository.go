package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"badgehub/internal/database"
	"badgehub/internal/models"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a record or metadata key does not exist.
var ErrNotFound = errors.New("not found")

// badgeRepository implements BadgeRepository over Postgres.
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new instance of BadgeRepository.
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// RECORD OPERATIONS
// ===============================

// Create inserts a new badge record. The store assigns the id.
func (r *badgeRepository) Create(ctx context.Context, record *models.BadgeRecord) error {
	if record.Status == "" {
		record.Status = models.StatusDraft
	}

	query := `
		INSERT INTO badge_records (title, status, criteria_text, image_asset_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		record.Title, record.Status, record.CriteriaText, record.ImageAssetID,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create badge record: %w", err)
	}

	return nil
}

// GetByID fetches a badge record together with all of its metadata.
func (r *badgeRepository) GetByID(ctx context.Context, id int64) (*models.BadgeRecord, error) {
	query := `
		SELECT id, title, status, criteria_text, image_asset_id, created_at, updated_at
		FROM badge_records
		WHERE id = $1`

	record := &models.BadgeRecord{}
	err := r.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.Title, &record.Status, &record.CriteriaText,
		&record.ImageAssetID, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get badge record %d: %w", id, err)
	}

	record.Meta, err = r.loadMeta(ctx, id)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Update persists record fields. Metadata is managed separately through the
// meta operations.
func (r *badgeRepository) Update(ctx context.Context, record *models.BadgeRecord) error {
	query := `
		UPDATE badge_records
		SET title = $2, status = $3, criteria_text = $4, image_asset_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		record.ID, record.Title, record.Status, record.CriteriaText, record.ImageAssetID,
	).Scan(&record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update badge record %d: %w", record.ID, err)
	}

	return nil
}

// List returns badge summaries with the stored version and validity meta
// joined in, newest first. The invalid flag is the persisted one, so listing
// never re-evaluates validity.
func (r *badgeRepository) List(ctx context.Context, limit, offset int) ([]*models.BadgeSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT b.id, b.title, b.status,
		       COALESCE(ver.value, $3) AS version,
		       COALESCE(val.value, 'false') AS valid
		FROM badge_records b
		LEFT JOIN badge_meta ver ON ver.record_id = b.id AND ver.key = $4
		LEFT JOIN badge_meta val ON val.record_id = b.id AND val.key = $5
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.QueryContext(ctx, query,
		limit, offset,
		models.DefaultVersion, models.MetaKeyVersion, models.MetaKeyValid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge records: %w", err)
	}
	defer rows.Close()

	var summaries []*models.BadgeSummary
	for rows.Next() {
		s := &models.BadgeSummary{}
		var valid string
		if err := rows.Scan(&s.ID, &s.Title, &s.Status, &s.Version, &valid); err != nil {
			return nil, fmt.Errorf("failed to scan badge summary: %w", err)
		}
		s.Invalid = s.Status == models.StatusPublished && valid != "true"
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ===============================
// METADATA OPERATIONS
// ===============================

// GetMeta returns one metadata value, or ErrNotFound when the key is absent.
func (r *badgeRepository) GetMeta(ctx context.Context, recordID int64, key string) (string, error) {
	query := `SELECT value FROM badge_meta WHERE record_id = $1 AND key = $2`

	var value string
	err := r.QueryRowContext(ctx, query, recordID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get meta %q for record %d: %w", key, recordID, err)
	}

	return value, nil
}

// SetMeta inserts or overwrites one metadata value.
func (r *badgeRepository) SetMeta(ctx context.Context, recordID int64, key, value string) error {
	query := `
		INSERT INTO badge_meta (record_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (record_id, key) DO UPDATE SET value = EXCLUDED.value`

	if _, err := r.ExecContext(ctx, query, recordID, key, value); err != nil {
		return fmt.Errorf("failed to set meta %q for record %d: %w", key, recordID, err)
	}

	return nil
}

// DeleteMeta removes a metadata entry by key. Deleting an absent key is a
// no-op.
func (r *badgeRepository) DeleteMeta(ctx context.Context, recordID int64, key string) error {
	query := `DELETE FROM badge_meta WHERE record_id = $1 AND key = $2`

	if _, err := r.ExecContext(ctx, query, recordID, key); err != nil {
		return fmt.Errorf("failed to delete meta %q for record %d: %w", key, recordID, err)
	}

	return nil
}

// loadMeta reads all metadata rows for one record.
func (r *badgeRepository) loadMeta(ctx context.Context, recordID int64) (map[string]string, error) {
	query := `SELECT key, value FROM badge_meta WHERE record_id = $1`

	rows, err := r.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meta for record %d: %w", recordID, err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan meta row: %w", err)
		}
		meta[key] = value
	}

	return meta, rows.Err()
}
