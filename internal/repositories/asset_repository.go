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

// assetRepository implements AssetRepository over Postgres.
type assetRepository struct {
	*BaseRepository
}

// NewAssetRepository creates a new instance of AssetRepository.
func NewAssetRepository(db *database.Manager, logger *zap.Logger) AssetRepository {
	return &assetRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a new asset row. The store assigns the id.
func (r *assetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (public_id, file_path, url, media_type, parent_record_id, title, body_text, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		asset.PublicID, asset.FilePath, asset.URL, asset.MediaType,
		asset.ParentRecordID, asset.Title, asset.BodyText, asset.Size,
	).Scan(&asset.ID, &asset.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetByID fetches one asset.
func (r *assetRepository) GetByID(ctx context.Context, id int64) (*models.Asset, error) {
	query := `
		SELECT id, public_id, file_path, url, media_type, parent_record_id, title, body_text, size, created_at
		FROM assets
		WHERE id = $1`

	asset := &models.Asset{}
	err := r.QueryRowContext(ctx, query, id).Scan(
		&asset.ID, &asset.PublicID, &asset.FilePath, &asset.URL, &asset.MediaType,
		&asset.ParentRecordID, &asset.Title, &asset.BodyText, &asset.Size, &asset.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get asset %d: %w", id, err)
	}

	return asset, nil
}

// SetRecordImage points a record's image reference at an asset. The update is
// atomic at the granularity of the single row.
func (r *assetRepository) SetRecordImage(ctx context.Context, recordID, assetID int64) error {
	query := `UPDATE badge_records SET image_asset_id = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.ExecContext(ctx, query, recordID, assetID)
	if err != nil {
		return fmt.Errorf("failed to set image for record %d: %w", recordID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check image update for record %d: %w", recordID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
