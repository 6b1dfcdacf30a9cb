package repositories

import (
	"context"

	"badgehub/internal/models"
)

// BadgeRepository defines the contract for badge record persistence,
// including the generic per-record key/value metadata store.
type BadgeRepository interface {
	// Record operations
	Create(ctx context.Context, record *models.BadgeRecord) error
	GetByID(ctx context.Context, id int64) (*models.BadgeRecord, error)
	Update(ctx context.Context, record *models.BadgeRecord) error
	List(ctx context.Context, limit, offset int) ([]*models.BadgeSummary, error)

	// Metadata operations
	GetMeta(ctx context.Context, recordID int64, key string) (string, error)
	SetMeta(ctx context.Context, recordID int64, key, value string) error
	DeleteMeta(ctx context.Context, recordID int64, key string) error
}

// AssetRepository defines the contract for managed asset persistence and the
// record image reference.
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id int64) (*models.Asset, error)
	SetRecordImage(ctx context.Context, recordID, assetID int64) error
}
