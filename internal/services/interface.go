package services

import (
	"context"

	"badgehub/internal/models"
	"badgehub/internal/staging"
)

// ===============================
// SERVICE INTERFACES
// ===============================

// BadgeService manages badge records and their save-time validity hook.
type BadgeService interface {
	CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*SaveBadgeResult, error)
	GetBadge(ctx context.Context, id int64) (*BadgeView, error)
	SaveBadge(ctx context.Context, req *SaveBadgeRequest) (*SaveBadgeResult, error)
	ListBadges(ctx context.Context, limit, offset int) ([]*models.BadgeSummary, error)

	// RefreshValidity recomputes and persists the validity snapshot without
	// changing any user-editable field. Used after the image pipeline attaches
	// an asset.
	RefreshValidity(ctx context.Context, recordID int64) (*models.ValiditySnapshot, error)
}

// AssetService turns staged files into managed assets and attaches them to
// records.
type AssetService interface {
	Ingest(ctx context.Context, staged *staging.File, params *IngestParams) (*models.Asset, error)
}

// DesignerService orchestrates the externally-submitted badge image flow:
// parse, decode, stage, ingest, attach, refresh validity.
type DesignerService interface {
	Publish(ctx context.Context, req *DesignerPublishRequest) (*DesignerPublishResult, error)
}

// AssetStorage is the external media backend boundary (Cloudinary in
// production, fakes in tests).
type AssetStorage interface {
	UploadFile(ctx context.Context, localPath string, params *StorageUploadParams) (*StorageUploadResult, error)
}

// ===============================
// BADGE REQUEST/RESPONSE TYPES
// ===============================

// CreateBadgeRequest creates a new badge record.
type CreateBadgeRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	CriteriaText string `json:"criteria_text"`
	Description  string `json:"description"`
	Version      string `json:"version"`
	Status       string `json:"status" validate:"omitempty,oneof=draft published trashed"`
}

// SaveBadgeRequest is one explicit user save of a badge record. Version and
// Description are the submitted values; both go through the save-time
// normalization and persistence rules.
type SaveBadgeRequest struct {
	ID           int64  `json:"id" validate:"required,gt=0"`
	Title        string `json:"title" validate:"required,max=200"`
	CriteriaText string `json:"criteria_text"`
	Description  string `json:"description"`
	Version      string `json:"version"`
	Status       string `json:"status" validate:"omitempty,oneof=draft published trashed"`
}

// SaveBadgeResult reports the saved record, its recomputed validity snapshot,
// and non-fatal warnings for each failing facet.
type SaveBadgeResult struct {
	Record   *models.BadgeRecord     `json:"record"`
	Validity models.ValiditySnapshot `json:"validity"`
	Warnings []string                `json:"warnings,omitempty"`
}

// BadgeView is the read model of one badge record.
type BadgeView struct {
	Record       *models.BadgeRecord     `json:"record"`
	DisplayTitle string                  `json:"display_title"`
	Description  string                  `json:"description"`
	Version      string                  `json:"version"`
	Validity     models.ValiditySnapshot `json:"validity"`
}

// ===============================
// INGESTION TYPES
// ===============================

// IngestParams configures one asset ingestion. All options are named and
// enumerated; there is no generic override map.
type IngestParams struct {
	// RecordID, when set, attaches the new asset to that record.
	RecordID *int64

	// TitleOverride wins over label-derived titles when non-empty.
	TitleOverride string

	// Label text used to derive the asset title when no override is given.
	PrimaryLabel    string
	SecondaryLabel  string
	SecondaryLabel2 string

	// AllowedMediaTypes restricts the declared media types accepted for this
	// ingestion. Empty means no restriction.
	AllowedMediaTypes []string
}

// StorageUploadParams is the metadata this service passes to the media
// backend.
type StorageUploadParams struct {
	FileName  string
	MediaType string
	Folder    string
}

// StorageUploadResult is what the media backend reports for a stored file.
type StorageUploadResult struct {
	PublicID string
	URL      string
	Size     int64
}

// ===============================
// DESIGNER PIPELINE TYPES
// ===============================

// DesignerLabel is one label field of the external design tool payload.
type DesignerLabel struct {
	Value  string `json:"value"`
	Value2 string `json:"value2,omitempty"`
}

// DesignerPublishRequest is the inbound payload of the designer publish flow.
// Image holds the inline-encoded badge, `data:<mime>;<encoding>,<payload>`.
type DesignerPublishRequest struct {
	RecordID       int64         `json:"record_id" validate:"required,gt=0"`
	Image          string        `json:"image" validate:"required"`
	PrimaryLabel   DesignerLabel `json:"primaryLabel"`
	SecondaryLabel DesignerLabel `json:"secondaryLabel"`
}

// DesignerPublishResult is the success response of the designer publish flow.
type DesignerPublishResult struct {
	AssetID  int64                    `json:"asset_id"`
	ImageSet bool                     `json:"image_set"`
	Validity *models.ValiditySnapshot `json:"validity,omitempty"`
}

// SuggestedFilename is returned with every designer publish failure so the
// design tool can fall back to a plain download.
const SuggestedFilename = "badge.png"
