package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"badgehub/internal/events"
	"badgehub/internal/models"
	"badgehub/internal/repositories"
	"badgehub/internal/staging"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugNumeric = regexp.MustCompile(`^\d+$`)
)

// assetService implements AssetService.
type assetService struct {
	storage AssetStorage
	assets  repositories.AssetRepository
	events  events.EventBus
	logger  *zap.Logger
	folder  string
}

// NewAssetService creates a new asset ingestion service. folder is the media
// backend folder new assets are stored under.
func NewAssetService(
	storage AssetStorage,
	assets repositories.AssetRepository,
	bus events.EventBus,
	logger *zap.Logger,
	folder string,
) AssetService {
	if folder == "" {
		folder = "badges"
	}
	return &assetService{
		storage: storage,
		assets:  assets,
		events:  bus,
		logger:  logger,
		folder:  folder,
	}
}

// Ingest turns a staged file into a managed asset. The media-type allow-list
// is checked first, against the declared type, before any bytes move. When
// params.RecordID is set the asset is also attached as the record's image;
// attach failure after a successful ingest is reported as a distinct
// ATTACHMENT_ERROR and the asset is left in place.
func (s *assetService) Ingest(ctx context.Context, staged *staging.File, params *IngestParams) (*models.Asset, error) {
	if params == nil {
		params = &IngestParams{}
	}

	if len(params.AllowedMediaTypes) > 0 && !slices.Contains(params.AllowedMediaTypes, staged.ContentType) {
		return nil, NewValidationError(
			fmt.Sprintf("media type %q is not accepted for this upload", staged.ContentType), nil)
	}

	title := deriveTitle(params)

	uploaded, err := s.storage.UploadFile(ctx, staged.Path, &StorageUploadParams{
		FileName:  staged.Name,
		MediaType: staged.ContentType,
		Folder:    s.folder,
	})
	if err != nil {
		s.logger.Error("Asset store rejected upload",
			zap.String("file", staged.Name),
			zap.String("media_type", staged.ContentType),
			zap.Error(err),
		)
		return nil, NewIngestionError("failed to store the badge image", err)
	}

	asset := &models.Asset{
		PublicID:       uploaded.PublicID,
		FilePath:       staged.Name,
		URL:            uploaded.URL,
		MediaType:      staged.ContentType,
		ParentRecordID: params.RecordID,
		Title:          title,
		BodyText:       "",
		Size:           uploaded.Size,
	}

	if err := s.assets.Create(ctx, asset); err != nil {
		s.logger.Error("Failed to record ingested asset",
			zap.String("public_id", uploaded.PublicID),
			zap.Error(err),
		)
		return nil, NewIngestionError("failed to record the badge image", err)
	}

	s.logger.Info("Asset ingested",
		zap.Int64("asset_id", asset.ID),
		zap.String("public_id", asset.PublicID),
		zap.String("title", asset.Title),
		zap.Int64("size", asset.Size),
	)

	if params.RecordID != nil {
		if err := s.assets.SetRecordImage(ctx, *params.RecordID, asset.ID); err != nil {
			// The asset exists and stays; report the partial state distinctly.
			s.logger.Error("Failed to attach asset to record",
				zap.Int64("asset_id", asset.ID),
				zap.Int64("record_id", *params.RecordID),
				zap.Error(err),
			)
			return asset, NewAttachmentError("unable to set the badge as the record image", err)
		}
	}

	if err := s.events.Publish(ctx, events.NewImageIngestedEvent(asset.ID, params.RecordID, asset.Size)); err != nil {
		s.logger.Warn("Failed to publish image ingested event", zap.Error(err))
	}

	return asset, nil
}

// deriveTitle builds the asset title: explicit override first, then the
// slugified primary label, then the combined secondary labels. A purely
// numeric candidate is rejected at each step; if the last fallback is also
// numeric the title stays empty.
func deriveTitle(params *IngestParams) string {
	if params.TitleOverride != "" {
		return params.TitleOverride
	}

	title := slugify(params.PrimaryLabel)
	if title != "" && !slugNumeric.MatchString(title) {
		return title
	}

	title = slugify(strings.TrimSpace(params.SecondaryLabel + " " + params.SecondaryLabel2))
	if slugNumeric.MatchString(title) {
		return ""
	}
	return title
}

// slugify reduces label text to a URL-safe slug.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
