package services

import (
	"context"
	"errors"
	"strings"

	"badgehub/internal/datauri"
	"badgehub/internal/staging"

	"go.uber.org/zap"
)

// designerService implements DesignerService. One Publish call handles one
// externally-submitted badge image end to end; steps are strictly sequential
// and the first failure aborts the run. Whatever the outcome, the staged
// temporary file is removed before Publish returns.
type designerService struct {
	decoder      *datauri.Decoder
	store        *staging.Store
	assets       AssetService
	badges       BadgeService
	allowedTypes []string
	logger       *zap.Logger
}

// NewDesignerService creates the designer publish orchestrator. All
// collaborators are explicit; nothing is registered on a shared bus.
// allowedMediaTypes restricts the submitted image types; nil falls back to
// PNG only.
func NewDesignerService(
	decoder *datauri.Decoder,
	store *staging.Store,
	assets AssetService,
	badges BadgeService,
	allowedMediaTypes []string,
	logger *zap.Logger,
) DesignerService {
	if len(allowedMediaTypes) == 0 {
		allowedMediaTypes = []string{"image/png"}
	}
	return &designerService{
		decoder:      decoder,
		store:        store,
		assets:       assets,
		badges:       badges,
		allowedTypes: allowedMediaTypes,
		logger:       logger,
	}
}

// Publish ingests one designer-submitted badge image and attaches it to the
// target record. Authorization must have been checked before this is called.
func (s *designerService) Publish(ctx context.Context, req *DesignerPublishRequest) (*DesignerPublishResult, error) {
	if req == nil || req.Image == "" {
		return nil, NewPayloadError("the badge designer payload has no image", nil)
	}
	if !strings.HasPrefix(req.Image, datauri.Scheme) {
		return nil, NewPayloadError("the badge designer image is not an inline data URI", nil)
	}

	raw, mediaType, err := s.decoder.Decode(req.Image)
	if err != nil {
		return nil, decodeFailure(err)
	}

	// Badge images are stored as PNG, so the staged name is forced to
	// .png whatever the declared media type says.
	staged, err := s.store.Put(raw, ".png", mediaType)
	if err != nil {
		s.logger.Error("Failed to stage designer image", zap.Error(err))
		return nil, NewInternalError("error saving the badge designer image")
	}
	defer staged.Close()

	recordID := req.RecordID
	asset, err := s.assets.Ingest(ctx, staged, &IngestParams{
		RecordID:          &recordID,
		PrimaryLabel:      req.PrimaryLabel.Value,
		SecondaryLabel:    req.SecondaryLabel.Value,
		SecondaryLabel2:   req.SecondaryLabel.Value2,
		AllowedMediaTypes: s.allowedTypes,
	})
	if err != nil {
		return nil, err
	}

	validity, err := s.badges.RefreshValidity(ctx, recordID)
	if err != nil {
		// The image is ingested and attached; a failed refresh only delays
		// the snapshot until the next save.
		s.logger.Warn("Failed to refresh validity after image ingestion",
			zap.Int64("record_id", recordID),
			zap.Error(err),
		)
		validity = nil
	}

	s.logger.Info("Designer image published",
		zap.Int64("record_id", recordID),
		zap.Int64("asset_id", asset.ID),
	)

	return &DesignerPublishResult{
		AssetID:  asset.ID,
		ImageSet: true,
		Validity: validity,
	}, nil
}

// decodeFailure maps decoder failure classes onto the pipeline error
// taxonomy with the user-facing messages of the designer flow.
func decodeFailure(err error) *ServiceError {
	switch {
	case errors.Is(err, datauri.ErrUnsupportedEncoding):
		return NewUnsupportedEncodingError("error decoding the badge designer image data: unknown encoding", err)
	case errors.Is(err, datauri.ErrDecode):
		return NewDecodeError("error decoding the badge designer image data: bad base64 data", err)
	default:
		return NewPayloadError("error decoding the badge designer image data", err)
	}
}
