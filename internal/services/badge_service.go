package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"badgehub/internal/cache"
	"badgehub/internal/events"
	"badgehub/internal/models"
	"badgehub/internal/repositories"

	"go.uber.org/zap"
)

var (
	versionBare   = regexp.MustCompile(`^\d+$`)
	versionDotted = regexp.MustCompile(`^\d+(\.\d+)+$`)
)

// NormalizeVersion canonicalizes a user-supplied version string into dotted
// numeric form: bare digits get ".0" appended, an already dotted-numeric
// value passes unchanged, anything else becomes the default. The result is
// always non-empty.
func NormalizeVersion(s string) string {
	switch {
	case versionBare.MatchString(s):
		return s + ".0"
	case versionDotted.MatchString(s):
		return s
	default:
		return models.DefaultVersion
	}
}

// badgeService implements BadgeService.
type badgeService struct {
	badges repositories.BadgeRepository
	assets repositories.AssetRepository
	cache  cache.Cache
	events events.EventBus
	logger *zap.Logger
}

// NewBadgeService creates a new badge service.
func NewBadgeService(
	badges repositories.BadgeRepository,
	assets repositories.AssetRepository,
	c cache.Cache,
	bus events.EventBus,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		badges: badges,
		assets: assets,
		cache:  c,
		events: bus,
		logger: logger,
	}
}

// ===============================
// RECORD OPERATIONS
// ===============================

// CreateBadge creates a record and runs the save hook on it, so even a brand
// new record carries a persisted validity snapshot.
func (s *badgeService) CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*SaveBadgeResult, error) {
	record := &models.BadgeRecord{
		Title:        req.Title,
		Status:       req.Status,
		CriteriaText: req.CriteriaText,
	}

	if err := s.badges.Create(ctx, record); err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to create badge: %v", err))
	}

	return s.finishSave(ctx, record, req.Version, req.Description)
}

// GetBadge returns the read model of one record.
func (s *badgeService) GetBadge(ctx context.Context, id int64) (*BadgeView, error) {
	if cached, found := s.cache.Get(ctx, badgeCacheKey(id)); found {
		if view, ok := cached.(*BadgeView); ok {
			return view, nil
		}
	}

	record, err := s.badges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("badge %d not found", id))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to load badge: %v", err))
	}

	view := &BadgeView{
		Record:       record,
		DisplayTitle: record.DisplayTitle(),
		Description:  s.description(record),
		Version:      record.Version(),
		Validity:     EvaluateValidity(record, s.locateImageFile(ctx, record)),
	}

	if err := s.cache.Set(ctx, badgeCacheKey(id), view, 5*time.Minute); err != nil {
		s.logger.Warn("Failed to cache badge view", zap.Int64("badge_id", id), zap.Error(err))
	}

	return view, nil
}

// SaveBadge applies one explicit user edit. Every save, whatever its origin,
// ends in the validity hook: the snapshot is recomputed and persisted, and
// facet failures come back as warnings, never as errors.
func (s *badgeService) SaveBadge(ctx context.Context, req *SaveBadgeRequest) (*SaveBadgeResult, error) {
	record, err := s.badges.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("badge %d not found", req.ID))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to load badge: %v", err))
	}

	record.Title = req.Title
	record.CriteriaText = req.CriteriaText
	if req.Status != "" {
		record.Status = req.Status
	}

	if err := s.badges.Update(ctx, record); err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to update badge: %v", err))
	}

	return s.finishSave(ctx, record, req.Version, req.Description)
}

// ListBadges returns listing rows with version and the persisted invalid
// indicator for published records.
func (s *badgeService) ListBadges(ctx context.Context, limit, offset int) ([]*models.BadgeSummary, error) {
	summaries, err := s.badges.List(ctx, limit, offset)
	if err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to list badges: %v", err))
	}
	return summaries, nil
}

// RefreshValidity recomputes and persists the snapshot without touching any
// user-editable field.
func (s *badgeService) RefreshValidity(ctx context.Context, recordID int64) (*models.ValiditySnapshot, error) {
	record, err := s.badges.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("badge %d not found", recordID))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to load badge: %v", err))
	}

	validity, err := s.persistValidity(ctx, record)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, recordID)
	return &validity, nil
}

// ===============================
// SAVE HOOK
// ===============================

// finishSave runs the shared tail of every save: version and description meta
// persistence, validity recomputation, event publication.
func (s *badgeService) finishSave(ctx context.Context, record *models.BadgeRecord, version, description string) (*SaveBadgeResult, error) {
	if err := s.persistVersion(ctx, record, version); err != nil {
		return nil, err
	}
	if err := s.persistDescription(ctx, record, description); err != nil {
		return nil, err
	}

	validity, err := s.persistValidity(ctx, record)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, record.ID)

	if err := s.events.Publish(ctx, events.NewBadgeSavedEvent(record.ID, record.Status, validity.Overall)); err != nil {
		s.logger.Warn("Failed to publish badge saved event",
			zap.Int64("badge_id", record.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("Badge saved",
		zap.Int64("badge_id", record.ID),
		zap.String("status", record.Status),
		zap.Bool("valid", validity.Overall),
	)

	return &SaveBadgeResult{
		Record:   record,
		Validity: validity,
		Warnings: validity.Warnings(),
	}, nil
}

// persistVersion applies the version meta rules for one submitted value:
// an empty submission removes the stored value (by key, not by value);
// otherwise the normalized value is written only when it changes something.
func (s *badgeService) persistVersion(ctx context.Context, record *models.BadgeRecord, submitted string) error {
	stored := record.Meta[models.MetaKeyVersion]

	if submitted == "" {
		if stored == "" {
			return nil
		}
		if err := s.badges.DeleteMeta(ctx, record.ID, models.MetaKeyVersion); err != nil {
			return NewInternalError(fmt.Sprintf("failed to remove badge version: %v", err))
		}
		delete(record.Meta, models.MetaKeyVersion)
		return nil
	}

	normalized := NormalizeVersion(submitted)
	if normalized == stored {
		return nil
	}
	if err := s.badges.SetMeta(ctx, record.ID, models.MetaKeyVersion, normalized); err != nil {
		return NewInternalError(fmt.Sprintf("failed to store badge version: %v", err))
	}
	s.setMetaLocal(record, models.MetaKeyVersion, normalized)
	return nil
}

// persistDescription stores the markup-stripped description meta; a result
// that is empty after trimming removes the key, so whitespace-only
// submissions never leave a description behind.
func (s *badgeService) persistDescription(ctx context.Context, record *models.BadgeRecord, submitted string) error {
	value := strings.TrimSpace(StripTags(submitted))

	if value == "" {
		if err := s.badges.DeleteMeta(ctx, record.ID, models.MetaKeyDescription); err != nil {
			return NewInternalError(fmt.Sprintf("failed to remove badge description: %v", err))
		}
		delete(record.Meta, models.MetaKeyDescription)
		return nil
	}

	if err := s.badges.SetMeta(ctx, record.ID, models.MetaKeyDescription, value); err != nil {
		return NewInternalError(fmt.Sprintf("failed to store badge description: %v", err))
	}
	s.setMetaLocal(record, models.MetaKeyDescription, value)
	return nil
}

// persistValidity recomputes the snapshot and stores the overall flag under
// the well-known meta key read by listings.
func (s *badgeService) persistValidity(ctx context.Context, record *models.BadgeRecord) (models.ValiditySnapshot, error) {
	validity := EvaluateValidity(record, s.locateImageFile(ctx, record))

	if err := s.badges.SetMeta(ctx, record.ID, models.MetaKeyValid, strconv.FormatBool(validity.Overall)); err != nil {
		return validity, NewInternalError(fmt.Sprintf("failed to store badge validity: %v", err))
	}
	s.setMetaLocal(record, models.MetaKeyValid, strconv.FormatBool(validity.Overall))

	return validity, nil
}

// ===============================
// HELPERS
// ===============================

// locateImageFile resolves the backing file of the record's image asset.
// Empty means "no image" for validity purposes: no reference, a dangling
// reference, and an asset without a backing file all count the same.
func (s *badgeService) locateImageFile(ctx context.Context, record *models.BadgeRecord) string {
	if record.ImageAssetID == nil {
		return ""
	}

	asset, err := s.assets.GetByID(ctx, *record.ImageAssetID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn("Failed to locate image asset",
				zap.Int64("badge_id", record.ID),
				zap.Int64("asset_id", *record.ImageAssetID),
				zap.Error(err),
			)
		}
		return ""
	}

	return asset.FilePath
}

// description returns the description meta, falling back to the
// markup-stripped criteria text for records predating the description field.
func (s *badgeService) description(record *models.BadgeRecord) string {
	if desc := record.Meta[models.MetaKeyDescription]; desc != "" {
		return desc
	}

	desc := StripTags(record.CriteriaText)
	desc = strings.NewReplacer("\r", "", "\n", "").Replace(desc)
	return desc
}

func (s *badgeService) setMetaLocal(record *models.BadgeRecord, key, value string) {
	if record.Meta == nil {
		record.Meta = make(map[string]string)
	}
	record.Meta[key] = value
}

func (s *badgeService) invalidate(ctx context.Context, recordID int64) {
	if err := s.cache.Delete(ctx, badgeCacheKey(recordID)); err != nil {
		s.logger.Warn("Failed to invalidate badge cache", zap.Int64("badge_id", recordID), zap.Error(err))
	}
}

func badgeCacheKey(id int64) string {
	return fmt.Sprintf("badge:%d", id)
}
