package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"badgehub/internal/models"
	"badgehub/internal/repositories"
)

// fakeBadgeRepo is an in-memory BadgeRepository.
type fakeBadgeRepo struct {
	mu      sync.Mutex
	records map[int64]*models.BadgeRecord
	meta    map[int64]map[string]string
	nextID  int64

	setMetaErr    error
	deleteMetaErr error
	setMetaCalls  []string
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{
		records: make(map[int64]*models.BadgeRecord),
		meta:    make(map[int64]map[string]string),
	}
}

func (f *fakeBadgeRepo) Create(ctx context.Context, record *models.BadgeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	record.ID = f.nextID
	if record.Status == "" {
		record.Status = models.StatusDraft
	}
	copied := *record
	f.records[record.ID] = &copied
	f.meta[record.ID] = make(map[string]string)
	return nil
}

func (f *fakeBadgeRepo) GetByID(ctx context.Context, id int64) (*models.BadgeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *stored
	copied.Meta = make(map[string]string, len(f.meta[id]))
	for k, v := range f.meta[id] {
		copied.Meta[k] = v
	}
	return &copied, nil
}

func (f *fakeBadgeRepo) Update(ctx context.Context, record *models.BadgeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[record.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *record
	f.records[record.ID] = &copied
	return nil
}

func (f *fakeBadgeRepo) List(ctx context.Context, limit, offset int) ([]*models.BadgeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var summaries []*models.BadgeSummary
	for id := int64(1); id <= f.nextID; id++ {
		record, ok := f.records[id]
		if !ok {
			continue
		}
		meta := f.meta[id]
		version := meta[models.MetaKeyVersion]
		if version == "" {
			version = models.DefaultVersion
		}
		summaries = append(summaries, &models.BadgeSummary{
			ID:      record.ID,
			Title:   record.Title,
			Status:  record.Status,
			Version: version,
			Invalid: record.Status == models.StatusPublished && meta[models.MetaKeyValid] != "true",
		})
	}
	return summaries, nil
}

func (f *fakeBadgeRepo) GetMeta(ctx context.Context, recordID int64, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.meta[recordID][key]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return value, nil
}

func (f *fakeBadgeRepo) SetMeta(ctx context.Context, recordID int64, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setMetaErr != nil {
		return f.setMetaErr
	}
	f.setMetaCalls = append(f.setMetaCalls, key)
	if f.meta[recordID] == nil {
		f.meta[recordID] = make(map[string]string)
	}
	f.meta[recordID][key] = value
	return nil
}

func (f *fakeBadgeRepo) DeleteMeta(ctx context.Context, recordID int64, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteMetaErr != nil {
		return f.deleteMetaErr
	}
	delete(f.meta[recordID], key)
	return nil
}

func (f *fakeBadgeRepo) storedMeta(recordID int64, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.meta[recordID][key]
	return value, ok
}

func (f *fakeBadgeRepo) setImage(recordID, assetID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[recordID]
	if !ok {
		return false
	}
	record.ImageAssetID = &assetID
	return true
}

// fakeAssetRepo is an in-memory AssetRepository. When badges is set,
// SetRecordImage also updates the record's image reference the way the real
// repository does.
type fakeAssetRepo struct {
	mu     sync.Mutex
	assets map[int64]*models.Asset
	nextID int64
	badges *fakeBadgeRepo

	createErr    error
	setImageErr  error
	imageByBadge map[int64]int64
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{
		assets:       make(map[int64]*models.Asset),
		imageByBadge: make(map[int64]int64),
	}
}

func (f *fakeAssetRepo) Create(ctx context.Context, asset *models.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	asset.ID = f.nextID
	copied := *asset
	f.assets[asset.ID] = &copied
	return nil
}

func (f *fakeAssetRepo) GetByID(ctx context.Context, id int64) (*models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.assets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeAssetRepo) SetRecordImage(ctx context.Context, recordID, assetID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setImageErr != nil {
		return f.setImageErr
	}
	if f.badges != nil && !f.badges.setImage(recordID, assetID) {
		return repositories.ErrNotFound
	}
	f.imageByBadge[recordID] = assetID
	return nil
}

// fakeStorage is an in-memory AssetStorage.
type fakeStorage struct {
	mu        sync.Mutex
	uploads   []string
	uploadErr error
}

func (f *fakeStorage) UploadFile(ctx context.Context, localPath string, params *StorageUploadParams) (*StorageUploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, localPath)
	return &StorageUploadResult{
		PublicID: fmt.Sprintf("%s/%s", params.Folder, params.FileName),
		URL:      fmt.Sprintf("https://cdn.example.com/%s/%s", params.Folder, params.FileName),
		Size:     42,
	}, nil
}

var errStorageDown = errors.New("storage unavailable")
