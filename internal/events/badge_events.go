package events

import "time"

// Event types published by the badge services.
const (
	EventTypeBadgeSaved    = "badge.saved"
	EventTypeImageIngested = "badge.image_ingested"
)

// BadgeSavedEvent is emitted after every badge record save, once the
// validity snapshot has been recomputed and persisted.
type BadgeSavedEvent struct {
	BaseEvent
	RecordID int64  `json:"record_id"`
	Status   string `json:"status"`
	Valid    bool   `json:"valid"`
}

// NewBadgeSavedEvent creates a new BadgeSavedEvent.
func NewBadgeSavedEvent(recordID int64, status string, valid bool) *BadgeSavedEvent {
	return &BadgeSavedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeBadgeSaved,
			Timestamp: time.Now(),
		},
		RecordID: recordID,
		Status:   status,
		Valid:    valid,
	}
}

// ImageIngestedEvent is emitted when a staged badge image has been stored as
// a managed asset. RecordID is nil for unattached ingestions.
type ImageIngestedEvent struct {
	BaseEvent
	AssetID  int64  `json:"asset_id"`
	RecordID *int64 `json:"record_id,omitempty"`
	Size     int64  `json:"size"`
}

// NewImageIngestedEvent creates a new ImageIngestedEvent.
func NewImageIngestedEvent(assetID int64, recordID *int64, size int64) *ImageIngestedEvent {
	return &ImageIngestedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeImageIngested,
			Timestamp: time.Now(),
		},
		AssetID:  assetID,
		RecordID: recordID,
		Size:     size,
	}
}
