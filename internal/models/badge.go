package models

import (
	"fmt"
	"time"
)

// Badge record statuses as persisted by the content store. The validity rule
// treats status as read-only input.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusTrashed   = "trashed"
)

// Metadata keys attached to badge records.
const (
	MetaKeyVersion     = "badge-version"
	MetaKeyDescription = "badge-description"
	MetaKeyValid       = "badge-valid"
)

// DefaultVersion is stored when a submitted version is absent or malformed.
const DefaultVersion = "1.0"

// MaxDescriptionLength is the effective description bound for validity.
const MaxDescriptionLength = 128

// BadgeRecord represents one publishable badge. The id is assigned by the
// store on creation and immutable thereafter. Validity is a stored snapshot,
// recomputed on every save, never derived lazily at read time.
type BadgeRecord struct {
	ID           int64             `json:"id" db:"id"`
	Title        string            `json:"title" db:"title"`
	Status       string            `json:"status" db:"status"`
	CriteriaText string            `json:"criteria_text" db:"criteria_text"`
	ImageAssetID *int64            `json:"image_asset_id,omitempty" db:"image_asset_id"`
	Meta         map[string]string `json:"meta,omitempty" db:"-"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// IsPublished reports whether the record is in the published status.
func (r *BadgeRecord) IsPublished() bool {
	return r.Status == StatusPublished
}

// Version returns the stored version meta, or the default when absent.
func (r *BadgeRecord) Version() string {
	if v, ok := r.Meta[MetaKeyVersion]; ok && v != "" {
		return v
	}
	return DefaultVersion
}

// DisplayTitle renders the title with its version suffix, the form used in
// public badge views.
func (r *BadgeRecord) DisplayTitle() string {
	return fmt.Sprintf("%s (Version %s)", r.Title, r.Version())
}

// Asset is a managed binary resource owned by the asset store. A badge record
// holds at most a weak reference (id only) to its image asset.
type Asset struct {
	ID             int64     `json:"id" db:"id"`
	PublicID       string    `json:"public_id" db:"public_id"`
	FilePath       string    `json:"file_path" db:"file_path"`
	URL            string    `json:"url" db:"url"`
	MediaType      string    `json:"media_type" db:"media_type"`
	ParentRecordID *int64    `json:"parent_record_id,omitempty" db:"parent_record_id"`
	Title          string    `json:"title" db:"title"`
	BodyText       string    `json:"body_text" db:"body_text"`
	Size           int64     `json:"size" db:"size"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ValiditySnapshot holds the six boolean facets of the badge validity rule
// plus the derived overall flag. HasImage gates ImageIsPng: with no image set,
// ImageIsPng stays true so only HasImage blocks the overall AND.
type ValiditySnapshot struct {
	HasImage            bool `json:"has_image"`
	ImageIsPng          bool `json:"image_is_png"`
	HasDescription      bool `json:"has_description"`
	DescriptionLengthOk bool `json:"description_length_ok"`
	HasCriteria         bool `json:"has_criteria"`
	IsPublished         bool `json:"is_published"`
	Overall             bool `json:"overall"`
}

// Warnings expands the failing facets into editor-facing messages. Facet
// failures never block a save.
func (v ValiditySnapshot) Warnings() []string {
	var warnings []string
	if !v.HasImage {
		warnings = append(warnings, "You must set a badge image.")
	}
	if !v.ImageIsPng {
		warnings = append(warnings, "You must set a badge image that is a PNG file.")
	}
	if !v.HasDescription {
		warnings = append(warnings, "You must enter a badge description.")
	}
	if !v.DescriptionLengthOk {
		warnings = append(warnings, fmt.Sprintf("The description cannot be longer than %d characters.", MaxDescriptionLength))
	}
	if !v.HasCriteria {
		warnings = append(warnings, "You must enter the badge criteria.")
	}
	if !v.IsPublished {
		warnings = append(warnings, "The badge has not been published.")
	}
	return warnings
}

// BadgeSummary is one row of a badge listing. Invalid is only meaningful for
// published records; it reflects the persisted validity flag, not a fresh
// evaluation.
type BadgeSummary struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Version string `json:"version"`
	Invalid bool   `json:"invalid"`
}
