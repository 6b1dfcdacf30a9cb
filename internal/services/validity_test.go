package services

import (
	"strings"
	"testing"

	"badgehub/internal/models"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestEvaluateValidityAllFacetsPass(t *testing.T) {
	record := &models.BadgeRecord{
		ID:           1,
		Title:        "Code Reviewer",
		Status:       models.StatusPublished,
		CriteriaText: "<p>Review ten pull requests.</p>",
		ImageAssetID: int64Ptr(7),
		Meta: map[string]string{
			models.MetaKeyDescription: "Awarded for sustained review work.",
		},
	}

	v := EvaluateValidity(record, "badgehub-abc.png")

	assert.True(t, v.HasImage)
	assert.True(t, v.ImageIsPng)
	assert.True(t, v.HasDescription)
	assert.True(t, v.DescriptionLengthOk)
	assert.True(t, v.HasCriteria)
	assert.True(t, v.IsPublished)
	assert.True(t, v.Overall)
	assert.Empty(t, v.Warnings())
}

func TestEvaluateValidityFacets(t *testing.T) {
	base := func() *models.BadgeRecord {
		return &models.BadgeRecord{
			ID:           1,
			Title:        "Code Reviewer",
			Status:       models.StatusPublished,
			CriteriaText: "Review ten pull requests.",
			ImageAssetID: int64Ptr(7),
			Meta: map[string]string{
				models.MetaKeyDescription: "Awarded for sustained review work.",
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*models.BadgeRecord)
		imageFile string
		check     func(*testing.T, models.ValiditySnapshot)
	}{
		{
			name:      "missing image fails only one facet",
			mutate:    func(r *models.BadgeRecord) { r.ImageAssetID = nil },
			imageFile: "",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.False(t, v.HasImage)
				assert.True(t, v.ImageIsPng, "png facet defaults true with no image")
				assert.False(t, v.Overall)
				assert.Len(t, v.Warnings(), 1)
			},
		},
		{
			name:      "dangling image reference counts as no image",
			mutate:    func(r *models.BadgeRecord) {},
			imageFile: "",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.False(t, v.HasImage)
				assert.True(t, v.ImageIsPng)
			},
		},
		{
			name:      "non-png image fails the png facet",
			mutate:    func(r *models.BadgeRecord) {},
			imageFile: "badgehub-abc.jpg",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.True(t, v.HasImage)
				assert.False(t, v.ImageIsPng)
				assert.False(t, v.Overall)
			},
		},
		{
			name:      "png extension check is case-insensitive",
			mutate:    func(r *models.BadgeRecord) {},
			imageFile: "BADGE.PNG",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.True(t, v.ImageIsPng)
			},
		},
		{
			name:      "missing description",
			mutate:    func(r *models.BadgeRecord) { delete(r.Meta, models.MetaKeyDescription) },
			imageFile: "a.png",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.False(t, v.HasDescription)
				assert.True(t, v.DescriptionLengthOk, "empty description is within bounds")
				assert.False(t, v.Overall)
			},
		},
		{
			name: "overlong description",
			mutate: func(r *models.BadgeRecord) {
				r.Meta[models.MetaKeyDescription] = strings.Repeat("x", models.MaxDescriptionLength+1)
			},
			imageFile: "a.png",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.True(t, v.HasDescription)
				assert.False(t, v.DescriptionLengthOk)
			},
		},
		{
			name: "description at the bound passes",
			mutate: func(r *models.BadgeRecord) {
				r.Meta[models.MetaKeyDescription] = strings.Repeat("x", models.MaxDescriptionLength)
			},
			imageFile: "a.png",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.True(t, v.DescriptionLengthOk)
			},
		},
		{
			name:      "markup-only criteria counts as empty",
			mutate:    func(r *models.BadgeRecord) { r.CriteriaText = "<p>  </p>" },
			imageFile: "a.png",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.False(t, v.HasCriteria)
				assert.False(t, v.Overall)
			},
		},
		{
			name:      "draft record is not published",
			mutate:    func(r *models.BadgeRecord) { r.Status = models.StatusDraft },
			imageFile: "a.png",
			check: func(t *testing.T, v models.ValiditySnapshot) {
				assert.False(t, v.IsPublished)
				assert.False(t, v.Overall)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := base()
			tt.mutate(record)
			tt.check(t, EvaluateValidity(record, tt.imageFile))
		})
	}
}

func TestEvaluateValidityIdempotent(t *testing.T) {
	record := &models.BadgeRecord{
		ID:           3,
		Title:        "Mentor",
		Status:       models.StatusDraft,
		CriteriaText: "Mentor a new contributor.",
		Meta:         map[string]string{},
	}

	first := EvaluateValidity(record, "")
	second := EvaluateValidity(record, "")
	assert.Equal(t, first, second)
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"simple markup removed", "<p>hello</p>", "hello"},
		{"nested markup removed", "<div><b>bold</b> text</div>", "bold text"},
		{"attributes removed", `<a href="https://example.com">link</a>`, "link"},
		{"unterminated tag dropped", "before <broken", "before "},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.input))
		})
	}
}
