package services

import (
	"path/filepath"
	"strings"

	"badgehub/internal/models"
)

// EvaluateValidity computes the six-facet validity snapshot for a badge
// record. imageFile is the located backing file of the record's image asset,
// empty when the record has no image reference or the file cannot be located.
//
// ImageIsPng starts true and only flips to the extension check once an image
// is actually present, so a missing image fails exactly one facet. The
// extension is trusted as-is; no magic-byte sniffing.
//
// The function is pure: persisting the snapshot is the caller's job, and
// recomputing it on an unchanged record yields an identical result.
func EvaluateValidity(record *models.BadgeRecord, imageFile string) models.ValiditySnapshot {
	v := models.ValiditySnapshot{
		ImageIsPng: true,
	}

	if record.ImageAssetID != nil && imageFile != "" {
		v.HasImage = true
		ext := strings.TrimPrefix(filepath.Ext(imageFile), ".")
		v.ImageIsPng = strings.EqualFold(ext, "png")
	}

	desc := record.Meta[models.MetaKeyDescription]
	v.HasDescription = desc != ""
	v.DescriptionLengthOk = len(desc) <= models.MaxDescriptionLength

	v.HasCriteria = strings.TrimSpace(StripTags(record.CriteriaText)) != ""

	v.IsPublished = record.IsPublished()

	v.Overall = v.HasImage &&
		v.ImageIsPng &&
		v.HasDescription &&
		v.DescriptionLengthOk &&
		v.HasCriteria &&
		v.IsPublished

	return v
}

// StripTags removes HTML/XML markup from s, keeping the text content.
// Unterminated tags are dropped to their end of input.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
