// Package image holds the board record model the query engine evaluates against.
package image

import (
	"strconv"
	"time"
)

// Image is a single board record as returned by the image API.
// Uploader is nil for anonymous uploads.
type Image struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name,omitempty"`
	Tags           []string `json:"tags"`
	TagIDs         []int64  `json:"tag_ids,omitempty"`
	TagCount       int      `json:"tag_count"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	AspectRatio    float64  `json:"aspect_ratio"`
	CommentCount   int      `json:"comment_count"`
	Score          int      `json:"score"`
	Upvotes        int      `json:"upvotes"`
	Downvotes      int      `json:"downvotes"`
	Faves          int      `json:"faves"`
	CreatedAt      string   `json:"created_at"`
	Uploader       *string  `json:"uploader"`
	SourceURL      string   `json:"source_url"`
	Description    string   `json:"description"`
	SHA512Hash     string   `json:"sha512_hash"`
	OrigSHA512Hash string   `json:"orig_sha512_hash"`
}

// dateLayouts are tried in order when reading record timestamps.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Number returns the value of a numeric field.
func (img *Image) Number(f Field) (float64, bool) {
	switch f {
	case FieldID:
		return float64(img.ID), true
	case FieldWidth:
		return float64(img.Width), true
	case FieldHeight:
		return float64(img.Height), true
	case FieldAspectRatio:
		return img.AspectRatio, true
	case FieldCommentCount:
		return float64(img.CommentCount), true
	case FieldScore:
		return float64(img.Score), true
	case FieldUpvotes:
		return float64(img.Upvotes), true
	case FieldDownvotes:
		return float64(img.Downvotes), true
	case FieldFaves:
		return float64(img.Faves), true
	case FieldTagCount:
		return float64(img.TagCount), true
	default:
		return 0, false
	}
}

// Date returns the value of a date field. Unparseable timestamps report false.
func (img *Image) Date(f Field) (time.Time, bool) {
	if f != FieldCreatedAt || img.CreatedAt == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, img.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Literal returns the string value of a single-valued literal field.
// Tags are multi-valued and are read through Tags directly.
func (img *Image) Literal(f Field) (string, bool) {
	switch f {
	case FieldSHA512Hash:
		return img.SHA512Hash, true
	case FieldOrigSHA512Hash:
		return img.OrigSHA512Hash, true
	case FieldSourceURL:
		return img.SourceURL, true
	case FieldDescription:
		return img.Description, true
	case FieldUploader:
		if img.Uploader == nil {
			return "", false
		}
		return *img.Uploader, true
	case FieldScore:
		return strconv.Itoa(img.Score), true
	default:
		return "", false
	}
}

// HasTagID reports whether the image carries any of the given tag ids.
func (img *Image) HasTagID(ids []int64) bool {
	for _, have := range img.TagIDs {
		for _, want := range ids {
			if have == want {
				return true
			}
		}
	}
	return false
}
