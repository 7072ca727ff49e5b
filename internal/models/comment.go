// Package models defines the core data types shared across the analysis pipeline.
package models

import "time"

// Comment represents a single audience comment within a dataset.
// Text is the only mandatory field; the rest default to derived values during
// normalization when the source data doesn't carry them.
type Comment struct {
	ID        string     `json:"id,omitempty" validate:"no_null_bytes"`
	Text      string     `json:"text" validate:"no_null_bytes"`
	Likes     float64    `json:"likes"`
	Sentiment float64    `json:"sentiment"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	VideoID   string     `json:"video_id,omitempty" validate:"no_null_bytes"`
	UserID    string     `json:"user_id,omitempty" validate:"no_null_bytes"`
}

// Dataset is an ordered, immutable batch of comments. DatasetID is a content
// hash unless the caller supplied an id, so re-submitting identical content
// yields the same identifier.
type Dataset struct {
	DatasetID string    `json:"dataset_id"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

// Texts returns the comment texts in dataset order.
func (d *Dataset) Texts() []string {
	texts := make([]string, len(d.Comments))
	for i, c := range d.Comments {
		texts[i] = c.Text
	}
	return texts
}
