// Package ingest parses uploaded comment data and normalizes it into datasets.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/fingerprint"
	"github.com/creatorpulse/hub/internal/models"
)

// textColumnPriority is checked first when detecting the comment column.
var textColumnPriority = []string{
	"comment",
	"comment_text",
	"text",
	"body",
	"content",
	"message",
	"caption",
	"transcript",
}

// optionalColumnAliases maps canonical optional fields to accepted headers.
var optionalColumnAliases = map[string][]string{
	"id":        {"comment_id", "id"},
	"likes":     {"likes", "like_count", "upvotes"},
	"sentiment": {"sentiment", "sentiment_score"},
	"timestamp": {"timestamp", "time", "created_at", "datetime", "date"},
	"video_id":  {"video_id", "vid", "post_id"},
	"user_id":   {"user_id", "uid", "author_id"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeHeader lowercases a header and collapses whitespace to underscores.
func normalizeHeader(header string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(header)), "_")
}

// detectTextColumn picks the comment column: a priority-name match first,
// otherwise the column with the longest average cell length above a floor.
func detectTextColumn(headers []string, rows [][]string) int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}

	for _, name := range textColumnPriority {
		if i, ok := index[name]; ok {
			return i
		}
	}

	best := -1
	bestLen := 10.0 // floor: shorter columns are ids/labels, not comments
	for col := range headers {
		var total float64
		for _, row := range rows {
			if col < len(row) {
				total += float64(len(row[col]))
			}
		}
		if len(rows) == 0 {
			continue
		}
		avg := total / float64(len(rows))
		if avg > bestLen {
			bestLen = avg
			best = col
		}
	}
	return best
}

// ParseCSV reads a CSV of comments, normalizes column names, detects the text
// column, and maps optional columns through their aliases. Returns a
// ValidationError when no usable text column exists.
func ParseCSV(r io.Reader) ([]models.Comment, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewValidationError("csv", fmt.Sprintf("failed to parse CSV: %v", err))
	}
	if len(records) < 2 {
		return nil, apperrors.NewValidationError("csv", "CSV has no data rows")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = normalizeHeader(h)
	}
	rows := records[1:]

	textCol := detectTextColumn(headers, rows)
	if textCol < 0 {
		return nil, apperrors.NewValidationError("csv", "no comment column detected")
	}

	optional := resolveOptionalColumns(headers)

	comments := make([]models.Comment, 0, len(rows))
	seen := make(map[string]struct{})
	for _, row := range rows {
		if textCol >= len(row) {
			continue
		}
		text := strings.TrimSpace(row[textCol])
		if text == "" {
			continue
		}

		c := models.Comment{Text: text}
		if col, ok := optional["id"]; ok && col < len(row) {
			c.ID = strings.TrimSpace(row[col])
		}
		if col, ok := optional["likes"]; ok && col < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64); err == nil {
				c.Likes = v
			}
		}
		if col, ok := optional["sentiment"]; ok && col < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64); err == nil {
				c.Sentiment = v
			}
		}
		if col, ok := optional["timestamp"]; ok && col < len(row) {
			if ts, err := parseTimestamp(strings.TrimSpace(row[col])); err == nil {
				c.Timestamp = &ts
			}
		}
		if col, ok := optional["video_id"]; ok && col < len(row) {
			c.VideoID = strings.TrimSpace(row[col])
		}
		if col, ok := optional["user_id"]; ok && col < len(row) {
			c.UserID = strings.TrimSpace(row[col])
		}

		// Dedupe by caller-supplied id when present.
		if c.ID != "" {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
		}

		comments = append(comments, c)
	}

	if len(comments) == 0 {
		return nil, apperrors.NewValidationError("csv", "no usable comments in CSV")
	}

	return comments, nil
}

// resolveOptionalColumns maps each canonical optional field to the first
// matching alias present in the headers.
func resolveOptionalColumns(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}

	resolved := make(map[string]int)
	for field, aliases := range optionalColumnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				resolved[field] = i
				break
			}
		}
	}
	return resolved
}

// timestampLayouts tried in order when parsing timestamp cells.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// BuildDataset applies derived defaults and assigns the content-addressed
// dataset id. The id covers the full records after defaults are applied, so
// datasets differing only in metadata (likes, sentiment, ids) still get
// distinct ids, while identical content stays idempotent.
func BuildDataset(comments []models.Comment) *models.Dataset {
	for i := range comments {
		ApplyDefaults(&comments[i])
	}

	return &models.Dataset{
		DatasetID: fingerprint.Dataset(comments),
		Comments:  comments,
	}
}

// ApplyDefaults fills missing optional fields with derived values: word count
// as an engagement proxy and lexicon polarity as a sentiment proxy.
func ApplyDefaults(c *models.Comment) {
	if c.Likes == 0 {
		c.Likes = float64(len(strings.Fields(c.Text)))
	}
	if c.Sentiment == 0 {
		c.Sentiment = LexiconPolarity(c.Text)
	}
}
