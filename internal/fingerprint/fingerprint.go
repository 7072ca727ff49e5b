// Package fingerprint computes stable content digests used as cache keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/creatorpulse/hub/internal/models"
)

// Text returns the hex digest of the normalized text. Identical text always
// yields the same key, which is what makes embedding cache entries immutable.
func Text(text string) string {
	normalized := strings.TrimSpace(text)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Dataset returns a digest over the full comment records in order, not just
// their texts: two datasets that share texts but differ in likes, sentiment,
// or any other field must get distinct ids, because downstream metrics are
// computed from those fields. Re-submission of identical records yields the
// same dataset id (idempotent ingestion).
func Dataset(comments []models.Comment) string {
	h := sha256.New()
	for _, c := range comments {
		// Marshal of a struct with scalar fields cannot fail, and field
		// order follows declaration order, so the serialization is canonical.
		record, _ := json.Marshal(c)
		h.Write(record)
		// Separator prevents adjacent records from ambiguous concatenation.
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
