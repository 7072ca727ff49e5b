package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorpulse/hub/internal/models"
)

func TestTopKeywords(t *testing.T) {
	t.Run("counts tokens across texts", func(t *testing.T) {
		texts := []string{
			"tutorial on docker networking",
			"docker tutorial was confusing",
			"docker compose next",
		}
		keywords := TopKeywords(texts, 3)

		require.Len(t, keywords, 3)
		assert.Equal(t, models.KeywordCount{Keyword: "docker", Count: 3}, keywords[0])
		assert.Equal(t, models.KeywordCount{Keyword: "tutorial", Count: 2}, keywords[1])
	})

	t.Run("filters stopwords and short tokens", func(t *testing.T) {
		keywords := TopKeywords([]string{"i really like the video a lot"}, 10)

		for _, kw := range keywords {
			assert.NotContains(t, []string{"i", "really", "like", "the", "video", "a"}, kw.Keyword)
		}
		assert.Equal(t, []models.KeywordCount{{Keyword: "lot", Count: 1}}, keywords)
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		keywords := TopKeywords([]string{"zebra apple zebra apple"}, 2)

		require.Len(t, keywords, 2)
		assert.Equal(t, "apple", keywords[0].Keyword)
		assert.Equal(t, "zebra", keywords[1].Keyword)
	})

	t.Run("truncates to topN", func(t *testing.T) {
		keywords := TopKeywords([]string{"alpha beta gamma delta epsilon"}, 2)
		assert.Len(t, keywords, 2)
	})

	t.Run("non-positive topN returns nil", func(t *testing.T) {
		assert.Nil(t, TopKeywords([]string{"anything"}, 0))
	})

	t.Run("punctuation splits tokens", func(t *testing.T) {
		keywords := TopKeywords([]string{"kubernetes!kubernetes,kubernetes"}, 1)

		require.Len(t, keywords, 1)
		assert.Equal(t, models.KeywordCount{Keyword: "kubernetes", Count: 3}, keywords[0])
	})
}
