package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterInsightValidate(t *testing.T) {
	valid := func() ClusterInsight {
		return ClusterInsight{
			Theme:           "Editing pace",
			Classification:  ClassificationConfusion,
			Insight:         "Viewers lose the thread in fast sections",
			SuggestedAction: "Add chapter markers",
			RiskFlag:        "Churn risk",
		}
	}

	t.Run("valid insight passes", func(t *testing.T) {
		ci := valid()
		require.NoError(t, ci.Validate())
	})

	t.Run("every taxonomy value is accepted", func(t *testing.T) {
		for _, c := range []Classification{
			ClassificationRequest,
			ClassificationConfusion,
			ClassificationPraise,
			ClassificationSkepticism,
			ClassificationNoise,
		} {
			ci := valid()
			ci.Classification = c
			assert.NoError(t, ci.Validate(), string(c))
		}
	})

	t.Run("unknown classification is rejected", func(t *testing.T) {
		ci := valid()
		ci.Classification = "Complaint"
		assert.Error(t, ci.Validate())
	})

	t.Run("classification is case sensitive", func(t *testing.T) {
		ci := valid()
		ci.Classification = "request"
		assert.Error(t, ci.Validate())
	})

	t.Run("missing required fields are rejected", func(t *testing.T) {
		ci := valid()
		ci.Theme = ""
		assert.Error(t, ci.Validate())

		ci = valid()
		ci.Insight = ""
		assert.Error(t, ci.Validate())

		ci = valid()
		ci.SuggestedAction = ""
		assert.Error(t, ci.Validate())
	})

	t.Run("empty risk flag defaults to None", func(t *testing.T) {
		ci := valid()
		ci.RiskFlag = ""
		require.NoError(t, ci.Validate())
		assert.Equal(t, "None", ci.RiskFlag)
	})
}
