package models

import "fmt"

// Classification is one of a fixed taxonomy of comment-cluster intents.
type Classification string

const (
	ClassificationRequest    Classification = "Request"
	ClassificationConfusion  Classification = "Confusion"
	ClassificationPraise     Classification = "Praise"
	ClassificationSkepticism Classification = "Skepticism"
	ClassificationNoise      Classification = "Noise"
)

// validClassifications is the closed set accepted from the language model.
var validClassifications = map[Classification]struct{}{
	ClassificationRequest:    {},
	ClassificationConfusion:  {},
	ClassificationPraise:     {},
	ClassificationSkepticism: {},
	ClassificationNoise:      {},
}

// ClusterInsight is the structured judgment the language model produces for one
// cluster. It is constructed only after a successful parse and validation; no
// partially-filled insight ever enters a result.
type ClusterInsight struct {
	Theme           string         `json:"theme" jsonschema:"description=Short phrase naming the cluster's theme"`
	Classification  Classification `json:"classification" jsonschema:"enum=Request,enum=Confusion,enum=Praise,enum=Skepticism,enum=Noise"`
	Insight         string         `json:"insight" jsonschema:"description=Strategic meaning of the cluster"`
	SuggestedAction string         `json:"suggested_action" jsonschema:"description=Specific creator action"`
	RiskFlag        string         `json:"risk_flag" jsonschema:"description=Risk flag or None"`
}

// Validate checks that all five fields are present and the classification is
// one of the fixed taxonomy values.
func (ci *ClusterInsight) Validate() error {
	if ci.Theme == "" {
		return fmt.Errorf("missing theme")
	}
	if _, ok := validClassifications[ci.Classification]; !ok {
		return fmt.Errorf("unknown classification %q", ci.Classification)
	}
	if ci.Insight == "" {
		return fmt.Errorf("missing insight")
	}
	if ci.SuggestedAction == "" {
		return fmt.Errorf("missing suggested_action")
	}
	if ci.RiskFlag == "" {
		ci.RiskFlag = "None"
	}
	return nil
}
