package api

// DamageSeverity buckets returned by the damage classifier
const (
	DamageSeverityLight    = "light"
	DamageSeverityModerate = "moderate"
	DamageSeveritySevere   = "severe"
	DamageSeverityUnknown  = "unknown"
)

// ClassificationInput is a set of damage photo URLs to assess together
//
// swagger:model
type ClassificationInput struct {
	ImageURLs []string `json:"imageUrls"`
}

// ClassificationOutput is the damage assessment for one photo set
//
// swagger:model
type ClassificationOutput struct {
	// one of: light, moderate, severe, unknown
	Severity string `json:"severity"`

	// human-readable explanation including an estimated repair cost range
	Narrative string `json:"narrative"`
}
