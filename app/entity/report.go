package entity

// Report holds the mean scores over all (external id, predicted identity) pairs.
// The weighted variants use the predicted identity size as weight.
type Report struct {
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	F1                float64 `json:"f1"`
	WeightedPrecision float64 `json:"weighted_precision"`
	WeightedRecall    float64 `json:"weighted_recall"`
	WeightedF1        float64 `json:"weighted_f1"`
	Samples           int     `json:"samples"`
}
