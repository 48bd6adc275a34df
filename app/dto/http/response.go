package http

type IdentityResponse struct {
	ID     int      `json:"id"`
	Names  []string `json:"names"`
	Emails []string `json:"emails"`
}

type LookupResponse struct {
	Identities []IdentityResponse `json:"identities"`
}

type ReportResponse struct {
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	F1                float64 `json:"f1"`
	WeightedPrecision float64 `json:"weighted_precision"`
	WeightedRecall    float64 `json:"weighted_recall"`
	WeightedF1        float64 `json:"weighted_f1"`
	Samples           int     `json:"samples"`
}

type StatsResponse struct {
	RunID      string `json:"run_id"`
	Identities int    `json:"identities"`
	Names      int    `json:"names"`
	Emails     int    `json:"emails"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
