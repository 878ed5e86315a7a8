package types

// Asset is a tracked symbol with its current metrics. Metric fields are
// omitted for symbols that have no fetched data yet.
type Asset struct {
	Symbol           string   `json:"symbol"`
	LatestPrice      *float64 `json:"latest_price,omitempty"`
	ChangePercent24h *float64 `json:"change_percent_24h,omitempty"`
	AveragePrice7d   *float64 `json:"average_price_7d,omitempty"`
	LastUpdated      string   `json:"last_updated,omitempty"`
}

type AssetsResponse struct {
	Assets []Asset `json:"assets"`
}

type AddAssetsRequest struct {
	Symbols []string `json:"symbols"`
}

type HistoryRequest struct {
	Symbol string `path:"symbol"`
	Limit  int    `form:"limit,default=10"`
}

type HistoryMetadata struct {
	LatestPrice      float64 `json:"latest_price"`
	ChangePercent24h float64 `json:"change_percent_24h"`
	AveragePrice7d   float64 `json:"average_price_7d"`
}

type HistoryEntry struct {
	Symbol    string          `json:"symbol"`
	Timestamp string          `json:"timestamp"`
	Metadata  HistoryMetadata `json:"metadata"`
}

type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

type MetricsRequest struct {
	Symbol string `path:"symbol"`
}

type CompareRequest struct {
	Asset1 string `form:"asset1"`
	Asset2 string `form:"asset2"`
}

type AssetMetrics struct {
	Symbol           string  `json:"symbol"`
	LatestPrice      float64 `json:"latest_price"`
	ChangePercent24h float64 `json:"change_percent_24h"`
	AveragePrice7d   float64 `json:"average_price_7d"`
}

type CompareResponse struct {
	Asset1                   AssetMetrics `json:"asset1"`
	Asset2                   AssetMetrics `json:"asset2"`
	PriceDifference          float64      `json:"price_difference"`
	PerformanceDifference24h float64      `json:"performance_difference_24h"`
}

type SummaryRequest struct {
	Symbol string `form:"symbol,optional"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type IngestRequest struct {
	Assets []string `json:"assets,optional"`
}

type IngestResponse struct {
	Message         string   `json:"message"`
	UpdatedCount    int      `json:"updated_count"`
	SuccessMessages []string `json:"success_messages"`
	ErrorMessages   []string `json:"error_messages"`
	UpdatedAssets   []string `json:"updated_assets"`
}
