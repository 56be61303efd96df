// internal/workers/market/market-search/models.go
package marketsearchworker

import "marketpulse/internal/marketsearch"

type Input struct {
	Brand      string `json:"brand"`
	SearchType string `json:"searchType"`
}

type Output struct {
	MarketSearch *marketsearch.SearchResult `json:"marketSearch"`
}
