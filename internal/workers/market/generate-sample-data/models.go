// internal/workers/market/generate-sample-data/models.go
package generatesampledata

type Input struct {
	UserID       string `json:"userId"`
	BusinessName string `json:"businessName"`
}

type Output struct {
	SampleData *SampleDataResult `json:"sampleData"`
}

type SampleDataResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Seeded  bool   `json:"seeded"`
	Updated int    `json:"updated"`
}
