// internal/workers/market/reset-user-data/models.go
package resetuserdata

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Reset *ResetResult `json:"reset"`
}

type ResetResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Deleted map[string]int64 `json:"deleted"`
}
