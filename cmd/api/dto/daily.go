package dto

// AggregateDailyContentRequest is the optional request body for the
// aggregation endpoint. An absent or empty date means "today" (UTC).
type AggregateDailyContentRequest struct {
	Date string `json:"date" example:"2026-08-29"`
}

// ErrorResponse is the common error envelope.
type ErrorResponse struct {
	Error string `json:"error" example:"aggregation_failed"`
}
