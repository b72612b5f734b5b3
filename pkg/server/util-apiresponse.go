package server

// apiErrorResponse is the envelope for error responses
type apiErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// ErrorResponse creates the response body for an error
func ErrorResponse(status int, message string) apiErrorResponse {
	return apiErrorResponse{
		Success: false,
		Error:   status,
		Message: message,
	}
}

// drinksResponse is the envelope for successful responses containing drinks
type drinksResponse struct {
	Success bool `json:"success"`
	Drinks  any  `json:"drinks"`
}

// deleteResponse is the envelope for successful delete responses
type deleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}
