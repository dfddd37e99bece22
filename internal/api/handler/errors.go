package handler

// ErrorBody is the canonical error envelope for all API errors.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
