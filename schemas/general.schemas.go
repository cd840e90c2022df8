package schemas

// ErrorResponse struct
type ErrorResponse struct {
	Error       bool   `json:"error"`
	Problem     string `json:"problem,omitempty"`
	Description string `json:"description,omitempty"`
}

// StringPtr returns a pointer to s, for the optional text fields of the wire payloads.
func StringPtr(s string) *string {
	return &s
}
