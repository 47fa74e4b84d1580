package types

import "net/http"

// Category groups integration services
type Category string

const (
	CategoryAuth     Category = "auth"
	CategoryWallet   Category = "wallet"
	CategoryPayments Category = "payments"
	CategoryEmail    Category = "email"
	CategoryStorage  Category = "storage"
	CategoryShell    Category = "shell"
)

// Service describes an integration service and its actions
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool is a single callable action of a service ("wallet.create_identity")
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter describes a tool argument
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context carries caller information into a service call
type Context struct {
	WindowID  *string `json:"window_id,omitempty"`
	UserID    *string `json:"user_id,omitempty"`
	RemoteIP  string  `json:"remote_ip,omitempty"`
	UserAgent string  `json:"user_agent,omitempty"`
}

// Result is the envelope every service call returns.
// Status is the HTTP status to answer with and is never serialized.
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
	Status  int                    `json:"-"`
}

// HTTPStatus returns the status code a handler should answer with
func (r *Result) HTTPStatus() int {
	if r.Status != 0 {
		return r.Status
	}
	if r.Success {
		return http.StatusOK
	}
	return http.StatusBadRequest
}

// Success builds a successful result
func Success(data map[string]interface{}) (*Result, error) {
	return &Result{Success: true, Data: data}, nil
}

// Failure builds a failed result answered with 400
func Failure(message string) (*Result, error) {
	return FailureStatus(http.StatusBadRequest, message)
}

// FailureStatus builds a failed result answered with the given status
func FailureStatus(status int, message string) (*Result, error) {
	msg := message
	return &Result{Success: false, Error: &msg, Status: status}, nil
}
