// Package dashboard serves the session API of the financial dashboard.
package dashboard

// User is the principal the dashboard authenticates.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
