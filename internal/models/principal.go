package models

// Principal is an authenticated identity bound to a session.
// Username is unique and immutable; DisplayName is what the UI greets with.
type Principal struct {
	Username    string `json:"username"`
	DisplayName string `json:"name"`
}
