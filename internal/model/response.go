package model

// MessageResponse is the body of every error and of bodies that carry only
// a confirmation.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type AuthResponse struct {
	User    PublicUser `json:"user"`
	Message string     `json:"message"`
}
