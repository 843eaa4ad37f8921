package model

// Submission is the raw contact form payload as received from a client.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
