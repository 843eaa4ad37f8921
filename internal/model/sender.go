package model

// Sender is the unique submitter identity behind contact messages, keyed by email.
// Name may change on a later submission; Email never does.
type Sender struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=180"`
}
