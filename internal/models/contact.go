package models

import "time"

// ContactMessage is a message left through the public contact form.
// It is not moderated.
type ContactMessage struct {
	ID        string    `json:"id"                bson:"_id"`
	Name      string    `json:"name"              bson:"name"              validate:"required,max=120"`
	Email     string    `json:"email"             bson:"email"             validate:"required,email"`
	Subject   string    `json:"subject,omitempty" bson:"subject,omitempty" validate:"max=200"`
	Message   string    `json:"message"           bson:"message"           validate:"required,max=5000"`
	Read      bool      `json:"read"              bson:"read"`
	CreatedAt time.Time `json:"createdAt"         bson:"createdAt"`
}
