package contact

import (
	"time"
)

type Status string

const (
	StatusNew     Status = "new"
	StatusHandled Status = "handled"
)

type ContactRequest struct {
	UID       string     `json:"uid"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Company   string     `json:"company,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Message   string     `json:"message" datastore:",noindex"`
	CreatedAt time.Time  `json:"createdAt"`
	HandledAt *time.Time `json:"handledAt,omitempty"`
	Status    Status     `json:"status"`
}

type contactForm struct {
	Name    string `form:"name" validate:"required,max=200"`
	Email   string `form:"email" validate:"required,email"`
	Company string `form:"company" validate:"max=200"`
	Phone   string `form:"phone" validate:"max=50"`
	Message string `form:"message" validate:"required,max=5000"`
}

type createdResponse struct {
	UID string `json:"uid"`
}

type contactRequests struct {
	ContactRequests []ContactRequest `json:"contactRequests"`
}
