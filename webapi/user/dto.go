package user

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/notification"
	"github.com/amirasaad/payadvance/pkg/domain/user"
)

// RegisterInput is the body of POST /api/users/register.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=EMPLOYEE EMPLOYER ADMIN"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"max=20"`
}

// UserDTO is the API view of a user; the password hash is never exposed.
type UserDTO struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	KycStatus   string    `json:"kycStatus"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToDTO converts a domain user for responses.
func ToDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.Role),
		PhoneNumber: u.PhoneNumber,
		KycStatus:   string(u.KycStatus),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NotificationDTO is the API view of a notification.
type NotificationDTO struct {
	ID        uint       `json:"id"`
	Channel   string     `json:"channel"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Read      bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ToNotificationDTO converts a domain notification for responses.
func ToNotificationDTO(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Channel:   n.Channel,
		Subject:   n.Subject,
		Message:   n.Message,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationDTOs converts a list of notifications.
func ToNotificationDTOs(list []*notification.Notification) []NotificationDTO {
	out := make([]NotificationDTO, 0, len(list))
	for _, n := range list {
		out = append(out, ToNotificationDTO(n))
	}
	return out
}
