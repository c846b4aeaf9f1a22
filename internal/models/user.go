package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend reads amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Role ids as issued by the backend.
const (
	RolePlayer = 1
	RoleAdmin  = 2
)

// User is the authenticated account returned by /login and /profile.
type User struct {
	ID                   int    `json:"id_usuario,omitempty"`
	RoleID               int    `json:"id_rol,omitempty"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Document             string `json:"documento,omitempty"`
	Phone                string `json:"telefono,omitempty"`
	ReceiveNotifications bool   `json:"recibir_notificaciones"`
}

// IsAdmin reports whether the user may manage company applications.
func (u *User) IsAdmin() bool {
	return u != nil && u.RoleID == RoleAdmin
}

// DisplayName is the greeting name, falling back to a generic label.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		return "User"
	}
	return name
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is what /login answers. The session itself travels in an
// HttpOnly cookie; Token is informational.
type LoginResponse struct {
	User    *User  `json:"user"`
	Token   string `json:"token,omitempty"`
	Message string `json:"mensaje,omitempty"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest is the body of POST /verify-email.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// PersonalData is the editable slice of the profile (PUT /profile).
type PersonalData struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Document             string `json:"documento"`
	Phone                string `json:"telefono"`
	ReceiveNotifications bool   `json:"recibir_notificaciones"`
}

// MessageResponse is the acknowledgement body many endpoints return.
type MessageResponse struct {
	Message string `json:"mensaje"`
}
