package domain

import (
	"errors"
	"time"
)

// UserRole is the position a user holds in the back office.
type UserRole string

const (
	RoleCollaborator        UserRole = "colaborador"
	RoleAccountingAssistant UserRole = "auxiliar_contable"
	RoleFinancialManager    UserRole = "gerencia_financiera"
	RoleAdmin               UserRole = "administrador"
)

var roleLabels = map[UserRole]string{
	RoleCollaborator:        "Colaborador",
	RoleAccountingAssistant: "Auxiliar contable",
	RoleFinancialManager:    "Gerencia financiera",
	RoleAdmin:               "Administrador",
}

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidRole = errors.New("invalid user role")
var ErrInvalidCredentials = errors.New("invalid credentials")

func (r UserRole) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// ValidRole reports whether r is one of the known user roles.
func ValidRole(r UserRole) bool {
	_, ok := roleLabels[r]
	return ok
}

// User models a person who submits invoices. Email is unique per business
// rule and enforced with a unique index.
type User struct {
	ID        int64      `json:"id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	Email     string     `json:"email" bson:"email"`
	Role      UserRole   `json:"role" bson:"role"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Account models an authenticated API actor. Accounts are separate from
// users: a user is an invoice owner, an account is a login identity.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReviewerRoles are the roles allowed to validate, reject, and delete
// invoices. Collaborators only submit.
var ReviewerRoles = []UserRole{RoleFinancialManager, RoleAdmin}
