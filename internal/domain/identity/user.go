package identity

import (
	"context"
	"strings"

	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Role distinguishes organization buyers from contractor bidders
type Role string

const (
	RoleOrganization Role = "organization"
	RoleContractor   Role = "contractor"
	RoleAdmin        Role = "admin"
)

// User represents an account on the marketplace
type User struct {
	shared.BaseEntity
	Email        string
	PasswordHash string
	Name         string
	CompanyName  string
	Role         Role
	Active       bool
}

// NewUser creates an active user account
func NewUser(email, passwordHash, name, companyName string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || passwordHash == "" {
		return nil, shared.ErrInvalidInput
	}
	switch role {
	case RoleOrganization, RoleContractor, RoleAdmin:
	default:
		return nil, shared.ErrInvalidInput
	}
	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CompanyName:  companyName,
		Role:         role,
		Active:       true,
	}, nil
}

// CanPostRfps reports whether the user may create listings
func (u *User) CanPostRfps() bool {
	return u.Active && (u.Role == RoleOrganization || u.Role == RoleAdmin)
}

// CanSubmitBids reports whether the user may submit bid requests
func (u *User) CanSubmitBids() bool {
	return u.Active && u.Role == RoleContractor
}

// Repository defines the persistence interface for users
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
}
