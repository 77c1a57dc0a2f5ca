package identity

import (
	"context"
	"time"
)

// User is Gravity's canonical security principal. Admins manage the hostel;
// students get a self-service surface. Hostel records (room, fees, attendance)
// hang off the user id and live in their own package.
type User struct {
	ID        string
	Name      string
	Email     string
	EmailNorm string
	Role      Role

	CreatedAt time.Time
}

// HasRole reports whether the user carries the given role.
// Authorization checks go through this capability, not field comparison.
func (u User) HasRole(r Role) bool { return u.Role == r }

// UserAuth couples a user with its stored credential for login verification.
// IMPORTANT: PasswordHash is a PHC string; it must never reach logs or API bodies.
type UserAuth struct {
	User         User
	PasswordHash string
}

// CreateUserInput describes a registration request.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
	Now      time.Time
}

// CreateUserResult returns the created user.
type CreateUserResult struct {
	User User
}

// Store is the identity persistence boundary.
type Store interface {
	// CreateUser creates a user and its credentials transactionally.
	// Returns ConflictError{Field: "email"} on duplicate email.
	CreateUser(ctx context.Context, in CreateUserInput) (CreateUserResult, error)

	// GetUserAuthByEmail loads the user and password hash for login.
	// Lookup is by normalized email. Returns NotFoundError when absent.
	GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error)

	// GetUserByID returns the user, or NotFoundError.
	GetUserByID(ctx context.Context, id string) (User, error)

	// UpdateUser changes name and/or email. Nil fields are left untouched.
	// Returns ConflictError{Field: "email"} when the email belongs to
	// another user, NotFoundError when the user is absent.
	UpdateUser(ctx context.Context, in UpdateUserInput) (User, error)

	// DeleteUser removes the user and its credentials. Returns
	// NotFoundError when the user is absent.
	DeleteUser(ctx context.Context, id string) error
}

// UpdateUserInput describes a partial user update.
type UpdateUserInput struct {
	ID    string
	Name  *string
	Email *string
}
