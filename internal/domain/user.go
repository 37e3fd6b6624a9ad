package domain

type UserRole string

const (
	RoleWaiter  UserRole = "waiter"
	RoleKitchen UserRole = "kitchen"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleWaiter, RoleKitchen, RoleAdmin:
		return true
	}
	return false
}

// User is the sanitized staff record handed to views. The password hash
// lives only inside the auth store's persisted records.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}
