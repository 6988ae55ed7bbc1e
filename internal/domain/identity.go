package domain

// Role is derived from configured email set membership at login time.
type Role string

const (
	RoleReporter      Role = "REPORTER"
	RoleReviewer      Role = "REVIEWER"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// Privileged roles must pass the step-up PIN challenge before reaching
// review routes.
func (r Role) Privileged() bool {
	return r == RoleReviewer || r == RoleAdministrator
}

// Identity is the outcome of a successful allow-list check. It carries the
// normalized email and the derived role, nothing else.
type Identity struct {
	Email string
	Role  Role
}
