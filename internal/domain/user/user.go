package user

// Role is the side of the marketplace a caller acts as. Accounts themselves
// live in the external auth service; the core only ever sees the role claims
// it issues.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleWorker Role = "worker"
)
