package domain

// Policy is the access rule an endpoint applies to the resolved identity.
type Policy int

const (
	PolicyAnonymous Policy = iota
	PolicyAuthenticated
	PolicyAdmin
)

func (p Policy) String() string {
	switch p {
	case PolicyAuthenticated:
		return "authenticated"
	case PolicyAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Authorize decides whether id satisfies p. Authentication is checked before
// privilege, so a missing identity is always ErrUnauthenticated even on
// admin-only endpoints.
func Authorize(id *Identity, p Policy) error {
	if p == PolicyAnonymous {
		return nil
	}
	if id == nil {
		return ErrUnauthenticated
	}
	if p == PolicyAdmin && !id.Admin {
		return ErrForbidden
	}
	return nil
}
