package domain

// Identity is an authenticated principal. Created once from process
// configuration in this single-tenant deployment; immutable thereafter.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
}
