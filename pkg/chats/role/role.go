// Package role defines the sender roles used in generateContent payloads.
package role

// Role represents the sender of a message in a request.
type Role string

const (
	User  Role = "user"
	Model Role = "model"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case User, Model:
		return true
	}
	return false
}

// String returns the underlying string value of the role.
func (r Role) String() string {
	return string(r)
}
