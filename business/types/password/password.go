// Package password represents a password in the system.
package password

import "fmt"

// minLength is the smallest password accepted at signup.
const minLength = 8

// Password represents a password in the system.
type Password struct {
	value string
}

// String returns a masked representation so a password never leaks into
// logs or marshaled output.
func (p Password) String() string {
	return "[MASKED]"
}

// Bytes returns the raw password bytes for hashing.
func (p Password) Bytes() []byte {
	return []byte(p.value)
}

// Equal provides support for the go-cmp package and testing.
func (p Password) Equal(p2 Password) bool {
	return p.value == p2.value
}

// MarshalText provides support for logging and any marshal needs.
func (p Password) MarshalText() ([]byte, error) {
	return []byte("[MASKED]"), nil
}

// =============================================================================

// Parse parses the string value and returns a password if the value complies
// with the rules for a password.
func Parse(value string) (Password, error) {
	if len(value) < minLength {
		return Password{}, fmt.Errorf("password must be at least %d characters", minLength)
	}

	return Password{value}, nil
}

// MustParse parses the string value and returns a password if the value
// complies with the rules for a password. If an error occurs the function
// panics.
func MustParse(value string) Password {
	password, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return password
}
