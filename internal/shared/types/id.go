package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a prediction. Valid IDs are lower-case canonical UUIDs.
type ID string

func NewID() ID {
	return ID(uuid.New().String())
}

// ParseID accepts any UUID spelling the uuid package understands (upper
// case from SQL Server, braces, urn prefix) and returns the canonical form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid prediction id %q: %w", s, err)
	}
	return ID(u.String()), nil
}

// UUID is the binary form used as an event id.
func (id ID) UUID() (uuid.UUID, error) {
	return uuid.Parse(string(id))
}

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}
