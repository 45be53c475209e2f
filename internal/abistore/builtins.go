package abistore

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
)

// ErrUnknownBuiltin is returned for builtin IDs that are not registered.
var ErrUnknownBuiltin = errors.New("unknown builtin ABI")

// SaveBuiltin saves the bundled ABI id under name, or under id when name is
// empty. It returns the name used.
func (m *Manager) SaveBuiltin(id, name string) (string, error) {
	b, ok := contract.GetBuiltin(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownBuiltin, id)
	}
	if name == "" {
		name = b.ID
	}
	return name, m.SaveAbi(name, b.JSON)
}
