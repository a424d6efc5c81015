// Package artifact persists generated perspective sets. Artifacts are
// create-only: once a name exists it is never rewritten, which is what makes
// generation runs idempotent.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store persists artifacts by name (e.g. "1-shot-free-form_elections.json").
type Store interface {
	Exists(ctx context.Context, name string) (bool, error)
	// Put stores content under name. It returns ErrExists and leaves the
	// stored content untouched if name is already present.
	Put(ctx context.Context, name string, content []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns the stored *.json names in lexical order.
	List(ctx context.Context) ([]string, error)
	// Location describes where artifacts live, for logs and messages.
	Location() string
}

var (
	ErrNotFound = errors.New("artifact not found")
	ErrExists   = errors.New("artifact already exists")
)

// checkName rejects names that could escape the store root.
func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("artifact name is required")
	case name == "." || name == "..":
		return "", fmt.Errorf("invalid artifact name %q", name)
	case strings.ContainsAny(name, `/\`):
		return "", fmt.Errorf("artifact name %q must not contain path separators", name)
	case strings.HasPrefix(name, "."):
		return "", fmt.Errorf("artifact name %q must not be hidden", name)
	}
	return name, nil
}
