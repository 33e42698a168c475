// Package scripting runs user-supplied JavaScript rules over outline
// entries. A rules file defines accept(entry); returning false, null, or
// undefined drops the entry, a string like "H2" rewrites its level, and
// any other value keeps it.
package scripting

import (
	"context"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/outline"
)

// Engine filters outline entries through user rules.
type Engine interface {
	Filter(ctx context.Context, entries []outline.Entry) ([]outline.Entry, error)
}

// Passthrough keeps every entry; used when no rules file is configured.
type Passthrough struct{}

func (Passthrough) Filter(ctx context.Context, entries []outline.Entry) ([]outline.Entry, error) {
	return entries, nil
}
