package storage

import (
	"strings"

	"github.com/wharfhq/wharf/pkg/auth"
)

// JoinScopes serializes scopes for a single text column.
func JoinScopes(scopes []auth.Scope) string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

// SplitScopes parses the column format written by JoinScopes.
func SplitScopes(value string) []auth.Scope {
	if value == "" {
		return nil
	}
	parts := strings.Fields(value)
	scopes := make([]auth.Scope, len(parts))
	for i, p := range parts {
		scopes[i] = auth.Scope(p)
	}
	return scopes
}
