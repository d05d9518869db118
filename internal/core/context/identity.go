// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"coldledger/internal/core/id"
)

// Identity contains the authenticated caller of a ledger operation.
// Every operation is scoped to the caller's own facility.
type Identity struct {
	// FacilityID is the cold-storage facility the caller operates.
	FacilityID id.ID

	// Subject is the operator account identifier (token subject).
	Subject string

	// Admin marks administrative callers who may perform terminal
	// actions such as deleting a receipt.
	Admin bool
}

type identityKey struct{}

// WithIdentity adds Identity to context.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// GetIdentity returns Identity from context, or nil if unauthenticated.
func GetIdentity(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}

// FacilityID returns the caller's facility id, or the nil ID when
// no identity is attached.
func FacilityID(ctx context.Context) id.ID {
	if ident := GetIdentity(ctx); ident != nil {
		return ident.FacilityID
	}
	return id.Nil()
}

// IsAdmin reports whether the caller has administrative rights.
func IsAdmin(ctx context.Context) bool {
	if ident := GetIdentity(ctx); ident != nil {
		return ident.Admin
	}
	return false
}
