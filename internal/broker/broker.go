// Package broker provides the brokerage tradability capability.
package broker

import (
	"context"
)

// Session is the capability interface the screening pipeline uses to
// check whether a venue permits trading a ticker. Implementations never
// surface errors: any failure is reported as "not tradable".
type Session interface {
	// IsAuthenticated reports whether the session holds valid
	// credentials. The orchestrator only consults IsTradable when this
	// is true.
	IsAuthenticated() bool

	// IsTradable reports whether the ticker can be traded through this
	// session's brokerage.
	IsTradable(ctx context.Context, symbol string) bool
}

// Unauthenticated is the Session used when no broker credentials are
// configured. It reports nothing as tradable.
type Unauthenticated struct{}

// IsAuthenticated always returns false.
func (Unauthenticated) IsAuthenticated() bool {
	return false
}

// IsTradable always returns false.
func (Unauthenticated) IsTradable(ctx context.Context, symbol string) bool {
	return false
}
