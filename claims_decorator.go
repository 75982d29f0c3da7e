package auth

import "context"

// ClaimsDecorator adds extension claims to a token before it is signed.
// Only Metadata may change; any edit to the registered, uid or role claims
// fails the issue with ErrImmutableClaimMutation.
type ClaimsDecorator interface {
	Decorate(ctx context.Context, identity Identity, claims *JWTClaims) error
}

// ClaimsDecoratorFunc adapts a function into a ClaimsDecorator.
type ClaimsDecoratorFunc func(ctx context.Context, identity Identity, claims *JWTClaims) error

func (f ClaimsDecoratorFunc) Decorate(ctx context.Context, identity Identity, claims *JWTClaims) error {
	if f == nil {
		return nil
	}
	return f(ctx, identity, claims)
}

// decorate runs d against claims and rejects changes to frozen fields
func decorate(ctx context.Context, d ClaimsDecorator, identity Identity, claims *JWTClaims) error {
	if d == nil {
		return nil
	}

	frozen := freezeClaims(claims)
	if err := d.Decorate(ctx, identity, claims); err != nil {
		return internalError(err, "claims decorator failed")
	}
	return frozen.check(claims)
}
