package auth

import "context"

// Identity is the verified principal attached to a connection.
type Identity struct {
	UserID  string
	Name    string
	IsGuest bool
}

// Verifier validates a bearer token presented during the websocket
// handshake. The gateway only consumes this contract; the identity
// provider behind it is interchangeable.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// JWTVerifier verifies locally-signed HS256 tokens.
type JWTVerifier struct {
	cfg *JWTConfig
}

// NewJWTVerifier creates a verifier for the given JWT configuration.
func NewJWTVerifier(cfg *JWTConfig) *JWTVerifier {
	return &JWTVerifier{cfg: cfg}
}

// Verify implements Verifier. The context is accepted for parity with
// verifiers that call out to a remote identity service.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims, err := ValidateToken(v.cfg, token)
	if err != nil {
		return nil, err
	}
	return &Identity{
		UserID:  claims.UserID,
		Name:    claims.Username,
		IsGuest: claims.IsGuest,
	}, nil
}

var _ Verifier = (*JWTVerifier)(nil)
