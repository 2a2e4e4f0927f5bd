package authkit

import "time"

// ServerConfig configures token issuance and lifetimes.
type ServerConfig struct {
	JWTSigningKey []byte
	JWTIssuer     string
	SessionTTL    time.Duration
	RefreshTTL    time.Duration
}
