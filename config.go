package authcore

import (
	"errors"
	"time"

	"github.com/lessonpath/authcore/password"
)

// Config groups the engine's tunables. Zero values are filled in with
// the defaults below by [Builder.Build]; Validate rejects what remains
// unusable.
type Config struct {
	Token    TokenConfig
	Password password.Config
	Code     CodeConfig

	// RedisPrefix namespaces every key the engine writes.
	RedisPrefix string

	// DefaultRole is assigned to accounts created through Register.
	DefaultRole string
}

// TokenConfig controls access-token signing and refresh-token lifetime.
type TokenConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// SigningMethod is "hs256" (default) or "ed25519".
	SigningMethod string
	// Secret is the HMAC key for hs256.
	Secret []byte
	// PrivateKey and PublicKey are the ed25519 key pair, raw or PEM.
	PrivateKey []byte
	PublicKey  []byte

	Issuer string
	Leeway time.Duration
}

// CodeConfig controls verification-code issuance.
type CodeConfig struct {
	// TTL is how long an issued code stays redeemable.
	TTL time.Duration
	// Digits is the fixed code width.
	Digits int
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Password: password.Config{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Code: CodeConfig{
			TTL:    30 * time.Minute,
			Digits: 6,
		},
		RedisPrefix: "auth",
		DefaultRole: "user",
	}
}

func (c *Config) applyDefaults() {
	def := defaultConfig()
	if c.Token.AccessTTL == 0 {
		c.Token.AccessTTL = def.Token.AccessTTL
	}
	if c.Token.RefreshTTL == 0 {
		c.Token.RefreshTTL = def.Token.RefreshTTL
	}
	if c.Token.SigningMethod == "" {
		c.Token.SigningMethod = def.Token.SigningMethod
	}
	if c.Password == (password.Config{}) {
		c.Password = def.Password
	}
	if c.Code.TTL == 0 {
		c.Code.TTL = def.Code.TTL
	}
	if c.Code.Digits == 0 {
		c.Code.Digits = def.Code.Digits
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = def.RedisPrefix
	}
	if c.DefaultRole == "" {
		c.DefaultRole = def.DefaultRole
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Token.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("refresh TTL must be positive")
	}
	if c.Token.RefreshTTL <= c.Token.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	switch c.Token.SigningMethod {
	case "hs256":
		if len(c.Token.Secret) < 32 {
			return errors.New("hs256 requires a secret of at least 32 bytes")
		}
	case "ed25519":
		if len(c.Token.PrivateKey) == 0 || len(c.Token.PublicKey) == 0 {
			return errors.New("ed25519 requires a private and public key")
		}
	default:
		return errors.New("unsupported signing method")
	}
	if c.Code.TTL <= 0 {
		return errors.New("code TTL must be positive")
	}
	if c.Code.Digits < 4 || c.Code.Digits > 10 {
		return errors.New("code digits must be between 4 and 10")
	}
	return nil
}
