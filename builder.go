package authcore

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lessonpath/authcore/jwt"
	"github.com/lessonpath/authcore/password"
	"github.com/lessonpath/authcore/revocation"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// Build; no I/O happens before the first Engine method call.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	users  UserProvider
	mail   MailSender
	log    *zap.Logger
	built  bool
}

// New returns a Builder pre-loaded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the configuration. Zero-valued fields are filled
// with defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis supplies the Redis client backing the revocation store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider supplies the principal-lookup collaborator.
func (b *Builder) WithUserProvider(users UserProvider) *Builder {
	b.users = users
	return b
}

// WithMailer supplies the out-of-band code delivery collaborator.
// Optional; without it codes are issued but not delivered.
func (b *Builder) WithMailer(mail MailSender) *Builder {
	b.mail = mail
	return b
}

// WithLogger supplies a structured logger. Defaults to a nop logger.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// Build validates the configuration and dependencies and returns the
// engine. A Builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user provider required")
	}

	cfg := b.config
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.Token.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.Token.SigningMethod),
		Secret:        cfg.Token.Secret,
		PrivateKey:    cfg.Token.PrivateKey,
		PublicKey:     cfg.Token.PublicKey,
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		config: cfg,
		tokens: tokens,
		hasher: hasher,
		store:  revocation.NewStore(b.redis, cfg.RedisPrefix),
		codes:  newCodeService(b.users, cfg.Code),
		users:  b.users,
		mail:   b.mail,
		log:    log,
	}, nil
}
