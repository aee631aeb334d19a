package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

type loadOptions struct {
	prefix   string
	envFiles []string
	skipFile bool
}

// Option tweaks a single Load call.
type Option func(*loadOptions)

// WithPrefix only reads variables carrying the prefix, e.g. "NOTIFYD_".
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

// WithEnvFiles loads the given dotenv files instead of ./.env.
// Existing process variables are never overridden.
func WithEnvFiles(files ...string) Option {
	return func(o *loadOptions) { o.envFiles = files }
}

// WithoutEnvFile skips dotenv loading entirely.
func WithoutEnvFile() Option {
	return func(o *loadOptions) { o.skipFile = true }
}

// Load parses environment variables into v according to its `env` tags.
//
// The default .env file is read at most once per process; a missing file is not an error.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch {
	case o.skipFile:
	case len(o.envFiles) > 0:
		if err := godotenv.Load(o.envFiles...); err != nil {
			return errors.Join(ErrEnvFile, err)
		}
	default:
		dotenvOnce.Do(func() {
			_ = godotenv.Load()
		})
	}

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Meant for process bootstrap.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
