package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.Mutex
	loaded = make(map[string]any)

	defaultEnvOnce sync.Once
)

// LoadEnv reads the given .env files into the process environment before any
// config struct is parsed. Later files do not override variables that are
// already set, matching godotenv semantics. Missing files are an error so a
// typo in a path fails fast.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrEnvFileLoad, err)
	}
	return nil
}

// Load populates cfg from the process environment using caarlos0/env tags.
// The first call for a given struct type parses the environment and caches the
// result; subsequent calls return the cached copy, so every component sees the
// same configuration regardless of call order. A default .env file in the
// working directory is loaded once if present.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	defaultEnvOnce.Do(func() {
		// The default .env is optional.
		_ = godotenv.Load()
	})

	key := typeKey[T]()

	mu.Lock()
	defer mu.Unlock()

	if v, ok := loaded[key]; ok {
		*cfg = v.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	loaded[key] = *cfg
	return nil
}

// MustLoad is Load but panics on failure. Use it for configuration the process
// cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: load %s: %v", typeKey[T](), err))
	}
}

func typeKey[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}
