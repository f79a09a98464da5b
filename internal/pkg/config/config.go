// Package config overlays prefixed environment variables onto a struct of
// defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrInvalidConfig = errors.New("config must be a pointer to a struct")
	ErrValidation    = errors.New("invalid configuration")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the optional .env files and then parses the environment into cfg.
// Variables already present in the environment take precedence over .env.
func Load(cfg any, namespace string, envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	return Parse(cfg, namespace)
}

// Parse overlays NAMESPACE_* environment variables onto cfg. The values cfg
// already holds are the defaults. Keys come from mapstructure tags and nested
// structs join theirs with an underscore, so a field tagged server_addr inside
// a struct tagged http binds TASKMAN_HTTP_SERVER_ADDR. The result is checked
// against its validate tags.
func Parse(cfg any, namespace string) error {
	if v := reflect.ValueOf(cfg); v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidConfig
	}

	defaults := make(map[string]any)
	if err := mapstructure.Decode(cfg, &defaults); err != nil {
		return fmt.Errorf("read defaults: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(namespace)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range flattenMap("", defaults) {
		v.SetDefault(key, value)
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return fmt.Errorf("parse %s environment: %w", namespace, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

func flattenMap(prefix string, m map[string]any) map[string]any {
	res := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(fullKey, nested) {
				res[k] = v
			}

			continue
		}

		res[fullKey] = value
	}

	return res
}
