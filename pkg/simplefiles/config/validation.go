package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// minJWTSecretLength matches the length the jwt resolver enforces.
const minJWTSecretLength = 16

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks struct tags first and then the cross-field rules that tags
// cannot express.
func Validate(cfg *ServerConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *ServerConfig) error {
	switch cfg.Database.Type {
	case "postgres":
		if strings.TrimSpace(cfg.Database.URL) == "" {
			return errors.New("database.url: required when database type is postgres")
		}
	case "mongo":
		if strings.TrimSpace(cfg.Database.MongoURI) == "" {
			return errors.New("database.mongo_uri: required when database type is mongo")
		}
		if strings.TrimSpace(cfg.Database.MongoDatabase) == "" {
			return errors.New("database.mongo_database: required when database type is mongo")
		}
	}

	switch cfg.Storage.Type {
	case "fs":
		if strings.TrimSpace(cfg.Storage.FolderPath) == "" {
			return errors.New("storage.folder_path: required when storage type is fs")
		}
	case "s3":
		if strings.TrimSpace(cfg.Storage.S3.Bucket) == "" {
			return errors.New("storage.s3.bucket: required when storage type is s3")
		}
		if cfg.Storage.S3.EnableSSE && cfg.Storage.S3.SSEAlgorithm == "" {
			return errors.New("storage.s3.sse_algorithm: required when server-side encryption is enabled")
		}
	}

	if cfg.Queue.Type == "redis" || cfg.Identity.Type == "redis" {
		if len(cfg.Redis.Addrs) == 0 {
			return errors.New("redis.addrs: at least one address is required")
		}
	}

	switch cfg.Identity.Type {
	case "jwt":
		if len(cfg.Identity.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("identity.jwt_secret: must be at least %d characters", minJWTSecretLength)
		}
	case "memory":
		for token, raw := range cfg.Identity.Tokens {
			if token == "" {
				return errors.New("identity.tokens: empty token")
			}
			if _, err := uuid.Parse(strings.TrimSpace(raw)); err != nil {
				return fmt.Errorf("identity.tokens: user id for token %q is not a uuid", token)
			}
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
