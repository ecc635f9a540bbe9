package config

import (
	"errors"
	"strings"
)

// WithPort sets the HTTP listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the deployment environment.
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the minimum log level.
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = strings.ToLower(level)
		return nil
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(c *ServerConfig) error {
		c.MaxBodyBytes = n
		return nil
	}
}

// WithMetrics toggles the Prometheus middleware and /metrics endpoint.
func WithMetrics(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableMetrics = enabled
		return nil
	}
}

// WithObjectKeyStrategy selects how content keys are laid out.
func WithObjectKeyStrategy(strategy string) Option {
	return func(c *ServerConfig) error {
		c.ObjectKeyStrategy = strategy
		return nil
	}
}

// WithDatabase selects the repository type and, for postgres, its URL.
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		c.Database.Type = dbType
		c.Database.URL = url
		return nil
	}
}

// WithDatabaseSchema sets the postgres search_path.
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.Database.Schema = schema
		return nil
	}
}

// WithMongo selects the mongo repository.
func WithMongo(uri, database string) Option {
	return func(c *ServerConfig) error {
		c.Database.Type = "mongo"
		c.Database.MongoURI = uri
		if database != "" {
			c.Database.MongoDatabase = database
		}
		return nil
	}
}

// WithMemoryStorage keeps content in process memory.
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage.Type = "memory"
		return nil
	}
}

// WithFilesystemStorage stores content under baseDir.
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return errors.New("filesystem storage requires a base directory")
		}
		c.Storage.Type = "fs"
		c.Storage.FolderPath = baseDir
		return nil
	}
}

// WithS3Storage stores content in an S3-compatible bucket.
func WithS3Storage(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		if s3.Region == "" {
			s3.Region = c.Storage.S3.Region
		}
		c.Storage.Type = "s3"
		c.Storage.S3 = s3
		return nil
	}
}

// WithQueue selects the variant job queue.
func WithQueue(queueType, name string) Option {
	return func(c *ServerConfig) error {
		c.Queue.Type = queueType
		if name != "" {
			c.Queue.Name = name
		}
		return nil
	}
}

// WithRedis sets the redis connection shared by queue and sessions.
func WithRedis(password string, addrs ...string) Option {
	return func(c *ServerConfig) error {
		c.Redis.Addrs = addrs
		c.Redis.Password = password
		return nil
	}
}

// WithIdentity selects the token resolver.
func WithIdentity(identityType string) Option {
	return func(c *ServerConfig) error {
		c.Identity.Type = identityType
		return nil
	}
}

// WithJWTSecret selects jwt identity with the given HMAC secret.
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.Identity.Type = "jwt"
		c.Identity.JWTSecret = secret
		return nil
	}
}

// WithStaticTokens seeds the memory identity resolver with token to user id
// bindings.
func WithStaticTokens(tokens map[string]string) Option {
	return func(c *ServerConfig) error {
		c.Identity.Type = "memory"
		c.Identity.Tokens = tokens
		return nil
	}
}
