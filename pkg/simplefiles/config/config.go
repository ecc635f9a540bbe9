package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/tendant/simple-files/pkg/simplefiles"
	authjwt "github.com/tendant/simple-files/pkg/simplefiles/auth/jwt"
	authmemory "github.com/tendant/simple-files/pkg/simplefiles/auth/memory"
	authredis "github.com/tendant/simple-files/pkg/simplefiles/auth/redis"
	"github.com/tendant/simple-files/pkg/simplefiles/objectkey"
	queuememory "github.com/tendant/simple-files/pkg/simplefiles/queue/memory"
	queueredis "github.com/tendant/simple-files/pkg/simplefiles/queue/redis"
	repomemory "github.com/tendant/simple-files/pkg/simplefiles/repo/memory"
	repomongo "github.com/tendant/simple-files/pkg/simplefiles/repo/mongo"
	repopg "github.com/tendant/simple-files/pkg/simplefiles/repo/postgres"
	fsstorage "github.com/tendant/simple-files/pkg/simplefiles/storage/fs"
	memorystorage "github.com/tendant/simple-files/pkg/simplefiles/storage/memory"
	s3storage "github.com/tendant/simple-files/pkg/simplefiles/storage/s3"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
)

// ServerConfig holds everything needed to assemble a running files server.
type ServerConfig struct {
	Port          string `env:"PORT" validate:"required,numeric"`
	Environment   string `env:"ENVIRONMENT" validate:"oneof=development production testing"`
	LogLevel      string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	MaxBodyBytes  int64  `env:"MAX_BODY_BYTES" validate:"gt=0"`
	EnableMetrics bool   `env:"ENABLE_METRICS"`

	ObjectKeyStrategy string `env:"OBJECT_KEY_STRATEGY" validate:"oneof=flat sharded"`

	Database DatabaseConfig
	Storage  StorageConfig
	Queue    QueueConfig
	Identity IdentityConfig
	Redis    RedisConfig
}

// DatabaseConfig selects the metadata repository.
type DatabaseConfig struct {
	Type        string `env:"DATABASE_TYPE" validate:"oneof=memory postgres mongo"`
	URL         string `env:"DATABASE_URL"`
	Schema      string `env:"DATABASE_SCHEMA"`
	AutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE"`

	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE"`
}

// StorageConfig selects the blob store.
type StorageConfig struct {
	Type       string `env:"STORAGE_TYPE" validate:"oneof=memory fs s3"`
	FolderPath string `env:"FOLDER_PATH"`

	S3 S3Config
}

// S3Config mirrors s3storage.Config with environment bindings.
type S3Config struct {
	Bucket          string `env:"AWS_S3_BUCKET"`
	Region          string `env:"AWS_S3_REGION"`
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET"`
	EnableSSE       bool   `env:"AWS_S3_ENABLE_SSE"`
	SSEAlgorithm    string `env:"AWS_S3_SSE_ALGORITHM" validate:"omitempty,oneof=AES256 aws:kms"`
	SSEKMSKeyID     string `env:"AWS_S3_SSE_KMS_KEY_ID"`
}

// QueueConfig selects where variant jobs are published.
type QueueConfig struct {
	Type string `env:"QUEUE_TYPE" validate:"oneof=noop memory redis"`
	Name string `env:"QUEUE_NAME" validate:"required"`
}

// IdentityConfig selects how request tokens map to users.
type IdentityConfig struct {
	Type      string            `env:"IDENTITY_TYPE" validate:"oneof=memory redis jwt"`
	JWTSecret string            `env:"JWT_SECRET"`
	Tokens    map[string]string `env:"AUTH_TOKENS"`
}

// RedisConfig is shared by the redis queue and the redis session store.
type RedisConfig struct {
	Addrs         []string `env:"REDIS_ADDRS" env-separator:","`
	Password      string   `env:"REDIS_PASSWORD"`
	IsClusterMode bool     `env:"REDIS_CLUSTER_MODE"`
}

// Option configures a ServerConfig.
type Option func(*ServerConfig) error

// Load builds a ServerConfig from defaults, applies options in order and
// validates the result.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *ServerConfig {
	return &ServerConfig{
		Port:              "8080",
		Environment:       "development",
		LogLevel:          "info",
		MaxBodyBytes:      32 << 20,
		EnableMetrics:     true,
		ObjectKeyStrategy: objectkey.StrategyFlat,
		Database: DatabaseConfig{
			Type:          "memory",
			AutoMigrate:   true,
			MongoDatabase: "files_manager",
		},
		Storage: StorageConfig{
			Type:       "memory",
			FolderPath: fsstorage.DefaultBaseDir,
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Queue: QueueConfig{
			Type: "noop",
			Name: queueredis.DefaultQueueName,
		},
		Identity: IdentityConfig{
			Type: "memory",
		},
		Redis: RedisConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
}

// Validate checks the configuration for consistency.
func (c *ServerConfig) Validate() error {
	return Validate(c)
}

// Stack is a fully wired service together with the identity resolver that
// fronts it.
type Stack struct {
	Service  simplefiles.Service
	Identity simplefiles.IdentityResolver

	closers []func()
}

// Close releases connections opened by Build, most recent first.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Build creates every backend named by the configuration and wires them
// into a service.
func (c *ServerConfig) Build(ctx context.Context, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}
	stack := &Stack{}

	var redisClient goredis.UniversalClient
	redis := func() goredis.UniversalClient {
		if redisClient == nil {
			redisClient = c.buildRedisClient()
			stack.closers = append(stack.closers, func() { _ = redisClient.Close() })
		}
		return redisClient
	}

	repo, err := c.buildRepository(ctx, stack)
	if err != nil {
		stack.Close()
		return nil, err
	}

	blobs, err := c.buildBlobStore()
	if err != nil {
		stack.Close()
		return nil, err
	}

	keys, err := objectkey.New(c.ObjectKeyStrategy)
	if err != nil {
		stack.Close()
		return nil, err
	}

	var queue simplefiles.JobQueue
	switch c.Queue.Type {
	case "noop":
		queue = simplefiles.NewNoopJobQueue()
	case "memory":
		logger.Warn("Variant jobs are held in process memory until drained")
		queue = queuememory.New()
	case "redis":
		queue = queueredis.New(redis(), c.Queue.Name)
	default:
		stack.Close()
		return nil, fmt.Errorf("unsupported queue type: %s", c.Queue.Type)
	}

	svc, err := simplefiles.New(
		simplefiles.WithRepository(repo),
		simplefiles.WithBlobStore(blobs),
		simplefiles.WithJobQueue(queue),
		simplefiles.WithKeyGenerator(keys),
		simplefiles.WithLogger(logger),
	)
	if err != nil {
		stack.Close()
		return nil, err
	}
	stack.Service = svc

	switch c.Identity.Type {
	case "memory":
		tokens, err := c.Identity.parseTokens()
		if err != nil {
			stack.Close()
			return nil, err
		}
		stack.Identity = authmemory.New(tokens)
	case "redis":
		stack.Identity = authredis.New(redis(), logger)
	case "jwt":
		resolver, err := authjwt.New(c.Identity.JWTSecret)
		if err != nil {
			stack.Close()
			return nil, err
		}
		stack.Identity = resolver
	default:
		stack.Close()
		return nil, fmt.Errorf("unsupported identity type: %s", c.Identity.Type)
	}

	logger.Info("Service configured",
		"database", c.Database.Type,
		"storage", c.Storage.Type,
		"queue", c.Queue.Type,
		"identity", c.Identity.Type,
		"object_keys", c.ObjectKeyStrategy,
	)
	return stack, nil
}

func (c *ServerConfig) buildRepository(ctx context.Context, stack *Stack) (simplefiles.Repository, error) {
	switch c.Database.Type {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(c.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database url: %w", err)
		}
		if schema := strings.TrimSpace(c.Database.Schema); schema != "" {
			if poolConfig.ConnConfig.RuntimeParams == nil {
				poolConfig.ConnConfig.RuntimeParams = map[string]string{}
			}
			poolConfig.ConnConfig.RuntimeParams["search_path"] = schema
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		stack.closers = append(stack.closers, pool.Close)
		if err := PingPostgres(ctx, pool); err != nil {
			return nil, err
		}
		if c.Database.AutoMigrate {
			if err := repopg.Migrate(ctx, pool); err != nil {
				return nil, err
			}
		}
		return repopg.NewWithPool(pool), nil
	case "mongo":
		client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(c.Database.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		stack.closers = append(stack.closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		repo := repomongo.NewWithDatabase(client.Database(c.Database.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
}

// PingPostgres verifies connectivity with a bounded timeout.
func PingPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	return nil
}

func (c *ServerConfig) buildBlobStore() (simplefiles.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.FolderPath})
	case "s3":
		s3 := c.Storage.S3
		return s3storage.New(s3storage.Config{
			Region:                 s3.Region,
			Bucket:                 s3.Bucket,
			AccessKeyID:            s3.AccessKeyID,
			SecretAccessKey:        s3.SecretAccessKey,
			Endpoint:               s3.Endpoint,
			UsePathStyle:           s3.UsePathStyle,
			EnableSSE:              s3.EnableSSE,
			SSEAlgorithm:           s3.SSEAlgorithm,
			SSEKMSKeyID:            s3.SSEKMSKeyID,
			CreateBucketIfNotExist: s3.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

func (c *ServerConfig) buildRedisClient() goredis.UniversalClient {
	return goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:         c.Redis.Addrs,
		Password:      c.Redis.Password,
		IsClusterMode: c.Redis.IsClusterMode,
	})
}

func (i IdentityConfig) parseTokens() (map[string]uuid.UUID, error) {
	tokens := make(map[string]uuid.UUID, len(i.Tokens))
	for token, raw := range i.Tokens {
		userID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("identity.tokens: user id for token %q is not a uuid: %w", token, err)
		}
		tokens[token] = userID
	}
	return tokens, nil
}

// NewLogger returns the process logger: JSON in production, text otherwise.
func (c *ServerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
