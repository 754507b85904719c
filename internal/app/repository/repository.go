package repository

import (
	"context"
	"fmt"
	"time"

	"dbmis/internal/app/config"
	"dbmis/internal/app/utils"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultJWTTTL = 24 * time.Hour
)

type Repository struct {
	db     *gorm.DB
	redis  *redis.Client
	store  ObjectStore
	bucket string
	jwtKey string
	jwtTTL time.Duration
}

type Option func(*Repository)

func WithRedis(client *redis.Client) Option {
	return func(r *Repository) { r.redis = client }
}

func WithMinio(client *minio.Client, bucket string) Option {
	if client == nil {
		return func(*Repository) {}
	}
	return WithObjectStore(client, bucket)
}

// WithObjectStore plugs in any S3-style store for attachments.
func WithObjectStore(store ObjectStore, bucket string) Option {
	return func(r *Repository) {
		r.store = store
		r.bucket = bucket
	}
}

func WithJWT(key string, ttl time.Duration) Option {
	return func(r *Repository) {
		r.jwtKey = key
		if ttl > 0 {
			r.jwtTTL = ttl
		}
	}
}

func New(db *gorm.DB, opts ...Option) *Repository {
	r := &Repository{db: db, jwtTTL: defaultJWTTTL}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewFromConfig opens every backend the config asks for. Redis and MinIO are optional.
func NewFromConfig(ctx context.Context, cfg *config.Config, postgresDSN string) (*Repository, error) {
	target := postgresDSN
	if cfg.DBDriver == DriverSQLite {
		target = cfg.SQLitePath
	}
	db, err := Open(cfg.DBDriver, target)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithJWT(cfg.JwtKey, cfg.JwtExpiresIn)}

	if cfg.RedisEndpoint != "" {
		rdb, err := utils.NewRedis(ctx, cfg.RedisEndpoint, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithRedis(rdb))
	} else {
		logrus.Warn("redis is not configured, issued tokens cannot be revoked")
	}

	if cfg.MinioEnabled() {
		mc, err := NewMinio(ctx, cfg.Minio)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithMinio(mc, cfg.Minio.Bucket))
	} else {
		logrus.Warn("minio is not configured, attachments are disabled")
	}

	return New(db, opts...), nil
}

// Open connects gorm to postgres (dsn) or sqlite (file path / URI) and waits for the database.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)

	const maxRetries = 10
	var pingErr error
	for i := 1; i <= maxRetries; i++ {
		if pingErr = sqlDB.Ping(); pingErr == nil {
			return db, nil
		}
		logrus.Warnf("database not ready (attempt %d/%d): %v", i, maxRetries, pingErr)
		time.Sleep(3 * time.Second)
	}
	_ = sqlDB.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, pingErr)
}

// NewMinio creates the MinIO client and makes sure the attachment bucket exists.
func NewMinio(ctx context.Context, cfg config.MinioConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket %s: %w", cfg.Bucket, err)
		}
		logrus.Infof("minio bucket %s created", cfg.Bucket)
	}
	return client, nil
}

// Migrate creates or updates every table.
func (r *Repository) Migrate(models ...interface{}) error {
	return r.db.AutoMigrate(models...)
}

func (r *Repository) Close() error {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}
