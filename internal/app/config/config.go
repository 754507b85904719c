package config

import (
	"errors"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Config struct {
	ServiceHost   string
	ServicePort   int
	Mode          string
	DBDriver      string
	SQLitePath    string
	RedisEndpoint string
	RedisPassword string
	RedisDB       int
	JwtKey        string
	JwtExpiresIn  time.Duration
	LogLevel      string
	LogFile       string
	StaticDir     string
	CorsOrigins   []string
	Minio         MinioConfig

	v *viper.Viper
}

var ErrNoJwtKey = errors.New("jwt key is not configured")

func NewConfig() (*Config, error) {
	var err error
	configName := "config"
	if os.Getenv("CONFIG_NAME") != "" {
		configName = os.Getenv("CONFIG_NAME")
	}

	// .env goes first so that its values are visible to the env bindings below
	err = godotenv.Load()
	if err != nil {
		logrus.Debug("no .env file, using process environment")
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}

	setDefaults(v)

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		logrus.Warnf("config file %q not found, using defaults", configName)
	}

	bindEnv(v)

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	logrus.Info("config parsed")
	return cfg, nil
}

// Watch re-reads the config file on every change and hands the fresh values to onChange.
func (c *Config) Watch(onChange func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		logrus.Infof("config file changed: %s (%s)", e.Name, e.Op)
		fresh, err := decode(c.v)
		if err != nil {
			logrus.Errorf("error reloading config: %v", err)
			return
		}
		onChange(fresh)
	})
	c.v.WatchConfig()
}

func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.Bucket != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ServiceHost", "0.0.0.0")
	v.SetDefault("ServicePort", 3000)
	v.SetDefault("Mode", "release")
	v.SetDefault("DBDriver", "postgres")
	v.SetDefault("SQLitePath", "dbmis.db")
	v.SetDefault("RedisDB", 0)
	v.SetDefault("JwtExpiresIn", "24h")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("CorsOrigins", []string{"*"})
	v.SetDefault("Minio.Bucket", "dbmis-attachments")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("ServicePort", "PORT")
	v.BindEnv("Mode", "GIN_MODE")
	v.BindEnv("DBDriver", "DB_DRIVER")
	v.BindEnv("SQLitePath", "SQLITE_PATH")
	v.BindEnv("RedisEndpoint", "REDIS_ENDPOINT")
	v.BindEnv("RedisPassword", "REDIS_PASSWORD")
	v.BindEnv("JwtKey", "JWT_KEY", "JWT_SECRET")
	v.BindEnv("JwtExpiresIn", "JWT_EXPIRES_IN")
	v.BindEnv("LogLevel", "LOG_LEVEL")
	v.BindEnv("LogFile", "LOG_FILE")
	v.BindEnv("StaticDir", "STATIC_DIR")
	v.BindEnv("Minio.Endpoint", "MINIO_ENDPOINT")
	v.BindEnv("Minio.AccessKey", "MINIO_ACCESS_KEY")
	v.BindEnv("Minio.SecretKey", "MINIO_SECRET_KEY")
	v.BindEnv("Minio.Bucket", "MINIO_BUCKET")
	v.BindEnv("Minio.UseSSL", "MINIO_USE_SSL")
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.JwtKey == "" {
		return nil, ErrNoJwtKey
	}
	cfg.v = v
	return cfg, nil
}
