package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Log       LogConfig       `mapstructure:"log"`
	Cart      CartConfig      `mapstructure:"cart"`
	Placement PlacementConfig `mapstructure:"placement"`
	Followups FollowupsConfig `mapstructure:"followups"`
	Services  ServicesConfig  `mapstructure:"services"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // development, production
}

type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"` // requests per second per client
	Burst   int     `mapstructure:"burst"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	DB   int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Broker            string `mapstructure:"broker"`
	NotificationTopic string `mapstructure:"notification_topic"`
	NotificationGroup string `mapstructure:"notification_group"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// CartConfig holds the recognized cart options. TTLMinutes and MaxItems are
// the public configuration surface of the cart service.
type CartConfig struct {
	TTLMinutes         int           `mapstructure:"ttl_minutes"`
	MaxItems           int           `mapstructure:"max_items"`
	MaxConflictRetries int           `mapstructure:"max_conflict_retries"`
	CatalogTimeout     time.Duration `mapstructure:"catalog_timeout"`
}

func (c CartConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

type PlacementConfig struct {
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
	StepTimeout    time.Duration `mapstructure:"step_timeout"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	PublicBaseURL  string        `mapstructure:"public_base_url"`
}

type FollowupsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BaseDelay    time.Duration `mapstructure:"base_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

type ServicesConfig struct {
	CartURL       string `mapstructure:"cart_url"`
	OrderURL      string `mapstructure:"order_url"`
	RestaurantURL string `mapstructure:"restaurant_url"`
	UserURL       string `mapstructure:"user_url"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

var defaultPorts = map[string]string{
	"api-gateway":      "8080",
	"cart-svc":         "8084",
	"order-svc":        "8085",
	"notification-svc": "8086",
}

// Load reads configuration for the named service. Precedence: environment
// (DB_HOST, CART_MAX_ITEMS, ...) over config file over defaults. A local .env
// file is loaded into the environment first when present.
func Load(service string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, service)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Cart.TTLMinutes <= 0 {
		return nil, fmt.Errorf("cart.ttl_minutes must be positive, got %d", cfg.Cart.TTLMinutes)
	}
	if cfg.Cart.MaxItems <= 0 {
		return nil, fmt.Errorf("cart.max_items must be positive, got %d", cfg.Cart.MaxItems)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("app.name", service)
	v.SetDefault("app.env", "development")

	port, ok := defaultPorts[service]
	if !ok {
		port = "8080"
	}
	v.SetDefault("server.port", port)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.rate", 50)
	v.SetDefault("server.rate_limit.burst", 100)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.name", "foodexpress")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "1h")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.broker", "localhost:9092")
	v.SetDefault("kafka.notification_topic", "order-notifications")
	v.SetDefault("kafka.notification_group", "notification-group")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cart.ttl_minutes", 30)
	v.SetDefault("cart.max_items", 50)
	v.SetDefault("cart.max_conflict_retries", 5)
	v.SetDefault("cart.catalog_timeout", "3s")

	v.SetDefault("placement.lock_ttl", "30s")
	v.SetDefault("placement.step_timeout", "3s")
	v.SetDefault("placement.persist_timeout", "5s")
	v.SetDefault("placement.max_attempts", 3)
	v.SetDefault("placement.initial_backoff", "100ms")
	v.SetDefault("placement.max_backoff", "2s")
	v.SetDefault("placement.public_base_url", "http://localhost:8080")

	v.SetDefault("followups.poll_interval", "5s")
	v.SetDefault("followups.batch_size", 20)
	v.SetDefault("followups.max_attempts", 10)
	v.SetDefault("followups.base_delay", "2s")
	v.SetDefault("followups.max_delay", "5m")

	v.SetDefault("services.cart_url", "http://localhost:8084")
	v.SetDefault("services.order_url", "http://localhost:8085")
	v.SetDefault("services.restaurant_url", "")
	v.SetDefault("services.user_url", "")
}

func MustInitPostgres(cfg DBConfig) *sql.DB {
	connStr := "host=" + cfg.Host + " port=" + cfg.Port + " user=" + cfg.User +
		" password=" + cfg.Password + " dbname=" + cfg.Name + " sslmode=" + cfg.SSLMode

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		panic(fmt.Errorf("failed to connect to database: %w", err))
	}

	if err = db.Ping(); err != nil {
		panic(fmt.Errorf("failed to ping database: %w", err))
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db
}

func MustInitRedis(cfg RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Host + ":" + cfg.Port,
		DB:   cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		panic(fmt.Errorf("failed to connect to redis: %w", err))
	}

	return client
}

func NewKafkaReader(cfg KafkaConfig, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Broker},
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(cfg KafkaConfig, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
