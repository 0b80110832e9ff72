package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the core's own environment contract (database DSN and
// default hold duration, spec §6) plus the ambient bindings (HTTP listen
// address, Redis address) needed to actually run the process. The core's
// domain logic itself only ever consults DB.DSN and Core.DefaultHoldTTL.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Core   CoreConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DBConfig struct {
	DSN      string
	MaxConns int32
}

// CoreConfig is the env contract spec §6 describes: a database connection
// string (DBConfig.DSN) and a default hold duration. Nothing else.
type CoreConfig struct {
	DefaultHoldTTL time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("%s: missing DATABASE_URL", op)
	}

	maxConns := int32(0)
	if s := os.Getenv("DATABASE_MAX_CONNS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid DATABASE_MAX_CONNS: %w", op, err)
		}
		maxConns = int32(n)
	}

	holdMin := 10
	if s := os.Getenv("DEFAULT_HOLD_DURATION_MIN"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid DEFAULT_HOLD_DURATION_MIN: %w", op, err)
		}
		holdMin = n
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6380"
	}

	return &Config{
		Server: ServerConfig{Host: serverHost, Port: serverPort},
		DB:     DBConfig{DSN: dsn, MaxConns: maxConns},
		Redis: RedisConfig{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Core: CoreConfig{
			DefaultHoldTTL: time.Duration(holdMin) * time.Minute,
		},
	}, nil
}
