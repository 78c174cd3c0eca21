package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"dinebook/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 25
	postgresConnMaxLifetime   = 30 * time.Minute
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(config *config.Config) *Connection {
	return &Connection{
		Read:  CreatePostgresReadConn(*config),
		Write: CreatePostgresWriteConn(*config),
	}
}

// Ping checks both pools.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}

	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("read pool: %w", err)
	}

	return nil
}

func (c *Connection) Close() error {
	return errors.Join(c.Read.Close(), c.Write.Close())
}

// DSN builds the connection URL for the write endpoint, which is also the
// one migrations run against.
func DSN(cfg config.Config) string {
	return dsn(cfg, cfg.DB.Postgres.Write)
}

func dsn(cfg config.Config, e config.PostgresEndpoint) string {
	sslMode := e.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + cfg.DatabaseName(e.Name),
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}

	return u.String()
}

// CreatePostgresWriteConn creates a database connection for write access.
func CreatePostgresWriteConn(cfg config.Config) *sqlx.DB {
	return CreatePostgresConnection("write", cfg.DB.Postgres.Write, dsn(cfg, cfg.DB.Postgres.Write),
		cfg.DB.Postgres.MaxRetry, cfg.DB.Postgres.RetryWaitTime)
}

// CreatePostgresReadConn creates a database connection for read access.
func CreatePostgresReadConn(cfg config.Config) *sqlx.DB {
	if cfg.DB.Postgres.Read.Host == "" {
		return CreatePostgresWriteConn(cfg)
	}

	return CreatePostgresConnection("read", cfg.DB.Postgres.Read, dsn(cfg, cfg.DB.Postgres.Read),
		cfg.DB.Postgres.MaxRetry, cfg.DB.Postgres.RetryWaitTime)
}

// CreatePostgresConnection connects with retries and exits the process when
// every attempt fails.
func CreatePostgresConnection(name string, e config.PostgresEndpoint, dsn string, maxRetry, waitTime int) *sqlx.DB {
	logger := log.With().Str("name", name).Str("host", e.Host).Str("port", e.Port).Str("dbName", e.Name).Logger()

	for retry := range max(maxRetry, 1) {
		sqlDB, err := sqlx.Connect("postgres", dsn)
		if err == nil {
			logger.Info().Msg("Connected to database")

			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		logger.Error().Err(err).Int("attempt", retry+1).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	logger.Fatal().Msg("Could not connect to database")

	return nil
}
