package providers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"

	"github.com/kehm/eckochain-client/internal/config"
	"github.com/kehm/eckochain-client/internal/infrastructure/database"
	"github.com/kehm/eckochain-client/internal/infrastructure/gateway"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewRedis creates the redis client backing the session store.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, "", conf.RedisDB)
}

// NewLedger constructs the Fabric gateway client.
func NewLedger(conf config.Fabric) *gateway.FabricLedger {
	return gateway.NewFabricLedger(conf)
}

// SetupTraceProvider installs a global OTLP trace provider when tracing is
// enabled. The returned shutdown function flushes pending spans.
func SetupTraceProvider(ctx context.Context, conf config.Server) (func(context.Context) error, error) {
	if !conf.EnableTrace {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(conf.TraceEndpoint))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
