package telemetry

import (
	"github.com/erp/channelsync/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dbSystem maps a database driver to its OpenTelemetry db.system value
func dbSystem(driver string) string {
	switch driver {
	case config.DriverPostgres:
		return "postgresql"
	case config.DriverMySQL:
		return "mysql"
	case config.DriverSQLite:
		return "sqlite"
	default:
		return driver
	}
}

// InstrumentDatabase adds a span per gorm statement when cfg.DBTraceEnabled.
// Query variables stay out of spans unless cfg.DBLogFullSQL is set.
func InstrumentDatabase(db *gorm.DB, cfg config.TelemetryConfig, driver string, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(dbSystem(driver))}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.String("db_system", dbSystem(driver)))
	return nil
}
