// Package logger provides structured logging for the evalhub service.
//
// It wraps Uber's Zap logger with a simplified map-based field API and
// integrates with the fx dependency injection framework.
//
// Basic Usage:
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info"})
//
//	log.Info("corpus loaded", nil, map[string]interface{}{
//		"items": 87,
//	})
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		// ... other modules
//	)
//	app.Run()
//
// Configuration:
//
//	ZAP_LOGGER_LEVEL=debug      # Log level (debug, info, warning, error)
//	LOGGER_SERVICE_NAME=evalhub # "service" field on every entry
//
// Thread Safety:
//
// All methods on Logger are safe for concurrent use by multiple goroutines.
package logger
