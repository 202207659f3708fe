package logger

import (
	"github.com/aalfraarauscher/loan-app-admin/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a new structured logger instance
func NewLogger(cfg *config.Config) *Logger {
	log := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// Set log format
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &Logger{Logger: log}
}

// WithOrganisation adds organisation context to log entries
func (l *Logger) WithOrganisation(orgID string) *logrus.Entry {
	return l.WithField("organisation_id", orgID)
}

// WithIntegration adds integration context to log entries
func (l *Logger) WithIntegration(integrationID string) *logrus.Entry {
	return l.WithField("integration_id", integrationID)
}

// WithDelivery adds delivery context to log entries
func (l *Logger) WithDelivery(deliveryID string) *logrus.Entry {
	return l.WithField("delivery_id", deliveryID)
}

// WithApplication adds loan application context to log entries
func (l *Logger) WithApplication(applicationID string) *logrus.Entry {
	return l.WithField("application_id", applicationID)
}
