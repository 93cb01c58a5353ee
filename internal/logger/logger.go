package logger

import (
	"github.com/BusinessThatWorks/Salasar/internal/config"

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

// WithDocument adds policy document context to log entries
func (l *Logger) WithDocument(documentID string) *logrus.Entry {
	return l.WithField("document_id", documentID)
}

// WithPolicy adds policy record context to log entries
func (l *Logger) WithPolicy(policyID string) *logrus.Entry {
	return l.WithField("policy_id", policyID)
}

// WithPolicyType adds policy type context to log entries
func (l *Logger) WithPolicyType(policyType string) *logrus.Entry {
	return l.WithField("policy_type", policyType)
}

// WithJob adds background job context to log entries
func (l *Logger) WithJob(jobID string) *logrus.Entry {
	return l.WithField("job_id", jobID)
}

// WithRequest adds request context to log entries
func (l *Logger) WithRequest(requestID string) *logrus.Entry {
	return l.WithField("request_id", requestID)
}

// WithUser adds user context to log entries
func (l *Logger) WithUser(userID string) *logrus.Entry {
	return l.WithField("user_id", userID)
}
