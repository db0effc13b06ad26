package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with risk-engine specific functionality
type Logger struct {
	*zap.Logger
	serviceName string
}

// ContextKey for request context values
type ContextKey string

const (
	RequestIDKey    ContextKey = "request_id"
	UserIDKey       ContextKey = "user_id"
	TraceIDKey      ContextKey = "trace_id"
	AssessmentIDKey ContextKey = "assessment_id"
)

// New creates a new logger instance
func New(serviceName, environment string, debug bool) (*Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     environment,
		"pid":     os.Getpid(),
	}

	zapLogger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger:      zapLogger,
		serviceName: serviceName,
	}, nil
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), serviceName: "nop"}
}

// Named returns a named sub-logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		Logger:      l.Logger.Named(name),
		serviceName: l.serviceName,
	}
}

// WithContext returns a logger with context values
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := []zap.Field{}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	if assessmentID, ok := ctx.Value(AssessmentIDKey).(string); ok && assessmentID != "" {
		fields = append(fields, zap.String("assessment_id", assessmentID))
	}

	return &Logger{
		Logger:      l.With(fields...),
		serviceName: l.serviceName,
	}
}

// WithAssessment returns a logger with assessment context
func (l *Logger) WithAssessment(assessmentID, userID string) *Logger {
	return &Logger{
		Logger: l.With(
			zap.String("assessment_id", assessmentID),
			zap.String("user_id", userID),
		),
		serviceName: l.serviceName,
	}
}

// AssessmentStarted logs the start of a risk assessment
func (l *Logger) AssessmentStarted(assessmentID, userID string, amount float64, chainID int64) {
	l.Info("risk assessment started",
		zap.String("assessment_id", assessmentID),
		zap.String("user_id", userID),
		zap.Float64("amount", amount),
		zap.Int64("chain_id", chainID),
	)
}

// AssessmentCompleted logs the outcome of a risk assessment
func (l *Logger) AssessmentCompleted(assessmentID, riskLevel string, riskScore, factorCount int, durationMs int64) {
	l.Info("risk assessment completed",
		zap.String("assessment_id", assessmentID),
		zap.String("risk_level", riskLevel),
		zap.Int("risk_score", riskScore),
		zap.Int("factor_count", factorCount),
		zap.Int64("duration_ms", durationMs),
	)
}

// AssessorDegraded logs an assessor that could not complete
func (l *Logger) AssessorDegraded(assessor string, err error) {
	l.Warn("assessor degraded",
		zap.String("assessor", assessor),
		zap.Error(err),
	)
}

// FactorTriggered logs a single triggered risk factor
func (l *Logger) FactorTriggered(category, name string, score int) {
	l.Debug("risk factor triggered",
		zap.String("category", category),
		zap.String("factor", name),
		zap.Int("score", score),
	)
}

// WatchlistLoaded logs a watchlist index refresh
func (l *Logger) WatchlistLoaded(list string, entries int) {
	l.Info("watchlist index loaded",
		zap.String("list", list),
		zap.Int("entries", entries),
	)
}

// BreakerStateChanged logs a circuit breaker transition
func (l *Logger) BreakerStateChanged(name, from, to string) {
	l.Warn("circuit breaker state changed",
		zap.String("breaker", name),
		zap.String("from", from),
		zap.String("to", to),
	)
}

// LatencyWarning logs when a check exceeds expected latency
func (l *Logger) LatencyWarning(checkType string, durationMs, thresholdMs int64) {
	l.Warn("latency threshold exceeded",
		zap.String("check_type", checkType),
		zap.Int64("duration_ms", durationMs),
		zap.Int64("threshold_ms", thresholdMs),
	)
}

// Helper field functions

// ErrorField creates an error field
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

// StringField creates a string field
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField creates an int field
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Int64Field creates an int64 field
func Int64Field(key string, value int64) zap.Field {
	return zap.Int64(key, value)
}

// BoolField creates a bool field
func BoolField(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}
