package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/banking/withdrawal-risk-service/internal/chain"
	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/domain"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
	"github.com/banking/withdrawal-risk-service/internal/pkg/telemetry"
)

// Engine is the withdrawal risk engine. It runs the factor assessors in
// parallel and folds their output into a single assessment.
type Engine struct {
	store        DataStore
	screener     AddressScreener
	ipClassifier IPClassifier
	signals      MarketSignals
	chains       *chain.Registry

	cfg *config.RiskConfig
	log *logger.Logger
	now func() time.Time

	// Metrics
	assessmentCount int64
	avgLatencyMs    float64
	latencyMu       sync.RWMutex
}

// DataStore is the read-only view of users, withdrawals and audit logs
type DataStore interface {
	// GetUser returns domain.ErrUserNotFound when no user exists
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	// GetRecentWithdrawals returns up to limit withdrawals, newest first
	GetRecentWithdrawals(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error)
	HasDeviceFingerprint(ctx context.Context, userID, fingerprint string) (bool, error)
}

// AddressScreener checks wallet addresses against internal and sanctions lists
type AddressScreener interface {
	IsBlacklisted(ctx context.Context, address string) (bool, error)
	IsSanctioned(ctx context.Context, address string) (bool, error)
}

// IPClassifier rates client IP addresses
type IPClassifier interface {
	ClassifyIP(ctx context.Context, ip string) (*domain.IPClassification, error)
}

// MarketSignals exposes market and network state
type MarketSignals interface {
	GetMarketConditions(ctx context.Context) (*domain.MarketConditions, error)
	GetNetworkStatus(ctx context.Context, chainID int64) (*domain.NetworkStatus, error)
}

// assessment is the output of one assessor
type assessment struct {
	score   int
	factors []domain.RiskFactor
}

func (a *assessment) add(f domain.RiskFactor) {
	a.score += f.Score
	a.factors = append(a.factors, f)
}

type assessorFunc func(ctx context.Context, in *domain.WithdrawalRiskInput) (assessment, error)

type namedAssessor struct {
	name      string
	fn        assessorFunc
	usesStore bool
}

// NewEngine creates a new risk engine
func NewEngine(
	store DataStore,
	screener AddressScreener,
	ipClassifier IPClassifier,
	signals MarketSignals,
	cfg *config.RiskConfig,
	log *logger.Logger,
) *Engine {
	return &Engine{
		store:        store,
		screener:     screener,
		ipClassifier: ipClassifier,
		signals:      signals,
		chains:       chain.NewRegistry(cfg.SupportedChains),
		cfg:          cfg,
		log:          log.Named("risk_engine"),
		now:          time.Now,
	}
}

// WithClock overrides the time source used for age and window checks
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// assessors returns the assessors in declaration order.
// Factor order in the result follows this order.
func (e *Engine) assessors() []namedAssessor {
	return []namedAssessor{
		{name: string(domain.CategoryIdentity), fn: e.assessIdentity, usesStore: true},
		{name: string(domain.CategoryBehavior), fn: e.assessBehavior, usesStore: true},
		{name: string(domain.CategoryTechnical), fn: e.assessTechnical},
		{name: string(domain.CategoryCompliance), fn: e.assessCompliance},
		{name: string(domain.CategoryExternal), fn: e.assessExternal},
	}
}

// Assess performs a comprehensive risk assessment of a withdrawal request.
// A single assessor that cannot complete contributes nothing and is listed in
// DegradedAssessors. Assess fails instead of returning a decision when ctx is
// done or when the data store cannot serve identity and behavior.
func (e *Engine) Assess(ctx context.Context, in *domain.WithdrawalRiskInput) (*domain.RiskAssessmentResult, error) {
	startTime := time.Now()
	assessmentID := uuid.New()

	ctx, span := telemetry.StartSpan(ctx, "risk.assess",
		telemetry.UserID(in.UserID),
		telemetry.ChainID(in.ChainID),
	)
	defer span.End()

	log := e.log.WithAssessment(assessmentID.String(), in.UserID)
	log.AssessmentStarted(assessmentID.String(), in.UserID, in.Amount, in.ChainID)

	assessors := e.assessors()
	results := make([]assessment, len(assessors))
	failures := make([]error, len(assessors))

	// Each goroutine owns its slot, so no locking is needed
	var g errgroup.Group
	for i, a := range assessors {
		i, a := i, a
		g.Go(func() error {
			results[i], failures[i] = e.runAssessor(ctx, a, in)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment aborted")
		log.Warn("risk assessment aborted", logger.ErrorField(err))
		return nil, fmt.Errorf("risk assessment aborted: %w", err)
	}
	if err := dataStoreFailure(assessors, failures); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "data store unavailable")
		log.Error("risk assessment failed", logger.ErrorField(err))
		return nil, err
	}

	var (
		totalScore int
		factors    = make([]domain.RiskFactor, 0)
		degraded   []string
	)
	for i, a := range assessors {
		if failures[i] != nil {
			log.AssessorDegraded(a.name, failures[i])
			degraded = append(degraded, a.name)
			continue
		}
		totalScore += results[i].score
		factors = append(factors, results[i].factors...)
	}

	result := e.buildResult(totalScore, factors)
	result.AssessmentID = assessmentID
	result.UserID = in.UserID
	result.DegradedAssessors = degraded
	result.AssessedAt = e.now()

	durationMs := time.Since(startTime).Milliseconds()
	result.DurationMs = durationMs
	e.recordLatency(durationMs)

	if budget := e.cfg.MaxAssessLatency.Milliseconds(); budget > 0 && durationMs > budget {
		log.LatencyWarning("full_assessment", durationMs, budget)
	}

	span.SetAttributes(
		telemetry.RiskScore(result.RiskScore),
		telemetry.RiskLevel(string(result.RiskLevel)),
	)

	log.AssessmentCompleted(
		assessmentID.String(),
		string(result.RiskLevel),
		result.RiskScore,
		len(result.RiskFactors),
		durationMs,
	)

	return result, nil
}

// dataStoreFailure reports an error when every store-backed assessor failed
func dataStoreFailure(assessors []namedAssessor, failures []error) error {
	var last error
	for i, a := range assessors {
		if !a.usesStore {
			continue
		}
		if failures[i] == nil {
			return nil
		}
		last = failures[i]
	}
	if last == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrDataStoreUnavailable, last)
}

// buildResult clamps the score, derives the tier and attaches recommendations
func (e *Engine) buildResult(totalScore int, factors []domain.RiskFactor) *domain.RiskAssessmentResult {
	finalScore := domain.ClampRiskScore(totalScore)
	level := domain.DetermineRiskLevel(finalScore)
	rec := GenerateRecommendations(finalScore, level, factors)

	for _, f := range factors {
		e.log.FactorTriggered(string(f.Category), f.Name, f.Score)
	}

	return &domain.RiskAssessmentResult{
		RiskScore:       finalScore,
		RiskLevel:       level,
		RiskFactors:     factors,
		AutoApproved:    rec.AutoApproved,
		Recommendation:  rec.Recommendation,
		Warnings:        rec.Warnings,
		RequiredActions: rec.RequiredActions,
	}
}

// runAssessor runs a single assessor under its own timeout. A timeout, error
// or panic all yield an error so the caller can degrade that assessor.
func (e *Engine) runAssessor(ctx context.Context, a namedAssessor, in *domain.WithdrawalRiskInput) (assessment, error) {
	ctx, span := telemetry.StartSpan(ctx, "risk.assessor."+a.name, telemetry.Assessor(a.name))
	defer span.End()

	if e.cfg.AssessorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.AssessorTimeout)
		defer cancel()
	}

	type outcome struct {
		res assessment
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%s assessor panicked: %v", a.name, r)}
			}
		}()
		res, err := a.fn(ctx, in)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			span.RecordError(o.err)
			span.SetStatus(codes.Error, "assessor degraded")
			return assessment{}, o.err
		}
		return o.res, nil
	case <-ctx.Done():
		err := fmt.Errorf("%s assessor: %w", a.name, ctx.Err())
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessor timed out")
		return assessment{}, err
	}
}

// Stats is a point-in-time snapshot of engine metrics
type Stats struct {
	AssessmentCount int64   `json:"assessment_count"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
}

// recordLatency records assessment latency for metrics
func (e *Engine) recordLatency(durationMs int64) {
	e.latencyMu.Lock()
	defer e.latencyMu.Unlock()

	e.assessmentCount++
	// Exponential moving average
	e.avgLatencyMs = e.avgLatencyMs*0.9 + float64(durationMs)*0.1
}

// Stats returns the engine metrics
func (e *Engine) Stats() Stats {
	e.latencyMu.RLock()
	defer e.latencyMu.RUnlock()
	return Stats{
		AssessmentCount: e.assessmentCount,
		AvgLatencyMs:    e.avgLatencyMs,
	}
}
