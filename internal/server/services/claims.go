// Package services implements the claim workflows behind the gRPC API:
// submission, dry-run evaluation, re-audit and audit log reads.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/trazo/internal/api"
	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/dbx"
	"github.com/dmitrijs2005/trazo/internal/logging"
	"github.com/dmitrijs2005/trazo/internal/metrics"
	"github.com/dmitrijs2005/trazo/internal/server/archive"
	"github.com/dmitrijs2005/trazo/internal/server/automation"
	"github.com/dmitrijs2005/trazo/internal/server/ledger"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

// ClaimService evaluates claims against the ledger and records outcomes.
type ClaimService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	policy      verification.Policy
	registry    verification.RegistryLookup
	archiver    archive.Archiver
	gate        *automation.Gate
	metrics     *metrics.Recorder
	logger      logging.Logger
	now         func() time.Time
	newID       func() string
}

type Option func(*ClaimService)

func WithArchiver(a archive.Archiver) Option {
	return func(s *ClaimService) { s.archiver = a }
}

func WithGate(g *automation.Gate) Option {
	return func(s *ClaimService) { s.gate = g }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *ClaimService) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *ClaimService) { s.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(s *ClaimService) { s.newID = f }
}

func NewClaimService(db *sql.DB, rm repomanager.RepositoryManager, policy verification.Policy,
	lookup verification.RegistryLookup, logger logging.Logger, opts ...Option) *ClaimService {
	s := &ClaimService{
		db:          db,
		repomanager: rm,
		policy:      policy,
		registry:    lookup,
		archiver:    archive.Nop{},
		logger:      logger.With("module", "claim_service"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ClaimService) verifier(db dbx.DBTX) *verification.Verifier {
	return verification.NewVerifier(ledger.New(s.repomanager, db), s.registry, s.policy, verification.WithClock(s.now))
}

// Submit parses, evaluates and stores a claim in one READ COMMITTED
// transaction. When gaming is detected only a security_abort audit entry is
// kept and a *common.SecurityViolationError is returned.
func (s *ClaimService) Submit(ctx context.Context, userID string, p api.ClaimPayload) (*models.Claim, *verification.Result, error) {
	now := s.now().UTC()
	claim, err := ParseClaim(p, now)
	if err != nil {
		return nil, nil, err
	}
	claim.ID = s.newID()
	claim.UserID = userID
	claim.CreatedAt = now

	var (
		res     *verification.Result
		entry   *models.AuditEntry
		aborted bool
	)
	err = dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		res, err = s.verifier(tx).Evaluate(ctx, claim)
		if err != nil {
			return err
		}

		if res.Has(verification.GamingDetected) {
			aborted = true
			entry, err = s.auditEntry(claim, "", models.ActionSecurityAbort, res)
			if err != nil {
				return err
			}
			return s.repomanager.Audits(tx).Create(ctx, entry)
		}

		claims := s.repomanager.Claims(tx)
		if err := claims.Create(ctx, claim); err != nil {
			return err
		}
		v := s.verification(claim, res)
		if err := claims.SaveVerification(ctx, claim.ID, v); err != nil {
			return err
		}
		claim.Apply(v)

		entry, err = s.auditEntry(claim, claim.ID, models.ActionEvaluate, res)
		if err != nil {
			return err
		}
		return s.repomanager.Audits(tx).Create(ctx, entry)
	})
	if err != nil {
		s.logger.Error(ctx, "claim submission failed", "user_id", userID, "error", err)
		return nil, nil, fmt.Errorf("submit claim: %w", err)
	}

	s.archive(ctx, entry)

	if aborted {
		s.metrics.SecurityAbort()
		s.logger.Warn(ctx, "claim submission aborted", "user_id", userID,
			"risk", res.GamingRiskScore, "flags", res.AntiGamingFlags)
		return nil, res, &common.SecurityViolationError{
			ViolationType: string(verification.GamingDetected),
			Severity:      string(verification.SeverityHigh),
			Message:       fmt.Sprintf("gaming risk %.2f requires manual review", res.GamingRiskScore),
		}
	}

	s.metrics.ObserveResult("submit", res)
	s.logger.Info(ctx, "claim evaluated", "claim_id", claim.ID, "user_id", userID,
		"status", claim.Status, "decision", verification.Summarise(res))
	return claim, res, nil
}

// Evaluate runs a dry-run evaluation. Nothing is persisted.
func (s *ClaimService) Evaluate(ctx context.Context, userID string, p api.ClaimPayload) (*verification.Result, error) {
	now := s.now().UTC()
	claim, err := ParseClaim(p, now)
	if err != nil {
		return nil, err
	}
	claim.UserID = userID
	claim.CreatedAt = now

	res, err := s.verifier(s.db).Evaluate(ctx, claim)
	if err != nil {
		s.logger.Error(ctx, "dry-run evaluation failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("evaluate claim: %w", err)
	}
	s.metrics.ObserveResult("evaluate", res)
	return res, nil
}

// Reaudit re-evaluates a stored claim, writes back the new outcome and
// appends a reaudit entry. Earlier entries are kept.
func (s *ClaimService) Reaudit(ctx context.Context, actorID, claimID string) (*models.Claim, *verification.Result, error) {
	var (
		claim *models.Claim
		res   *verification.Result
		entry *models.AuditEntry
	)
	err := dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		claims := s.repomanager.Claims(tx)

		var err error
		claim, err = claims.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		res, err = s.verifier(tx).Evaluate(ctx, claim)
		if err != nil {
			return err
		}
		v := s.verification(claim, res)
		if err := claims.SaveVerification(ctx, claim.ID, v); err != nil {
			return err
		}
		claim.Apply(v)

		entry, err = s.auditEntry(claim, claim.ID, models.ActionReaudit, res)
		if err != nil {
			return err
		}
		return s.repomanager.Audits(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("reaudit claim %s: %w", claimID, err)
	}

	s.archive(ctx, entry)
	s.metrics.ObserveResult("reaudit", res)
	s.logger.Info(ctx, "claim re-audited", "claim_id", claim.ID, "actor", actorID,
		"status", claim.Status, "decision", verification.Summarise(res))
	return claim, res, nil
}

// AuditLog lists a claim's audit entries. Non-admins may only read their
// own claims.
func (s *ClaimService) AuditLog(ctx context.Context, requesterID string, admin bool, claimID string) ([]*models.AuditEntry, error) {
	if !admin {
		claim, err := s.repomanager.Claims(s.db).GetByID(ctx, claimID)
		if err != nil {
			return nil, fmt.Errorf("load claim %s: %w", claimID, err)
		}
		if claim.UserID != requesterID {
			return nil, common.ErrForbidden
		}
	}
	entries, err := s.repomanager.Audits(s.db).ListByClaim(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("audit log %s: %w", claimID, err)
	}
	return entries, nil
}

func (s *ClaimService) verification(c *models.Claim, r *verification.Result) models.Verification {
	return models.Verification{
		Status:          s.gate.Status(c.Practice, r),
		TrustScore:      r.TrustScore,
		EffectiveAmount: r.EffectiveAmount,
		AuditRequired:   r.AuditRequired,
		GamingRiskScore: r.GamingRiskScore,
		VerifiedAt:      r.EvaluatedAt,
	}
}

type snapshot struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	api.ClaimPayload
}

func (s *ClaimService) auditEntry(c *models.Claim, claimID string, action models.AuditAction, r *verification.Result) (*models.AuditEntry, error) {
	snap, err := json.Marshal(snapshot{ID: claimID, UserID: c.UserID, CreatedAt: c.CreatedAt, ClaimPayload: PayloadOf(c)})
	if err != nil {
		return nil, fmt.Errorf("claim snapshot: %w", err)
	}
	return &models.AuditEntry{
		ID:              s.newID(),
		ClaimID:         claimID,
		UserID:          c.UserID,
		Action:          action,
		Approved:        r.Approved,
		TrustScore:      r.TrustScore,
		EffectiveAmount: r.EffectiveAmount,
		AuditRequired:   r.AuditRequired,
		Violations:      r.Violations,
		Snapshot:        snap,
		CreatedAt:       s.now().UTC(),
	}, nil
}

// archive mirrors an entry; failures are logged and counted only.
func (s *ClaimService) archive(ctx context.Context, e *models.AuditEntry) {
	if e == nil {
		return
	}
	if err := s.archiver.Archive(ctx, e); err != nil {
		s.metrics.ArchiveFailure()
		s.logger.Warn(ctx, "audit archive failed", "audit_id", e.ID, "error", err)
	}
}
