package allocation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"goodplay-backend/internal/application/pools"
	"goodplay-backend/internal/audit"
	"goodplay-backend/internal/models"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ComplianceProvider supplies the current compliance score of an ONLUS, nil
// when none has been recorded.
type ComplianceProvider interface {
	CurrentScore(ctx context.Context, onlusID uuid.UUID) (*float64, error)
}

// TransactionProcessor creates and settles donor transactions during
// execution.
type TransactionProcessor interface {
	CreateTransaction(ctx context.Context, donorID string, onlusID uuid.UUID, resultID uuid.UUID, amount float64) (uuid.UUID, error)
	MarkCompleted(ctx context.Context, transactionID uuid.UUID) error
}

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	ScoreThreshold   float64
	ExecutionEpsilon float64
	BatchWorkers     int
	BatchSize        int
	FeeRate          float64
}

const (
	defaultScoreThreshold   = 60.0
	defaultExecutionEpsilon = 0.01
	defaultBatchSize        = 20
)

// DonorTransaction is one donor/amount pair to execute against a result.
type DonorTransaction struct {
	DonorID string  `json:"donor_id"`
	Amount  float64 `json:"amount"`
}

// Engine orchestrates scoring, pool selection, reservation and execution of
// allocation requests. All collaborators are constructor injected; the
// engine owns the read-modify-write sequence for a request while processing
// it.
type Engine struct {
	DB         *gorm.DB
	Pools      *pools.Service
	Compliance ComplianceProvider
	Processor  TransactionProcessor
	Sink       audit.Sink
	Now        func() time.Time
	Config     Config
}

func NewEngine(db *gorm.DB, poolSvc *pools.Service, compliance ComplianceProvider, processor TransactionProcessor, sink audit.Sink, cfg Config) *Engine {
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = defaultScoreThreshold
	}
	if cfg.ExecutionEpsilon <= 0 {
		cfg.ExecutionEpsilon = defaultExecutionEpsilon
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Engine{
		DB:         db,
		Pools:      poolSvc,
		Compliance: compliance,
		Processor:  processor,
		Sink:       sink,
		Now:        time.Now,
		Config:     cfg,
	}
}

// Process scores a pending request, picks a funding pool and reserves the
// requested amount, leaving a scheduled result behind. force bypasses the
// score threshold. Expected business failures come back as unsuccessful
// outcomes; error returns are infrastructure only.
func (e *Engine) Process(ctx context.Context, requestID uuid.UUID, donorPrefs []string, force bool) (Outcome, error) {
	return e.process(ctx, requestID, donorPrefs, force, e.Config.ScoreThreshold, models.MethodAutomatic)
}

func (e *Engine) process(ctx context.Context, requestID uuid.UUID, donorPrefs []string, force bool, threshold float64, method string) (Outcome, error) {
	var req models.AllocationRequest
	if err := e.DB.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(ReasonRequestNotFound, map[string]interface{}{"request_id": requestID.String()}), nil
		}
		return Outcome{}, err
	}

	// Re-entrant processing guard: a request leaves pending exactly once.
	if req.Status != models.RequestStatusPending {
		data := map[string]interface{}{"request_id": req.RequestID.String(), "status": req.Status}
		var existing models.AllocationResult
		if err := e.DB.WithContext(ctx).Where("request_id = ?", req.RequestID).First(&existing).Error; err == nil {
			data["result_id"] = existing.ResultID.String()
		}
		return fail(ReasonRequestNotPending, data), nil
	}

	var profile models.Onlus
	if err := e.DB.WithContext(ctx).Where("onlus_id = ?", req.OnlusID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(ReasonOnlusNotFound, map[string]interface{}{"onlus_id": req.OnlusID.String()}), nil
		}
		return Outcome{}, err
	}

	breakdown := Score(e.scoringInput(ctx, &req, &profile, donorPrefs))
	req.AllocationScore = breakdown.Total
	if err := e.DB.WithContext(ctx).Model(&req).Update("allocation_score", breakdown.Total).Error; err != nil {
		return Outcome{}, err
	}
	e.Sink.Record(ctx, audit.Event{
		Action:    "request.scored",
		RequestID: req.RequestID.String(),
		OnlusID:   req.OnlusID.String(),
		Amount:    req.RequestedAmount,
		Fields:    map[string]interface{}{"score": breakdown.Total},
	})

	if breakdown.Total < threshold && !force {
		reason := fmt.Sprintf("Allocation score %.1f below threshold %.1f", breakdown.Total, threshold)
		if err := e.DB.WithContext(ctx).Model(&req).Updates(map[string]interface{}{
			"status":           models.RequestStatusRejected,
			"rejection_reason": reason,
		}).Error; err != nil {
			return Outcome{}, err
		}
		e.Sink.Record(ctx, audit.Event{
			Action:    "request.rejected",
			RequestID: req.RequestID.String(),
			OnlusID:   req.OnlusID.String(),
			Reason:    reason,
		})
		return fail(ReasonBelowThreshold, map[string]interface{}{
			"request_id": req.RequestID.String(),
			"score":      breakdown.Total,
			"threshold":  threshold,
		}), nil
	}

	candidates, err := e.Pools.ListEligible(ctx, req.RequestedAmount)
	if err != nil {
		return Outcome{}, err
	}
	pool := SelectPool(candidates, &req, profile.Region, e.Now())
	if pool == nil {
		// Request stays pending: a later batch run may find funds.
		return fail(ReasonNoSuitablePool, map[string]interface{}{
			"request_id": req.RequestID.String(),
			"score":      breakdown.Total,
		}), nil
	}

	result, outcome, err := e.prepareResult(ctx, &req, method, models.AllocationFactors{
		Score:          breakdown.Total,
		SelectedPoolID: pool.PoolID.String(),
		Forced:         force && breakdown.Total < threshold,
	})
	if err != nil {
		return Outcome{}, err
	}
	if result == nil {
		return outcome, nil
	}

	reservationID, err := e.Pools.Reserve(ctx, pool.PoolID, req.RequestID.String(), req.RequestedAmount)
	if err != nil {
		return e.failReservation(ctx, &req, result, pool.PoolID, err)
	}

	factors := result.AllocationFactors.Data()
	factors.ReservationID = reservationID
	result.AllocationFactors = datatypes.NewJSONType(factors)
	if err := e.DB.WithContext(ctx).Model(result).
		Update("allocation_factors", result.AllocationFactors).Error; err != nil {
		return Outcome{}, err
	}

	if err := e.DB.WithContext(ctx).Model(&req).
		Update("status", models.RequestStatusApproved).Error; err != nil {
		return Outcome{}, err
	}

	e.Sink.Record(ctx, audit.Event{
		Action:    "request.approved",
		RequestID: req.RequestID.String(),
		OnlusID:   req.OnlusID.String(),
		PoolID:    pool.PoolID.String(),
		ResultID:  result.ResultID.String(),
		Amount:    req.RequestedAmount,
		Fields:    map[string]interface{}{"score": breakdown.Total, "reservation_id": reservationID},
	})

	return succeed(ReasonAllocationApproved, map[string]interface{}{
		"request_id":     req.RequestID.String(),
		"result_id":      result.ResultID.String(),
		"pool_id":        pool.PoolID.String(),
		"reservation_id": reservationID,
		"score":          breakdown.Total,
	}), nil
}

// prepareResult creates the scheduled result for an approved request, or,
// when an earlier attempt left a failed result behind, rewinds that one in
// place. A request owns at most one result row. A nil result with a filled
// outcome signals a business failure.
func (e *Engine) prepareResult(ctx context.Context, req *models.AllocationRequest, method string, factors models.AllocationFactors) (*models.AllocationResult, Outcome, error) {
	var result models.AllocationResult
	err := e.DB.WithContext(ctx).Where("request_id = ?", req.RequestID).First(&result).Error
	switch {
	case err == nil:
		if retryErr := result.PrepareRetry(); retryErr != nil {
			return nil, fail(ReasonInvalidStatus, map[string]interface{}{
				"request_id": req.RequestID.String(),
				"result_id":  result.ResultID.String(),
				"status":     result.Status,
			}), nil
		}
		result.AllocatedAmount = req.RequestedAmount
		result.NetAmount = req.RequestedAmount
		result.AllocationMethod = method
		result.AllocationFactors = datatypes.NewJSONType(factors)
		if err := e.DB.WithContext(ctx).Save(&result).Error; err != nil {
			return nil, Outcome{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		result = models.AllocationResult{
			RequestID:         req.RequestID,
			OnlusID:           req.OnlusID,
			AllocatedAmount:   req.RequestedAmount,
			NetAmount:         req.RequestedAmount,
			AllocationMethod:  method,
			Status:            models.ResultStatusScheduled,
			AllocationFactors: datatypes.NewJSONType(factors),
		}
		if err := e.DB.WithContext(ctx).Create(&result).Error; err != nil {
			return nil, Outcome{}, err
		}
	default:
		return nil, Outcome{}, err
	}
	return &result, Outcome{}, nil
}

// failReservation rolls back a scheduled result whose pool reservation did
// not go through, translating the ledger error into a business outcome.
func (e *Engine) failReservation(ctx context.Context, req *models.AllocationRequest, result *models.AllocationResult, poolID uuid.UUID, cause error) (Outcome, error) {
	var reason string
	switch {
	case errors.Is(cause, models.ErrInsufficientFunds):
		reason = ReasonInsufficientFunds
	case errors.Is(cause, pools.ErrConcurrentUpdate),
		errors.Is(cause, models.ErrPoolNotActive),
		errors.Is(cause, pools.ErrPoolNotFound):
		reason = ReasonReservationConflict
	default:
		return Outcome{}, cause
	}

	if err := result.MarkFailed("Reservation failed: " + cause.Error()); err == nil {
		if err := e.DB.WithContext(ctx).Model(result).Updates(map[string]interface{}{
			"status":        result.Status,
			"error_message": result.ErrorMessage,
		}).Error; err != nil {
			return Outcome{}, err
		}
	}

	e.Sink.Record(ctx, audit.Event{
		Action:    "reservation.failed",
		RequestID: req.RequestID.String(),
		OnlusID:   req.OnlusID.String(),
		PoolID:    poolID.String(),
		ResultID:  result.ResultID.String(),
		Amount:    req.RequestedAmount,
		Reason:    cause.Error(),
	})

	return fail(reason, map[string]interface{}{
		"request_id": req.RequestID.String(),
		"result_id":  result.ResultID.String(),
		"pool_id":    poolID.String(),
		"error":      cause.Error(),
	}), nil
}

// Execute converts a scheduled reservation into settled donor transactions.
// Individual transaction failures do not abort the run: the result ends
// completed, partial or failed depending on how much of the target amount
// went through.
func (e *Engine) Execute(ctx context.Context, resultID uuid.UUID, donorTxs []DonorTransaction) (Outcome, error) {
	var result models.AllocationResult
	if err := e.DB.WithContext(ctx).Where("result_id = ?", resultID).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(ReasonResultNotFound, map[string]interface{}{"result_id": resultID.String()}), nil
		}
		return Outcome{}, err
	}
	if result.Status != models.ResultStatusScheduled && result.Status != models.ResultStatusInProgress {
		return fail(ReasonInvalidStatus, map[string]interface{}{
			"result_id": result.ResultID.String(),
			"status":    result.Status,
		}), nil
	}

	if len(donorTxs) == 0 {
		return fail(ReasonValidationError, map[string]interface{}{"error": "No donor transactions supplied"}), nil
	}
	for i, txn := range donorTxs {
		if txn.DonorID == "" || txn.Amount <= 0 {
			return fail(ReasonValidationError, map[string]interface{}{
				"error": fmt.Sprintf("Invalid donor transaction at index %d", i),
			}), nil
		}
	}

	if result.Status == models.ResultStatusScheduled {
		if err := result.MarkInProgress(); err != nil {
			return fail(ReasonInvalidStatus, map[string]interface{}{"status": result.Status}), nil
		}
	}
	if err := e.DB.WithContext(ctx).Model(&models.AllocationRequest{}).
		Where("request_id = ?", result.RequestID).
		Update("status", models.RequestStatusProcessing).Error; err != nil {
		return Outcome{}, err
	}

	executed := 0.0
	succeededTxs := 0
	for _, txn := range donorTxs {
		txID, err := e.Processor.CreateTransaction(ctx, txn.DonorID, result.OnlusID, result.ResultID, txn.Amount)
		if err != nil {
			continue
		}
		if err := e.Processor.MarkCompleted(ctx, txID); err != nil {
			continue
		}
		result.AddDonorContribution(txn.DonorID, txn.Amount, txID.String())
		executed += txn.Amount
		succeededTxs++
	}

	target := result.AllocatedAmount
	switch {
	case executed > 0 && math.Abs(executed-target) <= e.Config.ExecutionEpsilon:
		return e.finishExecution(ctx, &result, executed)
	case executed > 0:
		note := fmt.Sprintf("%d of %d donor transactions executed (%.2f of %.2f)",
			succeededTxs, len(donorTxs), executed, target)
		if err := result.MarkPartial(note); err != nil {
			return Outcome{}, err
		}
		if err := e.DB.WithContext(ctx).Save(&result).Error; err != nil {
			return Outcome{}, err
		}
		e.Sink.Record(ctx, audit.Event{
			Action:   "execution.partial",
			ResultID: result.ResultID.String(),
			OnlusID:  result.OnlusID.String(),
			Amount:   executed,
			Reason:   note,
		})
		return fail(ReasonPartialExecution, map[string]interface{}{
			"result_id":       result.ResultID.String(),
			"executed_amount": executed,
			"target_amount":   target,
			"note":            note,
		}), nil
	default:
		if err := result.MarkFailed("No donor transactions succeeded"); err != nil {
			return Outcome{}, err
		}
		if err := e.DB.WithContext(ctx).Save(&result).Error; err != nil {
			return Outcome{}, err
		}
		e.Sink.Record(ctx, audit.Event{
			Action:   "execution.failed",
			ResultID: result.ResultID.String(),
			OnlusID:  result.OnlusID.String(),
			Amount:   target,
		})
		return fail(ReasonExecutionFailed, map[string]interface{}{
			"result_id": result.ResultID.String(),
		}), nil
	}
}

// finishExecution settles a fully executed result: the pool reservation
// becomes a final allocation and the request closes as completed.
func (e *Engine) finishExecution(ctx context.Context, result *models.AllocationResult, executed float64) (Outcome, error) {
	factors := result.AllocationFactors.Data()
	if factors.ReservationID != "" && factors.SelectedPoolID != "" {
		poolID, err := uuid.Parse(factors.SelectedPoolID)
		if err == nil {
			if _, err := e.Pools.AllocateReservation(ctx, poolID, factors.ReservationID,
				result.ResultID.String(), result.OnlusID.String()); err != nil {
				return Outcome{}, err
			}
		}
	}

	result.ApplyFees(math.Round(result.AllocatedAmount*e.Config.FeeRate*100) / 100)
	if err := result.MarkCompleted(); err != nil {
		return Outcome{}, err
	}
	if err := e.DB.WithContext(ctx).Save(result).Error; err != nil {
		return Outcome{}, err
	}
	if err := e.DB.WithContext(ctx).Model(&models.AllocationRequest{}).
		Where("request_id = ?", result.RequestID).
		Update("status", models.RequestStatusCompleted).Error; err != nil {
		return Outcome{}, err
	}
	if err := e.DB.WithContext(ctx).Model(&models.Onlus{}).
		Where("onlus_id = ?", result.OnlusID).
		Update("current_funding", gorm.Expr("current_funding + ?", executed)).Error; err != nil {
		return Outcome{}, err
	}

	e.Sink.Record(ctx, audit.Event{
		Action:   "execution.completed",
		ResultID: result.ResultID.String(),
		OnlusID:  result.OnlusID.String(),
		PoolID:   factors.SelectedPoolID,
		Amount:   executed,
	})

	return succeed(ReasonExecutionCompleted, map[string]interface{}{
		"result_id":         result.ResultID.String(),
		"executed_amount":   executed,
		"net_amount":        result.NetAmount,
		"transaction_count": len(result.TransactionIDs),
	}), nil
}

// BatchItem is the outcome of one request within a batch run.
type BatchItem struct {
	RequestID uuid.UUID `json:"request_id"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason"`
}

// BatchReport aggregates a batch run.
type BatchReport struct {
	ProcessedCount int         `json:"processed_count"`
	SucceededCount int         `json:"succeeded_count"`
	FailedCount    int         `json:"failed_count"`
	Items          []BatchItem `json:"items"`
}

// ProcessBatch processes up to maxRequests pending requests, best score
// first then highest priority. minScore above zero replaces the configured
// threshold for this run. One failing request never stops the others.
func (e *Engine) ProcessBatch(ctx context.Context, maxRequests int, minScore float64) (BatchReport, error) {
	if maxRequests <= 0 {
		maxRequests = e.Config.BatchSize
	}
	threshold := e.Config.ScoreThreshold
	if minScore > 0 {
		threshold = minScore
	}

	var pending []models.AllocationRequest
	if err := e.DB.WithContext(ctx).
		Where("status = ?", models.RequestStatusPending).
		Order("allocation_score DESC").Order("priority DESC").
		Limit(maxRequests).
		Find(&pending).Error; err != nil {
		return BatchReport{}, err
	}

	report := BatchReport{Items: make([]BatchItem, len(pending))}
	if len(pending) == 0 {
		return report, nil
	}

	workers, err := ants.NewPool(e.Config.BatchWorkers)
	if err != nil {
		return BatchReport{}, err
	}
	defer workers.Release()

	var wg sync.WaitGroup
	for i := range pending {
		// Per-iteration copy for the task closure below; go.mod targeted a
		// per-iteration-loop-variable language version, older toolchains share it.
		i := i
		requestID := pending[i].RequestID
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcome, err := e.processShielded(ctx, requestID, threshold)
			item := BatchItem{RequestID: requestID, Success: outcome.Success, Reason: outcome.Reason}
			if err != nil {
				item.Success = false
				item.Reason = ReasonProcessingError
			}
			report.Items[i] = item
		}
		if err := workers.Submit(task); err != nil {
			wg.Done()
			report.Items[i] = BatchItem{RequestID: requestID, Success: false, Reason: ReasonProcessingError}
		}
	}
	wg.Wait()

	for _, item := range report.Items {
		report.ProcessedCount++
		if item.Success {
			report.SucceededCount++
		} else {
			report.FailedCount++
		}
	}

	e.Sink.Record(ctx, audit.Event{
		Action: "batch.completed",
		Fields: map[string]interface{}{
			"processed": report.ProcessedCount,
			"succeeded": report.SucceededCount,
			"failed":    report.FailedCount,
		},
	})
	return report, nil
}

// processShielded isolates one batch item: a panic inside processing is
// turned into an error instead of taking the batch down.
func (e *Engine) processShielded(ctx context.Context, requestID uuid.UUID, threshold float64) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing request %s panicked: %v", requestID, r)
		}
	}()
	return e.process(ctx, requestID, nil, false, threshold, models.MethodBatch)
}

// HandleEmergency force-processes an emergency priority request, bypassing
// the score threshold, and stamps the result accordingly.
func (e *Engine) HandleEmergency(ctx context.Context, requestID uuid.UUID) (Outcome, error) {
	var req models.AllocationRequest
	if err := e.DB.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(ReasonRequestNotFound, map[string]interface{}{"request_id": requestID.String()}), nil
		}
		return Outcome{}, err
	}
	if !req.IsEmergency() {
		return fail(ReasonNotEmergency, map[string]interface{}{
			"request_id": req.RequestID.String(),
			"priority":   req.Priority,
		}), nil
	}

	outcome, err := e.process(ctx, requestID, nil, true, e.Config.ScoreThreshold, models.MethodEmergency)
	if err != nil || !outcome.Success {
		return outcome, err
	}

	if resultID, ok := outcome.Data["result_id"].(string); ok {
		if id, parseErr := uuid.Parse(resultID); parseErr == nil {
			var result models.AllocationResult
			if err := e.DB.WithContext(ctx).Where("result_id = ?", id).First(&result).Error; err == nil {
				factors := result.AllocationFactors.Data()
				now := e.Now().UTC()
				factors.EmergencyProcessedAt = &now
				if err := e.DB.WithContext(ctx).Model(&result).
					Update("allocation_factors", datatypes.NewJSONType(factors)).Error; err != nil {
					return outcome, err
				}
			}
		}
	}

	e.Sink.Record(ctx, audit.Event{
		Action:    "emergency.processed",
		RequestID: req.RequestID.String(),
		OnlusID:   req.OnlusID.String(),
		Amount:    req.RequestedAmount,
	})
	return outcome, nil
}

// RetryResult rewinds a failed result to scheduled for another execution
// attempt.
func (e *Engine) RetryResult(ctx context.Context, resultID uuid.UUID) (Outcome, error) {
	var result models.AllocationResult
	if err := e.DB.WithContext(ctx).Where("result_id = ?", resultID).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(ReasonResultNotFound, map[string]interface{}{"result_id": resultID.String()}), nil
		}
		return Outcome{}, err
	}
	if err := result.PrepareRetry(); err != nil {
		return fail(ReasonInvalidStatus, map[string]interface{}{
			"result_id": result.ResultID.String(),
			"status":    result.Status,
		}), nil
	}
	if err := e.DB.WithContext(ctx).Save(&result).Error; err != nil {
		return Outcome{}, err
	}

	e.Sink.Record(ctx, audit.Event{
		Action:   "result.retry",
		ResultID: result.ResultID.String(),
		OnlusID:  result.OnlusID.String(),
		Fields:   map[string]interface{}{"retry_count": result.RetryCount},
	})
	return succeed(ReasonRetryScheduled, map[string]interface{}{
		"result_id":   result.ResultID.String(),
		"retry_count": result.RetryCount,
	}), nil
}

// scoringInput assembles what Score reads for one request. History and
// compliance lookups are best effort: a failed read degrades to the scorer's
// neutral defaults rather than failing the operation.
func (e *Engine) scoringInput(ctx context.Context, req *models.AllocationRequest, profile *models.Onlus, donorPrefs []string) ScoringInput {
	prefs := donorPrefs
	if len(prefs) == 0 {
		prefs = req.DonorPreferences
	}
	in := ScoringInput{
		Request:          req,
		Profile:          profile,
		DonorPreferences: prefs,
		Now:              e.Now(),
	}
	if e.Compliance != nil {
		if score, err := e.Compliance.CurrentScore(ctx, req.OnlusID); err == nil {
			in.ComplianceScore = score
		}
	}

	var recent []models.AllocationResult
	if err := e.DB.WithContext(ctx).
		Where("onlus_id = ?", req.OnlusID).
		Order("created_at DESC").Limit(recentResultsWindow).
		Find(&recent).Error; err == nil {
		in.RecentResults = snapshots(recent)
	}

	var completed []models.AllocationResult
	if err := e.DB.WithContext(ctx).
		Where("onlus_id = ? AND status = ?", req.OnlusID, models.ResultStatusCompleted).
		Order("created_at DESC").Limit(completedResultsWindow).
		Find(&completed).Error; err == nil {
		in.CompletedResults = snapshots(completed)
	}
	return in
}

func snapshots(results []models.AllocationResult) []ResultSnapshot {
	out := make([]ResultSnapshot, 0, len(results))
	for _, r := range results {
		out = append(out, ResultSnapshot{
			Status:               r.Status,
			NetAmount:            r.NetAmount,
			TotalDonationsAmount: r.TotalDonationsAmount,
		})
	}
	return out
}
