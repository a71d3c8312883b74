package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/angelmondragon/sourcing-engine/internal/marketplace"
	"github.com/angelmondragon/sourcing-engine/internal/pricing"
	"github.com/angelmondragon/sourcing-engine/internal/requests"
	"github.com/angelmondragon/sourcing-engine/internal/selection"
	"github.com/angelmondragon/sourcing-engine/pkg/config"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/sourcing-engine/pkg/errors"
	"github.com/angelmondragon/sourcing-engine/pkg/logger"
	"github.com/angelmondragon/sourcing-engine/pkg/metrics"
	"go.uber.org/multierr"
)

// SentLedger answers whether a (part, supplier) pair already went out for
// this run key, so a rerun after partial failure only retries the rest.
type SentLedger interface {
	WasSent(ctx context.Context, runKey, partNumber, supplier string) (bool, error)
}

// ServiceParams configure the orchestrator.
type ServiceParams struct {
	Logger     *logger.Logger
	Metrics    *metrics.BatchMetrics
	Client     marketplace.Client
	Aggregator *listings.Aggregator
	Selector   *selection.Selector
	Adjuster   *selection.QuantityAdjuster
	Filter     *selection.OpportunityFilter
	Benchmark  pricing.Benchmark
	Lock       Lock
	Ledger     SentLedger
	Config     config.BatchConfig
}

// Orchestrator owns one batch run: the exclusivity lock, the job queue, the
// worker pool, and failure isolation per submission.
type Orchestrator struct {
	logg       *logger.Logger
	metrics    *metrics.BatchMetrics
	client     marketplace.Client
	aggregator *listings.Aggregator
	selector   *selection.Selector
	adjuster   *selection.QuantityAdjuster
	filter     *selection.OpportunityFilter
	benchmark  pricing.Benchmark
	lock       Lock
	ledger     SentLedger
	cfg        config.BatchConfig
}

// NewOrchestrator builds an orchestrator.
func NewOrchestrator(params ServiceParams) (*Orchestrator, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Client == nil {
		return nil, fmt.Errorf("marketplace client required")
	}
	if params.Aggregator == nil {
		return nil, fmt.Errorf("aggregator required")
	}
	if params.Selector == nil {
		return nil, fmt.Errorf("selector required")
	}
	if params.Adjuster == nil {
		return nil, fmt.Errorf("quantity adjuster required")
	}
	if params.Filter == nil {
		return nil, fmt.Errorf("opportunity filter required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("run lock required")
	}
	benchmark := params.Benchmark
	if benchmark == nil {
		benchmark = pricing.Unavailable{}
	}
	cfg := params.Config
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	return &Orchestrator{
		logg:       params.Logger,
		metrics:    params.Metrics,
		client:     params.Client,
		aggregator: params.Aggregator,
		selector:   params.Selector,
		adjuster:   params.Adjuster,
		filter:     params.Filter,
		benchmark:  benchmark,
		lock:       params.Lock,
		ledger:     params.Ledger,
		cfg:        cfg,
	}, nil
}

// Run executes one batch: acquire the lock, build the queue, drive the
// worker pool, release the lock. Outcomes come back sorted by line number
// for reporting. A fatal precondition aborts with the outcomes gathered so
// far; per-job failures never do.
func (o *Orchestrator) Run(ctx context.Context, runKey string, parts []requests.PartRequest) ([]Outcome, error) {
	if runKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "run key is required")
	}
	if len(parts) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no part requests to process")
	}
	if err := requests.ValidateAll(parts); err != nil {
		return nil, err
	}

	ctx = o.logg.WithRunKey(ctx, runKey)

	locked, err := o.lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "acquiring run lock")
	}
	if !locked {
		return nil, pkgerrors.New(pkgerrors.CodeLockHeld, fmt.Sprintf("another run is active for key %s", runKey))
	}
	defer func() {
		if relErr := o.lock.Release(ctx); relErr != nil {
			o.logg.Error(ctx, "failed to release run lock", relErr)
		}
	}()

	o.logg.Info(ctx, "batch run starting")

	jobs, outcomes, err := o.buildQueue(ctx, runKey, parts)
	if err != nil {
		o.recordMetrics(outcomes)
		return outcomes, err
	}
	o.setQueueDepth(len(jobs))

	workerOutcomes, err := o.runWorkers(ctx, jobs)
	outcomes = append(outcomes, workerOutcomes...)

	sort.SliceStable(outcomes, func(i, j int) bool {
		if outcomes[i].LineNumber != outcomes[j].LineNumber {
			return outcomes[i].LineNumber < outcomes[j].LineNumber
		}
		return outcomes[i].Timestamp.Before(outcomes[j].Timestamp)
	})
	o.recordMetrics(outcomes)
	o.setQueueDepth(0)

	o.logg.Info(ctx, "batch run complete")
	return outcomes, err
}

// buildQueue runs the selection pipeline for every part and flattens the
// decisions into jobs. Parts with no viable supplier terminate here as
// NO_SUPPLIERS; they are never dispatched.
func (o *Orchestrator) buildQueue(ctx context.Context, runKey string, parts []requests.PartRequest) ([]Job, []Outcome, error) {
	session, err := o.client.OpenSession(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "opening marketplace session for queue build")
	}
	defer func() {
		if closeErr := session.Close(ctx); closeErr != nil {
			o.logg.Warn(o.logg.WithField(ctx, "error", closeErr.Error()), "closing build session")
		}
	}()

	var jobs []Job
	var outcomes []Outcome

	for _, part := range parts {
		partCtx := o.logg.WithPart(ctx, part.PartNumber)

		records, err := session.FetchListings(partCtx, part.PartNumber)
		if err != nil {
			if marketplace.IsFatal(err) {
				return nil, outcomes, err
			}
			o.logg.Error(partCtx, "listing fetch failed", err)
			outcomes = append(outcomes, partOutcome(part, enums.OutcomeFailed, "", err.Error()))
			continue
		}

		candidates, err := o.aggregator.Aggregate(partCtx, records, part.Quantity)
		if err != nil {
			outcomes = append(outcomes, partOutcome(part, enums.OutcomeFailed, "", err.Error()))
			continue
		}

		decision, err := o.selector.Select(candidates, part.Quantity)
		if err != nil {
			outcomes = append(outcomes, partOutcome(part, enums.OutcomeFailed, "", err.Error()))
			continue
		}

		qualAmericas := countRegion(candidates, enums.RegionAmericas)
		qualEurope := countRegion(candidates, enums.RegionEurope)

		for _, omitted := range decision.Omitted {
			out := candidateOutcome(part, omitted.Candidate)
			out.Status = enums.OutcomeOmitted
			out.Reason = string(omitted.Reason)
			out.QualifyingTotal = qualAmericas + qualEurope
			out.QualifyingAmericas = qualAmericas
			out.QualifyingEurope = qualEurope
			out.SelectedCount = len(decision.Selected)
			outcomes = append(outcomes, out)
		}

		if len(decision.Selected) == 0 {
			o.logg.Info(partCtx, "no qualifying suppliers")
			outcomes = append(outcomes, partOutcome(part, enums.OutcomeNoSuppliers, "", ""))
			continue
		}

		refPrice, priceErr := o.benchmark.ReferencePrice(partCtx, part.PartNumber)
		if priceErr != nil {
			o.logg.Warn(o.logg.WithField(partCtx, "error", priceErr.Error()), "reference price lookup failed, filter runs open")
		}
		franchiseQty, qtyErr := o.benchmark.FranchiseQuantity(partCtx, part.PartNumber)
		if qtyErr != nil {
			franchiseQty = nil
		}

		for _, candidate := range decision.Selected {
			supplierCtx := o.logg.WithSupplier(partCtx, candidate.Supplier)

			if o.cfg.SkipSentPairs && o.ledger != nil {
				sent, ledgerErr := o.ledger.WasSent(supplierCtx, runKey, part.PartNumber, candidate.Supplier)
				if ledgerErr != nil {
					o.logg.Warn(o.logg.WithField(supplierCtx, "error", ledgerErr.Error()), "sent ledger lookup failed")
				} else if sent {
					o.logg.Info(supplierCtx, "already sent in a previous run, skipping")
					out := candidateOutcome(part, candidate)
					out.Status = enums.OutcomeSkipped
					out.Reason = "sent in previous run"
					outcomes = append(outcomes, out)
					continue
				}
			}

			adjusted, _, adjErr := o.adjuster.Adjust(part.Quantity, candidate.TotalQuantity)
			if adjErr != nil {
				out := candidateOutcome(part, candidate)
				out.Status = enums.OutcomeFailed
				out.ErrorDetail = adjErr.Error()
				outcomes = append(outcomes, out)
				continue
			}

			minOrder, minErr := session.MinOrderValue(supplierCtx, candidate.Supplier, part.PartNumber)
			if minErr != nil {
				o.logg.Debug(supplierCtx, "min order lookup failed, treating as absent")
			}

			result := o.filter.Evaluate(selection.OpportunityInput{
				ReferencePrice: refPrice,
				FranchiseQty:   franchiseQty,
				RequestedQty:   part.Quantity,
				Quantity:       adjusted,
				MinOrderValue:  minOrder,
			})
			if !result.Keep {
				o.logg.Info(supplierCtx, "omitted by opportunity filter")
				out := candidateOutcome(part, candidate)
				out.Status = enums.OutcomeOmitted
				out.Reason = string(enums.OmitOpportunityFiltered)
				out.MinOrderValue = minOrder
				out.EstimatedValue = result.EstimatedValue
				outcomes = append(outcomes, out)
				continue
			}

			jobs = append(jobs, Job{
				Part:               part,
				Candidate:          candidate,
				AdjustedQty:        adjusted,
				MinOrderValue:      minOrder,
				EstimatedValue:     result.EstimatedValue,
				QualifyingTotal:    qualAmericas + qualEurope,
				QualifyingAmericas: qualAmericas,
				QualifyingEurope:   qualEurope,
				SelectedCount:      len(decision.Selected),
			})
		}
	}

	return jobs, outcomes, nil
}

// runWorkers drives a fixed pool over the job queue. Workers start
// staggered so their sessions do not hit the marketplace at once. One
// worker's session failure only loses that worker; a fatal error cancels
// the whole pool.
func (o *Orchestrator) runWorkers(ctx context.Context, jobs []Job) ([]Outcome, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	queue := make(chan Job, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		outcomes []Outcome
		errs     error
		wg       sync.WaitGroup
	)

	workers := o.cfg.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			wctx := o.logg.WithWorkerID(runCtx, workerID)

			stagger := time.Duration(workerID-1) * o.cfg.StaggerDelay
			if err := sleep(wctx, withJitter(stagger, o.cfg.JitterRatio)); err != nil {
				return
			}

			session, err := o.client.OpenSession(wctx)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				o.logg.Error(wctx, "worker session failed", err)
				if marketplace.IsFatal(err) {
					cancel()
				}
				return
			}
			defer func() {
				if closeErr := session.Close(wctx); closeErr != nil {
					o.logg.Warn(o.logg.WithField(wctx, "error", closeErr.Error()), "closing worker session")
				}
			}()
			o.logg.Info(wctx, "worker ready")

			for job := range queue {
				if runCtx.Err() != nil {
					return
				}
				outcome, fatalErr := o.submit(wctx, session, job, workerID)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				if fatalErr != nil {
					errs = multierr.Append(errs, fatalErr)
				}
				mu.Unlock()
				if fatalErr != nil {
					cancel()
					return
				}
			}
		}(i)
	}

	wg.Wait()
	return outcomes, errs
}

// submit runs one sequential submission sub-procedure: jittered delay, then
// the external interaction. Per-job failures come back inside the outcome;
// the error return is reserved for fatal preconditions.
func (o *Orchestrator) submit(ctx context.Context, session marketplace.Session, job Job, workerID int) (Outcome, error) {
	ctx = o.logg.WithSupplier(o.logg.WithPart(ctx, job.Part.PartNumber), job.Candidate.Supplier)

	outcome := jobOutcome(job)
	outcome.WorkerID = workerID

	if err := sleep(ctx, withJitter(o.cfg.BaseDelay, o.cfg.JitterRatio)); err != nil {
		outcome.Status = enums.OutcomeFailed
		outcome.ErrorDetail = err.Error()
		outcome.Timestamp = time.Now()
		return outcome, nil
	}

	start := time.Now()
	result, err := session.Submit(ctx, marketplace.SubmitRequest{
		Supplier:   job.Candidate.Supplier,
		Region:     job.Candidate.Region,
		PartNumber: job.Part.PartNumber,
		Quantity:   job.AdjustedQty,
		Message:    marketplace.MessageFor(job.Candidate.Region),
	})
	outcome.Duration = time.Since(start)
	outcome.Timestamp = time.Now()

	if err != nil {
		outcome.Status = enums.OutcomeFailed
		outcome.ErrorDetail = err.Error()
		o.logg.Error(ctx, "submission failed", err)
		if marketplace.IsFatal(err) {
			return outcome, err
		}
		return outcome, nil
	}

	if result.MinOrderValue.Valid {
		outcome.MinOrderValue = result.MinOrderValue
	}
	outcome.Status = enums.OutcomeSent
	qtySent := job.AdjustedQty
	outcome.QtySent = &qtySent
	o.observeSubmission(string(job.Candidate.Region), outcome.Duration)
	o.logg.Info(ctx, "request sent")
	return outcome, nil
}

func (o *Orchestrator) recordMetrics(outcomes []Outcome) {
	if o.metrics == nil {
		return
	}
	for _, out := range outcomes {
		o.metrics.IncOutcome(string(out.Status))
	}
}

func (o *Orchestrator) setQueueDepth(depth int) {
	if o.metrics == nil {
		return
	}
	o.metrics.SetQueueDepth(depth)
}

func (o *Orchestrator) observeSubmission(region string, duration time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.ObserveSubmission(region, duration)
}

func countRegion(candidates []listings.SupplierCandidate, region enums.Region) int {
	n := 0
	for _, c := range candidates {
		if c.Region == region {
			n++
		}
	}
	return n
}

func partOutcome(part requests.PartRequest, status enums.OutcomeStatus, reason, errDetail string) Outcome {
	return Outcome{
		LineNumber:       part.LineNumber,
		CustomerPartCode: part.CustomerPartCode,
		PartNumber:       part.PartNumber,
		QtyRequested:     part.Quantity,
		Status:           status,
		Reason:           reason,
		ErrorDetail:      errDetail,
		Timestamp:        time.Now(),
	}
}

func candidateOutcome(part requests.PartRequest, candidate listings.SupplierCandidate) Outcome {
	supplierQty := candidate.TotalQuantity
	return Outcome{
		LineNumber:       part.LineNumber,
		CustomerPartCode: part.CustomerPartCode,
		PartNumber:       part.PartNumber,
		QtyRequested:     part.Quantity,
		Supplier:         candidate.Supplier,
		Region:           candidate.Region,
		SupplierQty:      &supplierQty,
		Timestamp:        time.Now(),
	}
}

func jobOutcome(job Job) Outcome {
	out := candidateOutcome(job.Part, job.Candidate)
	out.MinOrderValue = job.MinOrderValue
	out.EstimatedValue = job.EstimatedValue
	out.QualifyingTotal = job.QualifyingTotal
	out.QualifyingAmericas = job.QualifyingAmericas
	out.QualifyingEurope = job.QualifyingEurope
	out.SelectedCount = job.SelectedCount
	return out
}
