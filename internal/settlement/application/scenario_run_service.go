package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	fairness "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/analytics/domain/fairness"
	billing "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/billing/domain"
	"github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/observability/metrics"
	profiles "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/profiles/domain"
	settlement "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/domain"
)

// Failure reasons reported in Result.Failures and metrics.
const (
	ReasonInvalidConfig = "invalid_config"
	ReasonInfeasible    = "no_harm_infeasible"
	ReasonAllocation    = "allocation_error"
)

// ScenarioSettled is emitted once all rules of a scenario have run.
type ScenarioSettled struct {
	Scenario      string
	Mode          billing.Mode
	CommunityBill float64
	Points        []fairness.Point
	OccurredAt    time.Time
}

// ScenarioPublisher receives settled scenarios.
type ScenarioPublisher interface {
	PublishScenarioSettled(ctx context.Context, event ScenarioSettled) error
}

// ProgressReporter is advanced once per processed scenario.
type ProgressReporter interface {
	Increment() int
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DetailRow is one actor × rule × scenario line of the long-form table.
type DetailRow struct {
	Scenario    string
	Rule        settlement.Rule
	Actor       settlement.Participant
	Bill        float64
	OutsideBill float64
	Delta       float64
}

// Failure records a scenario or rule that could not be settled.
// Rule is empty when the whole scenario was skipped.
type Failure struct {
	Scenario string
	Rule     settlement.Rule
	Reason   string
	Err      error
}

// ScenarioOutcome holds everything derived for one scenario.
type ScenarioOutcome struct {
	Scenario      billing.Scenario
	CommunityBill float64
	Allocations   map[settlement.Rule]settlement.Amounts
	Deltas        map[settlement.Rule]settlement.Amounts
	Points        []fairness.Point
}

// Result is the outcome of a full run.
type Result struct {
	Outside  settlement.Amounts
	Gross    settlement.Amounts
	Flows    billing.Flows
	Outcomes []ScenarioOutcome
	Details  []DetailRow
	Points   []fairness.Point
	Failures []Failure
}

// Option configures the service.
type Option func(*ScenarioRunService)

// WithStrict makes the first scenario failure abort the run.
func WithStrict(strict bool) Option {
	return func(s *ScenarioRunService) {
		s.strict = strict
	}
}

// WithPublisher sets the settled-scenario publisher.
func WithPublisher(publisher ScenarioPublisher) Option {
	return func(s *ScenarioRunService) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithProgress sets the progress reporter.
func WithProgress(progress ProgressReporter) Option {
	return func(s *ScenarioRunService) {
		if progress != nil {
			s.progress = progress
		}
	}
}

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(s *ScenarioRunService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// ScenarioRunService settles every configured scenario under both rules.
type ScenarioRunService struct {
	logger    *log.Logger
	publisher ScenarioPublisher
	progress  ProgressReporter
	clock     Clock
	strict    bool
}

// NewScenarioRunService constructs the service.
func NewScenarioRunService(logger *log.Logger, opts ...Option) *ScenarioRunService {
	if logger == nil {
		logger = log.Default()
	}
	s := &ScenarioRunService{
		logger: logger,
		clock:  SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run computes outside-option bills once, then settles each scenario in order.
// Failed scenarios are recorded and skipped; a failed rule 2 keeps the rule 1
// rows of the same scenario. In strict mode the first failure is returned along
// with the partial result.
func (s *ScenarioRunService) Run(ctx context.Context, table *profiles.Table, tariff billing.Tariff, scenarios []billing.Scenario) (Result, error) {
	if table == nil {
		return Result{}, billing.ErrNilTable
	}
	outside, err := billing.OutsideOptionBills(table, tariff)
	if err != nil {
		return Result{}, err
	}
	gross, err := billing.GrossConsumptions(table)
	if err != nil {
		return Result{}, err
	}
	flows, err := billing.CommunityFlows(table)
	if err != nil {
		return Result{}, err
	}

	res := Result{Outside: outside, Gross: gross, Flows: flows}
	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := s.settleScenario(ctx, &res, table, tariff, scenario)
		if s.progress != nil {
			s.progress.Increment()
		}
		if err != nil && s.strict {
			return res, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}
	return res, nil
}

func (s *ScenarioRunService) settleScenario(ctx context.Context, res *Result, table *profiles.Table, tariff billing.Tariff, scenario billing.Scenario) error {
	bill, err := billing.CommunityBill(table, tariff, scenario)
	if err != nil {
		s.fail(res, scenario.Name, "", ReasonInvalidConfig, err)
		return err
	}
	metrics.SetCommunityBill(scenario.Name, bill)

	outcome := ScenarioOutcome{
		Scenario:      scenario,
		CommunityBill: bill,
		Allocations:   make(map[settlement.Rule]settlement.Amounts, 2),
		Deltas:        make(map[settlement.Rule]settlement.Amounts, 2),
	}

	start := time.Now()
	alloc1, err := settlement.Rule1Proportional(bill, res.Gross)
	if err != nil {
		metrics.ObserveAllocation(string(settlement.RuleProportional), metrics.ResultError, time.Since(start))
		s.fail(res, scenario.Name, settlement.RuleProportional, ReasonAllocation, err)
		return err
	}
	metrics.ObserveAllocation(string(settlement.RuleProportional), metrics.ResultSuccess, time.Since(start))
	s.record(&outcome, settlement.RuleProportional, alloc1, res.Outside)

	start = time.Now()
	alloc2, ruleErr := settlement.Rule2NoHarm(alloc1, res.Outside, bill)
	if ruleErr != nil {
		reason, result := ReasonAllocation, metrics.ResultError
		if errors.Is(ruleErr, settlement.ErrNoHarmInfeasible) {
			reason, result = ReasonInfeasible, metrics.ResultInfeasible
		}
		metrics.ObserveAllocation(string(settlement.RuleNoHarm), result, time.Since(start))
		s.fail(res, scenario.Name, settlement.RuleNoHarm, reason, ruleErr)
	} else {
		metrics.ObserveAllocation(string(settlement.RuleNoHarm), metrics.ResultSuccess, time.Since(start))
		s.record(&outcome, settlement.RuleNoHarm, alloc2, res.Outside)
	}

	for _, actor := range res.Outside.Keys() {
		for _, rule := range []settlement.Rule{settlement.RuleProportional, settlement.RuleNoHarm} {
			alloc, ok := outcome.Allocations[rule]
			if !ok {
				continue
			}
			res.Details = append(res.Details, DetailRow{
				Scenario:    scenario.Name,
				Rule:        rule,
				Actor:       actor,
				Bill:        alloc[actor],
				OutsideBill: res.Outside[actor],
				Delta:       outcome.Deltas[rule][actor],
			})
		}
	}
	res.Points = append(res.Points, outcome.Points...)
	res.Outcomes = append(res.Outcomes, outcome)

	if s.publisher != nil {
		event := ScenarioSettled{
			Scenario:      scenario.Name,
			Mode:          scenario.Mode,
			CommunityBill: bill,
			Points:        outcome.Points,
			OccurredAt:    s.clock.Now(),
		}
		if err := s.publisher.PublishScenarioSettled(ctx, event); err != nil {
			s.logger.Printf("scenario publish error: scenario=%s err=%v", scenario.Name, err)
		}
	}
	return ruleErr
}

func (s *ScenarioRunService) record(outcome *ScenarioOutcome, rule settlement.Rule, alloc, outside settlement.Amounts) {
	delta := fairness.Deltas(alloc, outside)
	point := fairness.NewPoint(outcome.Scenario.Name, rule, delta)
	outcome.Allocations[rule] = alloc
	outcome.Deltas[rule] = delta
	outcome.Points = append(outcome.Points, point)
	metrics.SetFairness(point.Scenario, string(rule), point.LoserShare, point.MaxIncrease)
}

func (s *ScenarioRunService) fail(res *Result, scenario string, rule settlement.Rule, reason string, err error) {
	res.Failures = append(res.Failures, Failure{Scenario: scenario, Rule: rule, Reason: reason, Err: err})
	metrics.IncScenarioFailure(reason)
	if rule == "" {
		s.logger.Printf("scenario skipped: scenario=%s reason=%s err=%v", scenario, reason, err)
		return
	}
	s.logger.Printf("rule skipped: scenario=%s rule=%s reason=%s err=%v", scenario, rule, reason, err)
}
