// Package store holds the editable policy state and mediates every call to
// the forecast backend. It is an explicit, injectable container: construct
// one per session, hand it a backend and an optional persister, and drive
// it from the CLI or the TUI.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ratecast/internal/domain"
)

// Backend is the slice of the API client the store needs. The concrete
// implementation lives in internal/api; tests inject fakes.
type Backend interface {
	DefaultPolicy(ctx context.Context) (domain.Policy, error)
	AppealsAndExemptions(ctx context.Context) (*domain.AppealsAndExemptions, error)
	RevenueForecast(ctx context.Context, req domain.ForecastRequest) (*domain.ForecastResponse, error)
	TierParcelCounts(ctx context.Context, policy domain.Policy) (*domain.TierCounts, error)
}

// Persister is the durable home for the working policy. A nil Persister
// disables persistence entirely; the pure state transitions do not depend
// on it.
type Persister interface {
	Load() (domain.Policy, bool)
	Save(policy domain.Policy) error
}

// Operation keys the per-operation status and error fields. Keeping one
// entry per operation removes the cross-talk a single shared status field
// would allow between unrelated in-flight requests.
type Operation string

const (
	OpDefaultPolicy Operation = "default-policy"
	OpDefaults      Operation = "defaults"
	OpForecast      Operation = "forecast"
)

// Status is one operation's request lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store is the single source of truth for policy, defaults, appeals,
// exemptions and forecast results. All methods are safe for concurrent use;
// overlapping requests against the same operation resolve last-writer-wins.
type Store struct {
	mu        sync.Mutex
	backend   Backend
	persister Persister
	logger    *zap.Logger

	policy        domain.Policy
	defaultPolicy domain.Policy
	appeals       domain.Appeals
	exemptions    domain.Exemptions
	results       *domain.ForecastResponse
	tierCounts    *domain.TierCounts

	status map[Operation]Status
	errs   map[Operation]string
}

// New builds a store. The persisted policy, if one exists, is restored
// immediately; a load failure just means starting without one.
func New(backend Backend, persister Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		backend:   backend,
		persister: persister,
		logger:    logger,
		appeals:   domain.Appeals{},
		status:    map[Operation]Status{},
		errs:      map[Operation]string{},
	}
	if persister != nil {
		if policy, ok := persister.Load(); ok {
			s.policy = policy
			s.logger.Info("restored persisted policy", zap.Int("classes", len(policy)))
		}
	}
	return s
}

// Policy returns a copy of the working policy, or nil when none is loaded.
func (s *Store) Policy() domain.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.Clone()
}

// HasPolicy reports whether a working policy exists.
func (s *Store) HasPolicy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy != nil
}

// DefaultPolicy returns a copy of the last-fetched server default.
func (s *Store) DefaultPolicy() domain.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultPolicy.Clone()
}

// Appeals returns a copy of the appeal values.
func (s *Store) Appeals() domain.Appeals {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(domain.Appeals, len(s.appeals))
	for k, v := range s.appeals {
		out[k] = v
	}
	return out
}

// Exemptions returns the exemption defaults.
func (s *Store) Exemptions() domain.Exemptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(domain.Exemptions, len(s.exemptions))
	for k, v := range s.exemptions {
		out[k] = v
	}
	return out
}

// Results returns the last forecast response, or nil.
func (s *Store) Results() *domain.ForecastResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// TierCounts returns the last tier-parcel-counts response, or nil.
func (s *Store) TierCounts() *domain.TierCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tierCounts
}

// Status returns the lifecycle state of one operation.
func (s *Store) Status(op Operation) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[op]
}

// Err returns the last failure message of one operation, empty when it has
// not failed.
func (s *Store) Err(op Operation) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[op]
}

// FetchDefaultPolicy pulls the server default. On success the default is
// recorded, and if no working policy exists yet it is seeded from the same
// value; an in-progress edited policy is never overwritten.
func (s *Store) FetchDefaultPolicy(ctx context.Context) error {
	s.begin(OpDefaultPolicy)

	policy, err := s.backend.DefaultPolicy(ctx)
	if err != nil {
		s.fail(OpDefaultPolicy, err)
		return err
	}

	s.mu.Lock()
	s.defaultPolicy = policy
	if s.policy == nil {
		s.policy = policy.Clone()
		s.persistLocked()
	}
	s.status[OpDefaultPolicy] = StatusSucceeded
	s.mu.Unlock()
	return nil
}

// FetchDefaults pulls appeals and exemptions, replacing both wholesale.
func (s *Store) FetchDefaults(ctx context.Context) error {
	s.begin(OpDefaults)

	out, err := s.backend.AppealsAndExemptions(ctx)
	if err != nil {
		s.fail(OpDefaults, err)
		return err
	}

	s.mu.Lock()
	s.appeals = out.Appeals
	if s.appeals == nil {
		s.appeals = domain.Appeals{}
	}
	s.exemptions = out.Exemptions
	s.status[OpDefaults] = StatusSucceeded
	s.mu.Unlock()
	return nil
}

// UpdatePolicy replaces one class's rate rule and persists the whole
// policy. A store without a working policy ignores the update. No forecast
// is triggered; recalculation is always an explicit user action.
func (s *Store) UpdatePolicy(className string, policy domain.ClassPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.policy == nil {
		return
	}
	s.policy[className] = policy.Clone()
	s.persistLocked()
}

// UpdateAppeal sets one class's appeal value. Appeals are session state
// only and are not persisted.
func (s *Store) UpdateAppeal(className string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appeals[className] = value
}

// RestoreDefaultPolicy replaces the working policy with a copy of the
// server default and persists it. Without a fetched default it is a no-op.
func (s *Store) RestoreDefaultPolicy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.defaultPolicy == nil {
		return
	}
	s.policy = s.defaultPolicy.Clone()
	s.persistLocked()
}

// CalculateForecast submits the policy and appeals for a revenue forecast
// and records the result. Any stale forecast error is cleared when the
// attempt starts.
func (s *Store) CalculateForecast(ctx context.Context, policy domain.Policy, appeals domain.Appeals, applyExemptionAverage bool) error {
	s.begin(OpForecast)

	resp, err := s.backend.RevenueForecast(ctx, domain.ForecastRequest{
		Policy:                policy,
		Appeals:               appeals,
		ApplyExemptionAverage: applyExemptionAverage,
	})
	if err != nil {
		s.fail(OpForecast, err)
		return err
	}

	s.mu.Lock()
	s.results = resp
	s.status[OpForecast] = StatusSucceeded
	s.mu.Unlock()
	return nil
}

// FetchTierParcelCounts refreshes the auxiliary per-tier parcel counts.
// This never touches any operation's status or error: a failure only
// resets the counts, and the comparison column quietly disappears.
func (s *Store) FetchTierParcelCounts(ctx context.Context, policy domain.Policy) error {
	counts, err := s.backend.TierParcelCounts(ctx, policy)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.tierCounts = nil
		s.logger.Debug("tier parcel counts unavailable", zap.Error(err))
		return err
	}
	s.tierCounts = counts
	return nil
}

// PersistPolicy forces a persistence pass over the current policy.
func (s *Store) PersistPolicy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}

func (s *Store) begin(op Operation) {
	s.mu.Lock()
	s.status[op] = StatusLoading
	s.errs[op] = ""
	s.mu.Unlock()
}

func (s *Store) fail(op Operation, err error) {
	s.mu.Lock()
	s.status[op] = StatusFailed
	s.errs[op] = err.Error()
	s.mu.Unlock()
}

// persistLocked writes the policy through the persister. Losing persistence
// is not fatal to the in-memory session: failures are logged and swallowed.
func (s *Store) persistLocked() {
	if s.persister == nil || s.policy == nil {
		return
	}
	if err := s.persister.Save(s.policy); err != nil {
		s.logger.Warn("could not persist policy", zap.Error(err))
	}
}
