package api

import (
	"net/http"

	"github.com/t3rn/circuit/logging"
)

// Checker reports a named subsystem's health. The engine itself has no
// failure modes worth polling (spec.md's single-writer model has no
// background goroutines to go unhealthy); this exists for a host to wire
// its own collaborator liveness (storage, the async bus transport, a
// relayer connection) without this module caring what they are.
type Checker interface {
	Check() (details interface{}, err error)
}

// HealthService mirrors api/health.Service: Readiness/Health/Liveness all
// report the same aggregate over the registered checkers, since the
// engine has no distinct bootstrap phase to distinguish Readiness from
// Liveness.
type HealthService struct {
	log      logging.Logger
	checkers map[string]Checker
}

// NewHealthService constructs a HealthService over the given named
// checkers.
func NewHealthService(log logging.Logger, checkers map[string]Checker) *HealthService {
	return &HealthService{log: log, checkers: checkers}
}

// HealthReply is the response for Readiness, Health, and Liveness.
type HealthReply struct {
	Checks  map[string]CheckResult `json:"checks"`
	Healthy bool                   `json:"healthy"`
}

// CheckResult is one named checker's outcome.
type CheckResult struct {
	Details interface{} `json:"details,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (s *HealthService) runChecks() (map[string]CheckResult, bool) {
	checks := make(map[string]CheckResult, len(s.checkers))
	healthy := true
	for name, c := range s.checkers {
		details, err := c.Check()
		result := CheckResult{Details: details}
		if err != nil {
			result.Error = err.Error()
			healthy = false
		}
		checks[name] = result
	}
	return checks, healthy
}

// Readiness returns whether the engine's collaborators are ready to
// accept traffic.
func (s *HealthService) Readiness(_ *http.Request, _ *struct{}, reply *HealthReply) error {
	s.log.Debug("Health.readiness called")
	reply.Checks, reply.Healthy = s.runChecks()
	return nil
}

// Health returns a summation of the engine's health.
func (s *HealthService) Health(_ *http.Request, _ *struct{}, reply *HealthReply) error {
	s.log.Debug("Health.health called")
	reply.Checks, reply.Healthy = s.runChecks()
	return nil
}

// Liveness returns whether the engine needs a restart.
func (s *HealthService) Liveness(_ *http.Request, _ *struct{}, reply *HealthReply) error {
	s.log.Debug("Health.liveness called")
	reply.Checks, reply.Healthy = s.runChecks()
	return nil
}

// ServeHTTP implements a plain /healthz endpoint for load balancers that
// don't speak JSON-RPC: 200 when every checker passes, 503 otherwise.
func (s *HealthService) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	_, healthy := s.runChecks()
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
