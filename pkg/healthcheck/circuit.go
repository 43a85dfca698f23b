// Package healthcheck circuit breaker implementation
// Guards calls to an upstream dependency and fails fast while it is down
package healthcheck

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Execute while the circuit rejects requests
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerState represents the state of a circuit breaker
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds configuration for circuit breaker
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int

	// SuccessThreshold is the number of successes that closes a half-open circuit
	SuccessThreshold int

	// Timeout is how long the circuit stays open before probing again
	Timeout time.Duration

	// MaxRequests caps concurrent probes while half-open
	MaxRequests int

	// IsFailure decides whether an error counts against the circuit.
	// Nil counts every error.
	IsFailure func(err error) bool

	// OnStateChange is called when the state changes
	OnStateChange func(name string, from, to CircuitBreakerState)
}

// CircuitBreakerStats holds statistics about circuit breaker operations
type CircuitBreakerStats struct {
	TotalRequests        int64 `json:"total_requests"`
	TotalSuccesses       int64 `json:"total_successes"`
	TotalFailures        int64 `json:"total_failures"`
	TotalRejections      int64 `json:"total_rejections"`
	ConsecutiveFailures  int   `json:"consecutive_failures"`
	ConsecutiveSuccesses int   `json:"consecutive_successes"`
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	name        string
	config      CircuitBreakerConfig
	state       CircuitBreakerState
	stats       CircuitBreakerStats
	halfOpenIn  int
	generation  uint64
	nextAttempt time.Time
	now         func() time.Time
	mu          sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration
func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRequests <= 0 {
		config.MaxRequests = 3
	}

	return &CircuitBreaker{
		name:   name,
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}
}

// Execute runs fn with circuit breaker protection. The lock is not held
// while fn runs, so concurrent callers are not serialized. A result only
// counts if the state has not changed since the call was admitted.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	cb.stats.TotalRequests++
	if !cb.allowRequest() {
		cb.stats.TotalRejections++
		cb.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCircuitOpen, cb.name)
	}
	generation := cb.generation
	probing := cb.state == StateHalfOpen
	if probing {
		cb.halfOpenIn++
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if generation != cb.generation {
		return err
	}
	if probing {
		cb.halfOpenIn--
	}
	if err != nil && cb.countsAsFailure(err) {
		cb.onFailure()
	} else if err == nil {
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) countsAsFailure(err error) bool {
	if cb.config.IsFailure == nil {
		return true
	}
	return cb.config.IsFailure(err)
}

// allowRequest determines if a request should be allowed based on current state
func (cb *CircuitBreaker) allowRequest() bool {
	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().After(cb.nextAttempt) {
			cb.setState(StateHalfOpen)
			return true
		}
		return false
	case StateHalfOpen:
		return cb.halfOpenIn < cb.config.MaxRequests
	default:
		return false
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.stats.TotalSuccesses++
	cb.stats.ConsecutiveFailures = 0
	cb.stats.ConsecutiveSuccesses++

	if cb.state == StateHalfOpen && cb.stats.ConsecutiveSuccesses >= cb.config.SuccessThreshold {
		cb.setState(StateClosed)
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.stats.TotalFailures++
	cb.stats.ConsecutiveSuccesses = 0
	cb.stats.ConsecutiveFailures++

	switch cb.state {
	case StateClosed:
		if cb.stats.ConsecutiveFailures >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen)
	}
}

// setState changes the circuit breaker state and handles side effects
func (cb *CircuitBreaker) setState(newState CircuitBreakerState) {
	if cb.state == newState {
		return
	}

	oldState := cb.state
	cb.state = newState
	cb.generation++
	cb.halfOpenIn = 0

	switch newState {
	case StateOpen:
		cb.nextAttempt = cb.now().Add(cb.config.Timeout)
	case StateHalfOpen:
		cb.stats.ConsecutiveSuccesses = 0
	case StateClosed:
		cb.stats.ConsecutiveFailures = 0
		cb.stats.ConsecutiveSuccesses = 0
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.name, oldState, newState)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns a snapshot of the breaker statistics
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stats
}

// Reset resets the circuit breaker to its initial state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.setState(StateClosed)
	cb.stats = CircuitBreakerStats{}
	cb.nextAttempt = time.Time{}
}

// Checker reports the breaker as a health check: open is unhealthy,
// half-open is degraded.
func (cb *CircuitBreaker) Checker() Checker {
	return NewCustomChecker(cb.name, func() (Status, string) {
		switch cb.State() {
		case StateOpen:
			return StatusUnhealthy, "circuit open"
		case StateHalfOpen:
			return StatusDegraded, "circuit half-open"
		default:
			return StatusHealthy, ""
		}
	})
}
