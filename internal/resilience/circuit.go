package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// BreakerState represents the state of a circuit breaker.
type BreakerState int

const (
	// BreakerClosed is the normal operating state.
	BreakerClosed BreakerState = iota
	// BreakerOpen means too many consecutive failures; calls are rejected.
	BreakerOpen
	// BreakerHalfOpen allows a single probe call to test recovery.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned when a call is rejected by an open breaker.
var ErrBreakerOpen = eris.New("circuit breaker is open")

// BreakerConfig controls circuit breaker behavior.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before the
	// breaker opens. Default: 5.
	FailureThreshold int

	// ResetTimeout is how long the breaker stays open before allowing a
	// half-open probe. Default: 30s.
	ResetTimeout time.Duration

	// OnStateChange is called on every state transition.
	OnStateChange func(from, to BreakerState)
}

// Breaker rejects calls to a discovery source after repeated failures, so a
// dead backend is not hammered on every company in a batch.
type Breaker struct {
	cfg BreakerConfig

	mu                  sync.Mutex
	state               BreakerState
	consecutiveFailures int
	lastFailureTime     time.Time

	nowFunc func() time.Time // injectable for tests
}

// NewBreaker creates a circuit breaker with the given config.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &Breaker{cfg: cfg, state: BreakerClosed, nowFunc: time.Now}
}

// Execute runs fn through the breaker. Returns ErrBreakerOpen without
// calling fn when the breaker is open.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// State returns the current breaker state, accounting for reset timeout.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.nowFunc().Sub(b.lastFailureTime) >= b.cfg.ResetTimeout {
		return BreakerHalfOpen
	}
	return b.state
}

// Reset forces the breaker back to closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(BreakerClosed)
	b.consecutiveFailures = 0
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.nowFunc().Sub(b.lastFailureTime) >= b.cfg.ResetTimeout {
			b.transition(BreakerHalfOpen)
			return nil
		}
		return ErrBreakerOpen
	default:
		return nil
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.state == BreakerHalfOpen {
			b.transition(BreakerClosed)
		}
		b.consecutiveFailures = 0
		return
	}

	b.consecutiveFailures++
	b.lastFailureTime = b.nowFunc()

	switch b.state {
	case BreakerClosed:
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.transition(BreakerOpen)
	}
}

func (b *Breaker) transition(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}

// SourceBreakers manages one breaker per discovery source.
type SourceBreakers struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	cfg      BreakerConfig
}

// NewSourceBreakers creates a registry of per-source circuit breakers.
func NewSourceBreakers(cfg BreakerConfig) *SourceBreakers {
	return &SourceBreakers{breakers: make(map[string]*Breaker), cfg: cfg}
}

// Get returns the breaker for the named source, creating one if needed.
func (sb *SourceBreakers) Get(source string) *Breaker {
	sb.mu.RLock()
	b, ok := sb.breakers[source]
	sb.mu.RUnlock()
	if ok {
		return b
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()
	if b, ok = sb.breakers[source]; ok {
		return b
	}
	b = NewBreaker(sb.cfg)
	sb.breakers[source] = b
	return b
}

// States returns a snapshot of all breaker states.
func (sb *SourceBreakers) States() map[string]BreakerState {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	states := make(map[string]BreakerState, len(sb.breakers))
	for name, b := range sb.breakers {
		states[name] = b.State()
	}
	return states
}
