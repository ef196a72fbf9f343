// Package twofa drives second-factor verification and enrollment.
package twofa

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

// Phase is the lifecycle position of a Challenge.
type Phase int

const (
	PhaseCheckingSession Phase = iota
	PhaseAwaitingCode
	PhaseVerifying
	PhaseSuccess
	PhaseFailed
	PhaseExpired
	// PhaseAborted means the session probe routed the user away.
	PhaseAborted
	PhaseClosed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseCheckingSession:
		return "checking_session"
	case PhaseAwaitingCode:
		return "awaiting_code"
	case PhaseVerifying:
		return "verifying"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	case PhaseExpired:
		return "expired"
	case PhaseAborted:
		return "aborted"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	homePath   = "/"
	signInPath = "/signin"
	tick       = time.Second

	expiredMessage = "Verification code expired. Please sign in again."
)

var errAlreadyStarted = errors.New("challenge already started")

// State is a snapshot of a Challenge for rendering.
type State struct {
	Phase            Phase
	Code             [CodeLength]string
	Focus            int
	SecondsRemaining int
	Err              error
}

// Challenge verifies the pending second factor of the ambient session within a
// fixed budget. It owns its timers; Close releases them.
type Challenge struct {
	prober   model.CurrentUserProber
	verifier model.TwoFactorVerifier
	store    model.AuthCommitter
	nav      model.Navigator
	cfg      config.TwoFA
	clock    Clock
	logger   *logger.Logger
	onChange func(State)

	mu        sync.Mutex
	phase     Phase
	started   bool
	expired   bool
	closed    bool
	buf       CodeBuffer
	remaining int
	err       error
	ticker    Timer
	redirect  Timer
}

// ChallengeOption configures a Challenge.
type ChallengeOption func(*Challenge)

// WithClock replaces the wall clock.
func WithClock(clock Clock) ChallengeOption {
	return func(c *Challenge) {
		c.clock = clock
	}
}

// WithOnChange registers an observer called after every state change,
// outside the Challenge lock.
func WithOnChange(fn func(State)) ChallengeOption {
	return func(c *Challenge) {
		c.onChange = fn
	}
}

// NewChallenge creates new Challenge instance. Start begins it.
func NewChallenge(
	prober model.CurrentUserProber,
	verifier model.TwoFactorVerifier,
	store model.AuthCommitter,
	nav model.Navigator,
	cfg config.TwoFA,
	logger *logger.Logger,
	opts ...ChallengeOption,
) *Challenge {
	c := &Challenge{
		prober:   prober,
		verifier: verifier,
		store:    store,
		nav:      nav,
		cfg:      cfg,
		clock:    SystemClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start probes the ambient session. A live session is committed and the user is
// sent home; a pending second factor starts the countdown; anything else sends
// the user to sign in.
func (c *Challenge) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return model.ErrChallengeClosed
	}
	if c.started {
		c.mu.Unlock()
		return errAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	user, err := c.prober.CurrentUser(ctx)
	switch {
	case err == nil:
		c.logger.Info("2FA challenge: session already verified", "user", user.Username)
		c.succeed(user)
		return nil

	case model.IsVerificationIncomplete(err):
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return model.ErrChallengeClosed
		}
		c.phase = PhaseAwaitingCode
		c.remaining = int(c.cfg.Budget / tick)
		c.ticker = c.clock.AfterFunc(tick, c.onTick)
		state := c.snapshotLocked()
		c.mu.Unlock()

		c.logger.Debug("2FA challenge: awaiting code", "seconds", state.SecondsRemaining)
		c.emit(state)
		return nil

	default:
		c.logger.Info("2FA challenge: no pending verification", "error", err.Error())
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return model.ErrChallengeClosed
		}
		c.phase = PhaseAborted
		c.err = err
		state := c.snapshotLocked()
		c.mu.Unlock()

		c.emit(state)
		c.nav.Navigate(signInPath)
		return fmt.Errorf("failed to find pending verification: %w", err)
	}
}

func (c *Challenge) onTick() {
	c.mu.Lock()
	if c.closed || c.expired || c.phase == PhaseSuccess {
		c.mu.Unlock()
		return
	}

	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.expired = true
		c.ticker = nil
		// an in-flight submission still settles the phase
		if c.phase != PhaseVerifying {
			c.phase = PhaseExpired
			c.err = model.NewChallengeExpiredError(expiredMessage)
		}
	} else {
		c.ticker = c.clock.AfterFunc(tick, c.onTick)
	}
	state := c.snapshotLocked()
	c.mu.Unlock()

	if state.SecondsRemaining == 0 {
		c.logger.Info("2FA challenge: countdown expired")
	}
	c.emit(state)
}

// Submit verifies the entered code. Expired, incomplete and concurrent
// submissions are refused locally.
func (c *Challenge) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return model.ErrChallengeClosed
	case c.phase == PhaseVerifying:
		c.mu.Unlock()
		return model.ErrSubmissionInFlight
	case c.expired || c.phase == PhaseExpired:
		err := model.NewChallengeExpiredError(expiredMessage)
		c.phase = PhaseExpired
		c.err = err
		state := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(state)
		return err
	case c.phase != PhaseAwaitingCode && c.phase != PhaseFailed:
		phase := c.phase
		c.mu.Unlock()
		return fmt.Errorf("cannot submit code in phase %s", phase)
	case !c.buf.Complete():
		c.err = model.ErrIncompleteCode
		state := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(state)
		return model.ErrIncompleteCode
	}

	code := c.buf.Code()
	c.phase = PhaseVerifying
	c.err = nil
	state := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state)

	user, err := c.verifier.VerifyTwoFactor(ctx, code)
	if err == nil {
		c.logger.Info("2FA challenge: verified", "user", user.Username)
		c.succeed(user)
		return nil
	}

	c.mu.Lock()
	c.buf.Clear()
	scheduled := false
	switch {
	case c.closed || c.phase == PhaseAborted:
		// abandoned while verifying
	case model.IsExpiry(err):
		c.phase = PhaseExpired
		c.expired = true
		c.stopTickerLocked()
		if !c.closed && c.redirect == nil {
			c.redirect = c.clock.AfterFunc(c.cfg.ExpiryRedirectDelay, c.redirectToSignIn)
			scheduled = true
		}
	case c.expired:
		c.phase = PhaseExpired
	default:
		c.phase = PhaseFailed
	}
	if !c.closed && c.phase != PhaseAborted {
		c.err = err
	}
	closed := c.closed
	state = c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("2FA challenge: verification failed", "error", err.Error(), "redirect_scheduled", scheduled)
	if !closed {
		c.emit(state)
	}
	return err
}

func (c *Challenge) succeed(user model.User) {
	c.store.Login(user)

	c.mu.Lock()
	c.stopTimersLocked()
	closed := c.closed
	if !closed {
		c.phase = PhaseSuccess
		c.err = nil
	}
	state := c.snapshotLocked()
	c.mu.Unlock()

	if closed {
		return
	}
	c.emit(state)
	c.nav.Navigate(homePath)
}

func (c *Challenge) redirectToSignIn() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.redirect = nil
	c.mu.Unlock()

	c.nav.Navigate(signInPath)
}

// ReturnToSignIn abandons the challenge and goes to sign in. The challenge is
// aborted and accepts no further input or submissions.
func (c *Challenge) ReturnToSignIn() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimersLocked()
	if c.phase != PhaseSuccess {
		c.phase = PhaseAborted
		c.err = nil
	}
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("2FA challenge: abandoned")
	c.emit(state)
	c.nav.Navigate(signInPath)
}

// Close stops every timer. The Challenge makes no further calls afterwards.
func (c *Challenge) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.phase = PhaseClosed
	c.stopTimersLocked()
}

// Input sets one code cell. It reports whether the value was accepted.
func (c *Challenge) Input(i int, v string) bool {
	return c.edit(func(b *CodeBuffer) bool { return b.Input(i, v) })
}

// Backspace clears cell i or moves focus back.
func (c *Challenge) Backspace(i int) {
	c.edit(func(b *CodeBuffer) bool {
		b.Backspace(i)
		return true
	})
}

// Paste fills the code from pasted text.
func (c *Challenge) Paste(text string) {
	c.edit(func(b *CodeBuffer) bool {
		b.Paste(text)
		return true
	})
}

func (c *Challenge) edit(fn func(*CodeBuffer) bool) bool {
	c.mu.Lock()
	if c.closed || c.expired || (c.phase != PhaseAwaitingCode && c.phase != PhaseFailed) {
		c.mu.Unlock()
		return false
	}
	ok := fn(&c.buf)
	state := c.snapshotLocked()
	c.mu.Unlock()

	if ok {
		c.emit(state)
	}
	return ok
}

// Snapshot returns the current state.
func (c *Challenge) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

func (c *Challenge) snapshotLocked() State {
	return State{
		Phase:            c.phase,
		Code:             c.buf.Cells(),
		Focus:            c.buf.Focus(),
		SecondsRemaining: c.remaining,
		Err:              c.err,
	}
}

func (c *Challenge) emit(state State) {
	if c.onChange != nil {
		c.onChange(state)
	}
}

func (c *Challenge) stopTickerLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Challenge) stopTimersLocked() {
	c.stopTickerLocked()
	if c.redirect != nil {
		c.redirect.Stop()
		c.redirect = nil
	}
}
