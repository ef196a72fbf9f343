package twofa

import (
	"context"
	"fmt"
	"sync"

	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

// Step is the position in the 2FA settings flow.
type Step int

const (
	StepStatus Step = iota
	StepGenerating
	StepVerifying
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepGenerating:
		return "generating"
	case StepVerifying:
		return "verifying"
	default:
		return "status"
	}
}

// EnrollmentState is a snapshot of an Enrollment.
type EnrollmentState struct {
	Enabled bool
	Step    Step
	Secret  *model.TwoFactorSecret
	Code    [CodeLength]string
	Focus   int
	Busy    bool
	Err     error
}

// Enrollment turns the second factor on and off for the logged-in user.
type Enrollment struct {
	api    model.TwoFactorManager
	logger *logger.Logger

	mu      sync.Mutex
	enabled bool
	step    Step
	secret  *model.TwoFactorSecret
	buf     CodeBuffer
	busy    bool
	err     error
}

// NewEnrollment creates new Enrollment instance.
func NewEnrollment(api model.TwoFactorManager, logger *logger.Logger) *Enrollment {
	return &Enrollment{
		api:    api,
		logger: logger,
	}
}

// Load fetches whether the second factor is enabled.
func (e *Enrollment) Load(ctx context.Context) (bool, error) {
	enabled, err := e.api.TwoFactorStatus(ctx)
	if err != nil {
		e.logger.Error("2FA enrollment: failed to fetch status", "error", err.Error())
		return false, fmt.Errorf("failed to fetch 2fa status: %w", err)
	}

	e.mu.Lock()
	e.enabled = enabled
	e.mu.Unlock()

	return enabled, nil
}

// Generate issues a new secret to scan into an authenticator app.
func (e *Enrollment) Generate(ctx context.Context) (model.TwoFactorSecret, error) {
	if err := e.acquire(); err != nil {
		return model.TwoFactorSecret{}, err
	}

	secret, err := e.api.GenerateTwoFactorSecret(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	if err != nil {
		e.err = err
		e.logger.Error("2FA enrollment: failed to generate secret", "error", err.Error())
		return model.TwoFactorSecret{}, fmt.Errorf("failed to generate 2fa secret: %w", err)
	}

	e.secret = &secret
	e.step = StepGenerating
	e.buf.Clear()
	return secret, nil
}

// BeginVerification moves from showing the secret to entering a code.
func (e *Enrollment) BeginVerification() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.secret == nil {
		return model.NewValidationError("Generate a secret first")
	}
	e.step = StepVerifying
	return nil
}

// Enable confirms enrollment with a code. A rejected code clears the entry.
func (e *Enrollment) Enable(ctx context.Context) error {
	code, err := e.prepareChange(false)
	if err != nil {
		return err
	}

	enabled, err := e.api.ChangeTwoFactor(ctx, code)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	if err != nil {
		e.err = err
		e.buf.Clear()
		e.logger.Info("2FA enrollment: enable rejected", "error", err.Error())
		return fmt.Errorf("failed to enable 2fa: %w", err)
	}

	e.enabled = enabled
	e.step = StepStatus
	e.secret = nil
	e.buf.Clear()
	e.logger.Info("2FA enrollment: enabled")
	return nil
}

// Disable removes the second factor with a current code. A rejected code is kept.
func (e *Enrollment) Disable(ctx context.Context) error {
	code, err := e.prepareChange(true)
	if err != nil {
		return err
	}

	enabled, err := e.api.ChangeTwoFactor(ctx, code)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	if err != nil {
		e.err = err
		e.logger.Info("2FA enrollment: disable rejected", "error", err.Error())
		return fmt.Errorf("failed to disable 2fa: %w", err)
	}

	e.enabled = enabled
	e.step = StepStatus
	e.buf.Clear()
	e.logger.Info("2FA enrollment: disabled")
	return nil
}

// Cancel drops the generated secret and returns to the status step.
func (e *Enrollment) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.step = StepStatus
	e.secret = nil
	e.buf.Clear()
	e.err = nil
}

// Input sets one code cell. It reports whether the value was accepted.
func (e *Enrollment) Input(i int, v string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.buf.Input(i, v)
}

// Backspace clears cell i or moves focus back.
func (e *Enrollment) Backspace(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Backspace(i)
}

// Paste fills the code from pasted text.
func (e *Enrollment) Paste(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Paste(text)
}

// Snapshot returns the current state.
func (e *Enrollment) Snapshot() EnrollmentState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := EnrollmentState{
		Enabled: e.enabled,
		Step:    e.step,
		Code:    e.buf.Cells(),
		Focus:   e.buf.Focus(),
		Busy:    e.busy,
		Err:     e.err,
	}
	if e.secret != nil {
		s := *e.secret
		state.Secret = &s
	}
	return state
}

func (e *Enrollment) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.busy {
		return model.ErrSubmissionInFlight
	}
	e.busy = true
	e.err = nil
	return nil
}

// prepareChange checks the preconditions of a status change and marks the
// enrollment busy. wantEnabled is the status the change starts from.
func (e *Enrollment) prepareChange(wantEnabled bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.busy:
		return "", model.ErrSubmissionInFlight
	case e.enabled != wantEnabled && wantEnabled:
		return "", model.NewValidationError("Two-factor authentication is not enabled")
	case e.enabled != wantEnabled:
		return "", model.NewValidationError("Two-factor authentication is already enabled")
	case !e.buf.Complete():
		e.err = model.ErrIncompleteCode
		return "", model.ErrIncompleteCode
	}

	e.busy = true
	e.err = nil
	return e.buf.Code(), nil
}
