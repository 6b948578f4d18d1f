package adminauth

import (
	"context"
	"sync"
	"time"

	errors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Step identifies a signup wizard position. Steps are ordered; the wizard
// only advances when the current step's validator passes.
type Step int

const (
	StepAccount Step = iota + 1
	StepProfile
	StepOrganization
	StepReview
)

const finalStep = StepReview

func (s Step) String() string {
	switch s {
	case StepAccount:
		return "account"
	case StepProfile:
		return "profile"
	case StepOrganization:
		return "organization"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// FieldName identifies an editable wizard field.
type FieldName string

const (
	FieldEmail            FieldName = "email"
	FieldPassword         FieldName = "password"
	FieldPasswordConfirm  FieldName = "passwordConfirm"
	FieldDisplayName      FieldName = "displayName"
	FieldPhone            FieldName = "phone"
	FieldOrganizationName FieldName = "organizationName"
	FieldOrganizationType FieldName = "organizationType"
)

// Fields holds the in-progress signup form across all steps.
type Fields struct {
	Email            string
	Password         string
	PasswordConfirm  string
	DisplayName      string
	Phone            string
	OrganizationName string
	OrganizationType string
}

// msgSignupFallback is shown when a submission fails and the transport
// carried no server-provided message.
const msgSignupFallback = "Failed to create account. Please try again."

// Wizard is the multi-step signup state machine. It owns its form state
// exclusively; nothing outside the active view reads or writes it.
type Wizard struct {
	mu        sync.Mutex
	step      Step
	fields    Fields
	lastError string
	dismissed bool
	completed bool

	client      SignupClient
	sessions    *Store
	logger      Logger
	activity    ActivitySink
	now         func() time.Time
	phoneRegion string
	debug       bool
	onComplete  func(Session)
}

// WizardOption customizes wizard construction.
type WizardOption func(*Wizard)

// WithWizardLogger overrides the default logger.
func WithWizardLogger(logger Logger) WizardOption {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWizardActivitySink sets the sink used for signup outcome events.
func WithWizardActivitySink(sink ActivitySink) WizardOption {
	return func(w *Wizard) {
		w.activity = normalizeActivitySink(sink)
	}
}

// WithWizardClock injects a custom clock (useful for tests).
func WithWizardClock(clock func() time.Time) WizardOption {
	return func(w *Wizard) {
		if clock != nil {
			w.now = clock
		}
	}
}

// WithWizardPhoneRegion sets the region used to normalize the optional
// phone number into E.164 on submission. Defaults to "US".
func WithWizardPhoneRegion(region string) WizardOption {
	return func(w *Wizard) {
		if region != "" {
			w.phoneRegion = region
		}
	}
}

// WithWizardDebug enables payload dumps on submission.
func WithWizardDebug(debug bool) WizardOption {
	return func(w *Wizard) {
		w.debug = debug
	}
}

// WithWizardCompletionHandler registers a callback invoked once after a
// successful submission committed the new session.
func WithWizardCompletionHandler(fn func(Session)) WizardOption {
	return func(w *Wizard) {
		w.onComplete = fn
	}
}

// NewWizard builds a signup wizard at the account step with empty fields.
func NewWizard(client SignupClient, sessions *Store, opts ...WizardOption) *Wizard {
	if client == nil {
		panic("Missing SignupClient in signup wizard...")
	}
	if sessions == nil {
		panic("Missing session Store in signup wizard...")
	}

	w := &Wizard{
		step:        StepAccount,
		client:      client,
		sessions:    sessions,
		logger:      defLogger{},
		activity:    noopActivitySink{},
		now:         time.Now,
		phoneRegion: "US",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	return w
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Fields returns a copy of the current form state.
func (w *Wizard) Fields() Fields {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields
}

// LastError returns the current validation or submission message, empty
// when there is none.
func (w *Wizard) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

// Completed reports whether a submission succeeded.
func (w *Wizard) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed
}

// EditField sets a form field and clears the current error. Unknown field
// names are ignored.
func (w *Wizard) EditField(name FieldName, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastError = ""

	switch name {
	case FieldEmail:
		w.fields.Email = value
	case FieldPassword:
		w.fields.Password = value
	case FieldPasswordConfirm:
		w.fields.PasswordConfirm = value
	case FieldDisplayName:
		w.fields.DisplayName = value
	case FieldPhone:
		w.fields.Phone = value
	case FieldOrganizationName:
		w.fields.OrganizationName = value
	case FieldOrganizationType:
		w.fields.OrganizationType = value
	default:
		w.logger.Debug("ignoring edit for unknown field %q", string(name))
	}
}

// Next validates the current step and advances on success, clamped at the
// review step. On failure the step is unchanged and the first failing
// rule's message becomes the current error. Returns whether it advanced.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := ValidateStep(w.step, w.fields); err != nil {
		w.lastError = messageOf(err)
		return false
	}

	w.lastError = ""
	if w.step < finalStep {
		w.step++
		return true
	}
	return false
}

// Back retreats one step, clamped at the account step. It never validates:
// users must be able to go back and fix earlier steps regardless of the
// current step's state.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastError = ""
	if w.step > StepAccount {
		w.step--
	}
}

// Close marks the wizard dismissed. A submission still in flight will
// discard its result instead of mutating the session.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dismissed = true
}

// Submit finalizes the wizard: it re-validates every step against the
// current fields, posts the signup payload through the client, and commits
// the returned credentials with the session version observed before the
// network call, so a logout issued mid-flight wins over the late response.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()

	if w.step != finalStep {
		w.mu.Unlock()
		return errors.New("submit is only available at the review step", errors.CategoryBadInput).
			WithMetadata(map[string]any{"step": w.step.String()})
	}

	// Defense against stale state: a field edited after its step passed
	// must not slip through.
	for step := StepAccount; step <= finalStep; step++ {
		if err := ValidateStep(step, w.fields); err != nil {
			w.lastError = messageOf(err)
			w.mu.Unlock()
			return err
		}
	}

	fields := w.fields
	region := w.phoneRegion
	observed := w.sessions.Version()
	w.mu.Unlock()

	payload := SignupPayload{
		DisplayName:      fields.DisplayName,
		Email:            fields.Email,
		Password:         fields.Password,
		PasswordConfirm:  fields.PasswordConfirm,
		Phone:            NormalizePhone(fields.Phone, region),
		OrganizationName: fields.OrganizationName,
		OrganizationType: fields.OrganizationType,
	}

	if w.debug {
		w.logger.Debug("signup payload: %s", print.MaybePrettyJSON(payload.redacted()))
	}

	result, err := w.client.Signup(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dismissed {
		return ErrWizardDismissed.Clone()
	}

	if err != nil {
		msg := serverMessage(err)
		if msg == "" {
			msg = msgSignupFallback
		}
		w.lastError = msg
		w.recordOutcome(ctx, ActivityEventSignupFailure, "", map[string]any{
			"email": fields.Email,
			"error": err.Error(),
		})
		return err
	}

	if result.AccessToken == "" || result.User == nil {
		w.lastError = msgSignupFallback
		return errors.New("signup response missing credentials", errors.CategoryInternal).
			WithTextCode(textCodeRequestFailed)
	}

	if err := w.sessions.Login(ctx, result.AccessToken, result.User, WithObservedVersion(observed)); err != nil {
		// The session moved while the signup was in flight; the login is
		// discarded rather than resurrecting a state the user left.
		return err
	}

	w.completed = true
	w.recordOutcome(ctx, ActivityEventSignupSuccess, result.User.ID, map[string]any{
		"email": fields.Email,
	})

	if w.onComplete != nil {
		w.onComplete(Session{Token: result.AccessToken, User: result.User.clone()})
	}

	return nil
}

func (w *Wizard) recordOutcome(ctx context.Context, event ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(w.activity)
	if err := sink.Record(ctx, ActivityEvent{
		EventType:  event,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: w.now(),
	}); err != nil {
		w.logger.Warn("wizard activity sink error: %v", err)
	}
}
