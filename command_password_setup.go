package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type SetupPasswordMessage struct {
	Email    string `json:"email" example:"alice@ecclesiaflow.com" doc:"Member email"`
	Password string `json:"password" example:"some_secret_word" doc:"Initial password"`
	Token    string `json:"token" doc:"Temporary password setup token"`
}

func (e SetupPasswordMessage) Type() string { return "member.password.setup" }

func (e SetupPasswordMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(1, 100)),
		validation.Field(&e.Token, validation.Required),
	)
}

// SetupPasswordHandler drives the no-password -> password-set transition.
// The transition is one-directional and deliberately not idempotent: a second
// setup for the same email fails instead of overwriting the first password.
type SetupPasswordHandler struct {
	repo          RepositoryManager
	tokens        TokenService
	confirmations ConfirmationOracle
	hasher        PasswordHasher
	activity      ActivitySink
	now           func() time.Time
	logger        Logger
}

// NewSetupPasswordHandler creates a handler with sane defaults.
func NewSetupPasswordHandler(repo RepositoryManager, tokens TokenService, confirmations ConfirmationOracle) *SetupPasswordHandler {
	return &SetupPasswordHandler{
		repo:          repo,
		tokens:        tokens,
		confirmations: confirmations,
		hasher:        BcryptHasher{},
		activity:      noopActivitySink{},
		now:           time.Now,
		logger:        defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password setup events.
func (h *SetupPasswordHandler) WithActivitySink(sink ActivitySink) *SetupPasswordHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithHasher overrides the password hasher used by the handler.
func (h *SetupPasswordHandler) WithHasher(hasher PasswordHasher) *SetupPasswordHandler {
	if hasher != nil {
		h.hasher = hasher
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *SetupPasswordHandler) WithClock(clock func() time.Time) *SetupPasswordHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *SetupPasswordHandler) WithLogger(logger Logger) *SetupPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SetupPasswordHandler) Execute(ctx context.Context, event SetupPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password setup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SetupPasswordHandler) execute(ctx context.Context, event SetupPasswordMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password setup request")
	}

	ok, err := h.tokens.ValidateTemporaryToken(event.Token, event.Email)
	if err != nil {
		return err
	}
	if !ok {
		// invalid or expired setup tokens read the same as bad credentials
		return ErrInvalidCredentials
	}

	confirmed, err := h.confirmations.IsConfirmed(ctx, event.Email)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "confirmation check failed").
			WithTextCode("CONFIRMATION_CHECK_FAILED")
	}
	if !confirmed {
		return ErrMemberNotConfirmed
	}

	member := &Member{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &Member{
			Email: event.Email,
			Role:  RoleMember,
		}
		if id, err := hashid.NewUUID(event.Email); err == nil {
			record.ID = id
		}

		member, err = h.repo.Members().GetOrCreateTx(ctx, tx, record)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not resolve member record")
		}

		if member.HasPassword() {
			return ErrPasswordAlreadySet
		}

		passwordHash, err := h.hasher.Hash(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
		}

		if err := h.repo.Members().SetPasswordTx(ctx, tx, member.ID, passwordHash, h.now()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store member password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password setup transaction failed")
	}

	h.recordActivity(ctx, member)

	return nil
}

func (h *SetupPasswordHandler) recordActivity(ctx context.Context, member *Member) {
	if member == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventPasswordSetupSuccess,
		Actor: ActorRef{
			ID:   member.ID.String(),
			Type: "member",
		},
		MemberID: member.ID.String(),
		Metadata: map[string]any{
			"email": member.Email,
		},
		OccurredAt: h.now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password setup: %v", err)
	}
}
