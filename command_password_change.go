package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ChangePasswordMessage struct {
	Email           string `json:"email" example:"alice@ecclesiaflow.com" doc:"Member email"`
	CurrentPassword string `json:"current_password" doc:"Password currently on record"`
	NewPassword     string `json:"new_password" doc:"Replacement password"`
}

func (e ChangePasswordMessage) Type() string { return "member.password.change" }

func (e ChangePasswordMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.CurrentPassword, validation.Required),
		validation.Field(&e.NewPassword, validation.Required, validation.Length(1, 100)),
	)
}

// ChangePasswordHandler rotates the password of a member that already
// completed the initial setup. Requires the current password and a confirmed
// account; either every check passes and the new hash is persisted, or the
// stored hash is left untouched.
type ChangePasswordHandler struct {
	repo          RepositoryManager
	confirmations ConfirmationOracle
	hasher        PasswordHasher
	activity      ActivitySink
	now           func() time.Time
	logger        Logger
}

// NewChangePasswordHandler creates a handler with sane defaults.
func NewChangePasswordHandler(repo RepositoryManager, confirmations ConfirmationOracle) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		repo:          repo,
		confirmations: confirmations,
		hasher:        BcryptHasher{},
		activity:      noopActivitySink{},
		now:           time.Now,
		logger:        defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password change events.
func (h *ChangePasswordHandler) WithActivitySink(sink ActivitySink) *ChangePasswordHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithHasher overrides the password hasher used by the handler.
func (h *ChangePasswordHandler) WithHasher(hasher PasswordHasher) *ChangePasswordHandler {
	if hasher != nil {
		h.hasher = hasher
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *ChangePasswordHandler) WithClock(clock func() time.Time) *ChangePasswordHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password change request")
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
		member, err = h.repo.Members().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrMemberNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve member record")
		}

		if !member.HasPassword() {
			return ErrPasswordNotSet
		}

		if err := h.hasher.Verify(event.CurrentPassword, member.PasswordHash); err != nil {
			return ErrInvalidCredentials
		}

		passwordHash, err := h.hasher.Hash(event.NewPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		if err := h.repo.Members().SetPasswordTx(ctx, tx, member.ID, passwordHash, h.now()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update member password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password change transaction failed")
	}

	h.recordActivity(ctx, member)

	return nil
}

func (h *ChangePasswordHandler) recordActivity(ctx context.Context, member *Member) {
	if member == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventPasswordChanged,
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
		h.logger.Warn("activity sink error during password change: %v", err)
	}
}
