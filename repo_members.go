package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var SetMemberPasswordSQL = `UPDATE "members" AS "mbr"
SET
	"password_hash" = ?,
	"enabled" = TRUE,
	"updated_at" = ?
WHERE
	"mbr"."deleted_at" IS NULL
AND (
	"mbr"."id" = ?
) RETURNING *;`

// Members is the member repository. It extends the generic repository with
// the email lookups and the password update the credential flows need.
type Members interface {
	repository.Repository[*Member]

	GetByEmail(ctx context.Context, email string) (*Member, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Member, error)

	// GetOrCreate is the explicit create-if-absent capability used by the
	// password setup flow: accounts can be pre-provisioned by email before
	// their first password is set.
	GetOrCreate(ctx context.Context, record *Member) (*Member, error)
	GetOrCreateTx(ctx context.Context, tx bun.IDB, record *Member) (*Member, error)

	Create(ctx context.Context, record *Member, criteria ...repository.InsertCriteria) (*Member, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Member, criteria ...repository.InsertCriteria) (*Member, error)

	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error
	SetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, updatedAt time.Time) error
}

type members struct {
	repository.Repository[*Member]
	db *bun.DB
}

var (
	_ Members                        = (*members)(nil)
	_ repository.Repository[*Member] = (*members)(nil)
)

func NewMembersRepository(db *bun.DB) Members {
	repo := repository.NewRepository[*Member](db, repository.ModelHandlers[*Member]{
		NewRecord: func() *Member { return &Member{} },
		GetID: func(m *Member) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Member, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &members{
		Repository: repo,
		db:         db,
	}
}

func (a *members) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *members) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Member, error) {
	record := &Member{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *members) Create(ctx context.Context, record *Member, criteria ...repository.InsertCriteria) (*Member, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *members) CreateTx(ctx context.Context, tx bun.IDB, record *Member, criteria ...repository.InsertCriteria) (*Member, error) {
	prepareMemberDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *members) GetOrCreate(ctx context.Context, record *Member) (*Member, error) {
	return a.GetOrCreateTx(ctx, a.db, record)
}

func (a *members) GetOrCreateTx(ctx context.Context, tx bun.IDB, record *Member) (*Member, error) {
	member, err := a.GetByEmailTx(ctx, tx, record.Email)
	if err == nil {
		return member, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return a.CreateTx(ctx, tx, record)
}

func (a *members) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error {
	return a.SetPasswordTx(ctx, a.db, id, passwordHash, updatedAt)
}

func (a *members) SetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, updatedAt time.Time) error {
	res, err := a.Repository.RawTx(ctx, tx, SetMemberPasswordSQL, passwordHash, updatedAt, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareMemberDefaults(record *Member) {
	if record == nil {
		return
	}

	record.EnsureRole()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
