package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// MemberProvider is the default MemberVerifier, backed by a member lookup and
// a password hasher.
type MemberProvider struct {
	store  MemberLookup
	hasher PasswordHasher
	logger Logger
}

// NewMemberProvider will create a new MemberProvider
func NewMemberProvider(store MemberLookup) *MemberProvider {
	return &MemberProvider{
		store:  store,
		hasher: BcryptHasher{},
		logger: defLogger{},
	}
}

func (p *MemberProvider) WithLogger(l Logger) *MemberProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithHasher overrides the password hasher used for verification.
func (p *MemberProvider) WithHasher(h PasswordHasher) *MemberProvider {
	if h != nil {
		p.hasher = h
	}
	return p
}

// VerifyMember will find the member and compare the password against the
// stored hash. A missing record, a record without a password, and a mismatch
// all collapse into ErrInvalidCredentials.
func (p MemberProvider) VerifyMember(ctx context.Context, email, password string) (*Member, error) {
	member, err := p.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve member during verification")
	}

	if member == nil || !member.HasPassword() {
		return nil, ErrInvalidCredentials
	}

	if err := p.hasher.Verify(password, member.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	member.EnsureRole()

	return member, nil
}

// FindMemberByEmail resolves a member without checking credentials. Used by
// the refresh flow, where the token itself is the credential.
func (p MemberProvider) FindMemberByEmail(ctx context.Context, email string) (*Member, error) {
	member, err := p.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if member == nil {
		return nil, ErrMemberNotFound
	}

	member.EnsureRole()

	return member, nil
}

var _ MemberVerifier = MemberProvider{}
