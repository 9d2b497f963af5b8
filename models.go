package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemberRole is the member's role
type MemberRole = string

const (
	// RoleMember is the default role assigned when a password is first set
	RoleMember MemberRole = "member"
	// RoleAdmin is an administrative role
	RoleAdmin MemberRole = "admin"
)

// CredentialState describes where a member sits in the password lifecycle.
type CredentialState string

const (
	// CredentialStateNoPassword means the member was provisioned but never
	// completed the initial password setup (enabled=false).
	CredentialStateNoPassword CredentialState = "no_password"
	// CredentialStatePasswordSet means the member holds a usable password
	// (enabled=true). The transition is one-directional.
	CredentialStatePasswordSet CredentialState = "password_set"
)

// Member is the membership identity record
type Member struct {
	bun.BaseModel `bun:"table:members,alias:mbr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"password_hash,omitempty"`
	Role          MemberRole `bun:"member_role,notnull" json:"member_role,omitempty"`
	Enabled       bool       `bun:"enabled" json:"enabled,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasPassword reports whether the member completed the initial password setup.
func (m *Member) HasPassword() bool {
	return m != nil && m.Enabled && m.PasswordHash != ""
}

// CredentialState resolves the member's current credential state.
func (m *Member) CredentialState() CredentialState {
	if m.HasPassword() {
		return CredentialStatePasswordSet
	}
	return CredentialStateNoPassword
}

// EnsureRole backfills the default role for records created before the role
// column was populated.
func (m *Member) EnsureRole() {
	if m == nil {
		return
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
}
