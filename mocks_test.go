package auth_test

import (
	"context"
	"database/sql"
	"time"

	auth "github.com/ecclesiaflow/go-membership-auth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockTokenService implements auth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueAccessToken(subject string) (string, error) {
	args := m.Called(subject)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) IssueRefreshToken(subject string) (string, error) {
	args := m.Called(subject)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) IssueTemporaryToken(email string, memberID uuid.UUID) (string, error) {
	args := m.Called(email, memberID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) IsAccessTokenValid(tokenString string) (bool, error) {
	args := m.Called(tokenString)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenService) IsRefreshTokenValid(tokenString string) (bool, error) {
	args := m.Called(tokenString)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenService) ValidateTemporaryToken(tokenString, expectedEmail string) (bool, error) {
	args := m.Called(tokenString, expectedEmail)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenService) ExtractSubject(tokenString string) (string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.Error(1)
}

// MockMemberVerifier implements auth.MemberVerifier
type MockMemberVerifier struct {
	mock.Mock
}

func (m *MockMemberVerifier) VerifyMember(ctx context.Context, email, password string) (*auth.Member, error) {
	args := m.Called(ctx, email, password)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

func (m *MockMemberVerifier) FindMemberByEmail(ctx context.Context, email string) (*auth.Member, error) {
	args := m.Called(ctx, email)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

// MockMemberLookup implements auth.MemberLookup
type MockMemberLookup struct {
	mock.Mock
}

func (m *MockMemberLookup) GetByEmail(ctx context.Context, email string) (*auth.Member, error) {
	args := m.Called(ctx, email)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

// MockConfirmationOracle implements auth.ConfirmationOracle
type MockConfirmationOracle struct {
	mock.Mock
}

func (m *MockConfirmationOracle) IsConfirmed(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockPasswordHasher implements auth.PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) error {
	args := m.Called(password, hash)
	return args.Error(0)
}

// MockActivitySink implements auth.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event auth.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockMembers implements auth.Members. The embedded repository interface
// covers the generic methods the tests never reach; calling one of those
// without an explicit mock method panics, which is what we want.
type MockMembers struct {
	mock.Mock
	repository.Repository[*auth.Member]
}

func (m *MockMembers) GetByEmail(ctx context.Context, email string) (*auth.Member, error) {
	args := m.Called(ctx, email)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

func (m *MockMembers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.Member, error) {
	args := m.Called(ctx, tx, email)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

func (m *MockMembers) GetOrCreate(ctx context.Context, record *auth.Member) (*auth.Member, error) {
	args := m.Called(ctx, record)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

func (m *MockMembers) GetOrCreateTx(ctx context.Context, tx bun.IDB, record *auth.Member) (*auth.Member, error) {
	args := m.Called(ctx, tx, record)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

func (m *MockMembers) Create(ctx context.Context, record *auth.Member, criteria ...repository.InsertCriteria) (*auth.Member, error) {
	args := m.Called(ctx, record, criteria)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

func (m *MockMembers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.Member, criteria ...repository.InsertCriteria) (*auth.Member, error) {
	args := m.Called(ctx, tx, record, criteria)
	member, _ := args.Get(0).(*auth.Member)
	return member, args.Error(1)
}

func (m *MockMembers) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error {
	args := m.Called(ctx, id, passwordHash, updatedAt)
	return args.Error(0)
}

func (m *MockMembers) SetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, id, passwordHash, updatedAt)
	return args.Error(0)
}

// stubRepositoryManager runs transaction callbacks inline against a zero
// value bun.Tx so repository mocks can intercept the calls made inside.
type stubRepositoryManager struct {
	members auth.Members
}

func (s *stubRepositoryManager) Validate() error { return nil }

func (s *stubRepositoryManager) MustValidate() {}

func (s *stubRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return f(ctx, tx)
}

func (s *stubRepositoryManager) Members() auth.Members { return s.members }

// MockRepositoryManager implements auth.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Members() auth.Members {
	args := m.Called()
	return args.Get(0).(auth.Members)
}
