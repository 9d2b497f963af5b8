package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Auther orchestrates credential verification, token pair issuance, and
// refresh. It holds no mutable state of its own; every login is
// Unauthenticated -> CredentialsChecked -> Authenticated or Rejected.
type Auther struct {
	verifier     MemberVerifier
	tokens       TokenService
	activitySink ActivitySink
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(verifier MemberVerifier, tokens TokenService) *Auther {
	return &Auther{
		verifier:     verifier,
		tokens:       tokens,
		activitySink: noopActivitySink{},
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Authenticate verifies the given credentials and returns the member. Unknown
// emails and wrong passwords both come back as ErrInvalidCredentials; the
// caller never learns which part failed.
func (s *Auther) Authenticate(ctx context.Context, creds Credentials) (*Member, error) {
	member, err := s.verifier.VerifyMember(ctx, creds.Email, creds.Password)
	if err != nil {
		s.logger.Error("Authenticate verify member error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"email": creds.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	if member == nil {
		s.logger.Error("Authenticate verifier returned nil member")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"email": creds.Email,
			"error": ErrInvalidCredentials.Message,
		})
		return nil, ErrInvalidCredentials
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromMember(member), member.ID.String(), map[string]any{
		"email": creds.Email,
	})

	return member, nil
}

// IssueTokenPair issues an access/refresh pair for an authenticated member.
// Pure orchestration over TokenService, no persistence side effect.
func (s *Auther) IssueTokenPair(member *Member) (TokenPair, error) {
	if member == nil {
		return TokenPair{}, goerrors.New("member is required", goerrors.CategoryBadInput)
	}

	access, err := s.tokens.IssueAccessToken(member.Email)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.tokens.IssueRefreshToken(member.Email)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh validates the refresh token, re-resolves the member, and issues a
// new access token. The original refresh token rides along unchanged: refresh
// tokens are not rotated on use.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if _, err := s.tokens.IsRefreshTokenValid(refreshToken); err != nil {
		s.logger.Error("Refresh token rejected", "error", err)
		return TokenPair{}, err
	}

	subject, err := s.tokens.ExtractSubject(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	member, err := s.verifier.FindMemberByEmail(ctx, subject)
	if err != nil {
		s.logger.Error("Refresh could not resolve member", "error", err)
		if goerrors.IsNotFound(err) {
			return TokenPair{}, ErrMemberNotFound
		}
		return TokenPair{}, err
	}

	if member == nil {
		return TokenPair{}, ErrMemberNotFound
	}

	access, err := s.tokens.IssueAccessToken(member.Email)
	if err != nil {
		return TokenPair{}, err
	}

	s.emitAuthEvent(ctx, ActivityEventTokenRefresh, s.actorFromMember(member), member.ID.String(), map[string]any{
		"email": member.Email,
	})

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, memberID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		MemberID:  memberID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromMember(member *Member) ActorRef {
	if member == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   member.ID.String(),
		Type: "member",
	}
}
