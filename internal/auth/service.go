// Package auth はメールアドレスとパスワードによるログインと、
// Bearerトークンからの認証主体の解決を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/blogapi/internal/model"
)

// CredentialStore は認証に必要なユーザー検索のインターフェース。
// repository.UserRepositoryが満たす。
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenIssuer はトークン発行のインターフェース。token.Serviceが満たす。
type TokenIssuer interface {
	Issue(subject string) (string, error)
	TTL() time.Duration
}

// LoginRecorder はログイン試行の結果を記録する。
type LoginRecorder interface {
	RecordLogin(outcome string)
}

// ログイン試行の結果
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// dummyPassword はユーザー不在時の照合に使うダミーハッシュの元になる値。
const dummyPassword = "blogapi-timing-equalizer"

// Service はログイン（認証情報の検証とトークン発行）を行う。
type Service struct {
	store     CredentialStore
	hasher    PasswordHasher
	tokens    TokenIssuer
	recorder  LoginRecorder
	dummyHash string
}

// NewService はServiceを生成する。
// ユーザー不在時にも同じコストの照合を行うため、生成時にダミーハッシュを計算する。
func NewService(store CredentialStore, hasher PasswordHasher, tokens TokenIssuer, recorder LoginRecorder) (*Service, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &Service{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		recorder:  recorder,
		dummyHash: dummy,
	}, nil
}

// TokenTTL は発行するトークンの有効期間を返す。
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Authenticate はメールアドレスとパスワードを検証し、成功時にトークンを返す。
// メールアドレスの不在とパスワード不一致は同一のUnauthorizedエラーとなり、
// どちらの場合もハッシュ照合を1回行うため応答時間でも区別できない。
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}

	hash := s.dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	matched := s.hasher.Compare(hash, password)

	if user == nil || !matched {
		s.record(OutcomeFailure)
		slog.Info("login failed")
		return "", model.NewUnauthorizedError()
	}

	tok, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.record(OutcomeSuccess)
	slog.Info("user logged in", slog.String("user_id", user.ID))
	return tok, nil
}

func (s *Service) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordLogin(outcome)
	}
}
