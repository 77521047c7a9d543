package auth

import (
	"context"
	"fmt"

	"github.com/hitoshi/blogapi/internal/model"
)

// TokenVerifier はトークン検証のインターフェース。token.Serviceが満たす。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// VerificationRecorder はトークン検証の結果を記録する。
type VerificationRecorder interface {
	RecordTokenVerification(outcome string)
}

// トークン検証の結果
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// Resolver はトークンから認証主体のユーザーを解決する。
// 解決結果はキャッシュせず、リクエストごとにストアを参照する。
type Resolver struct {
	verifier TokenVerifier
	store    CredentialStore
	recorder VerificationRecorder
}

// NewResolver はResolverを生成する。recorderはnilでもよい。
func NewResolver(verifier TokenVerifier, store CredentialStore, recorder VerificationRecorder) *Resolver {
	return &Resolver{
		verifier: verifier,
		store:    store,
		recorder: recorder,
	}
}

// Resolve はトークンを検証し、主体のユーザーを返す。
// トークンが不正・期限切れの場合はInvalidTokenエラー、
// 主体のユーザーが既に削除されている場合はResourceNotFoundエラーを返す。
// tokenはヘッダーから取り出した生のトークン文字列であること。
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	email, err := r.verifier.Verify(token)
	if err != nil {
		r.record(OutcomeInvalid)
		return nil, err
	}
	r.record(OutcomeValid)

	user, err := r.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}
	if user == nil {
		return nil, model.NewPrincipalNotFoundError()
	}
	return user, nil
}

func (r *Resolver) record(outcome string) {
	if r.recorder != nil {
		r.recorder.RecordTokenVerification(outcome)
	}
}
