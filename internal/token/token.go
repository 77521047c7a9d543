// Package token はBearerトークン（HS256署名のJWT）の発行と検証を提供する。
//
// トークンはステートレスで、サーバー側の失効リストを持たない。
// 発行されたトークンは有効期限まで、主体のユーザーが変更・削除されても有効なままとなる。
// 署名鍵を切り替えると発行済みのトークンはすべて無効になる。
package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/blogapi/internal/model"
)

// DefaultTTL はトークンの既定の有効期間。
const DefaultTTL = time.Hour

// MinSecretLength はHS256署名鍵として受け付ける最小バイト数。
const MinSecretLength = 32

// Config はトークンサービスの設定。起動時に1回だけ構築し、以後は変更しない。
type Config struct {
	Secret []byte        // 署名鍵
	TTL    time.Duration // 有効期間。0以下の場合は即時失効するトークンを発行する
	Now    func() time.Time
}

// Service はトークンの発行と検証を行う。
// 署名鍵は生成後に変更されないため、複数ゴルーチンから安全に利用できる。
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Claims はトークンに埋め込むクレーム。subに主体のメールアドレスを格納する。
type Claims struct {
	jwt.RegisteredClaims
}

// NewService はServiceを生成する。
// 署名鍵が短すぎる場合はエラーを返す。
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		secret: secret,
		ttl:    cfg.TTL,
		now:    now,
	}, nil
}

// GenerateSecret はプロセス内でのみ有効な一時的な署名鍵を生成する。
// 複数インスタンス間で共有されないため、単一プロセス構成でのみ使用すること。
func GenerateSecret() ([]byte, error) {
	b := make([]byte, MinSecretLength)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate token secret: %w", err)
	}
	return b, nil
}

// TTL はトークンの有効期間を返す。
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue は主体のメールアドレスをsubに持つトークンを発行する。
// iatは秒精度に切り捨てられ、expはiat+TTLとなる。
func (s *Service) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is required")
	}

	issuedAt := s.now().Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、主体のメールアドレスを返す。
// 署名不一致、形式不正、期限切れ（現在時刻がexp以降）の場合はInvalidTokenエラーを返す。
//
// 有効期限の精度は1秒。発行時刻はiatへ秒単位で切り捨てられるため、
// トークンは発行時刻+TTLより最大1秒早く失効する。
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		slog.Debug("token verification failed", slog.String("error", err.Error()))
		return "", model.NewInvalidTokenError()
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", model.NewInvalidTokenError()
	}

	return claims.Subject, nil
}
