// Package user はユーザー（認証主体）のライフサイクル管理を提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogapi/internal/auth"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/policy"
	"github.com/hitoshi/blogapi/internal/repository"
)

// MaxNameLength は表示名の最大文字数。
const MaxNameLength = 100

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateInput はプロフィール更新の入力。Passwordが空の場合は変更しない。
type UpdateInput struct {
	Name     string
	Email    string
	Password string
}

// Service はユーザー管理のサービス層。
type Service struct {
	users    repository.UserRepository
	hasher   auth.PasswordHasher
	enforcer *policy.Enforcer
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users repository.UserRepository, hasher auth.PasswordHasher, enforcer *policy.Enforcer) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		enforcer: enforcer,
		now:      time.Now,
	}
}

// Register は一般ユーザー（USER）を登録する。
// メールアドレスが登録済みの場合はBusinessConflictエラーを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validateProfile(in.Name, in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password, true); err != nil {
		return nil, err
	}
	return s.create(ctx, in.Name, in.Email, in.Password, model.RoleUser)
}

// create は事前チェックの後にユーザーを作成する。
// 同時登録で事前チェックをすり抜けた重複は、ストアの一意制約で検出する。
func (s *Service) create(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("メールアドレスの確認に失敗しました: %w", err)
	}
	if exists {
		return nil, model.NewEmailExistsError()
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailExistsError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", u.ID),
		slog.String("role", string(u.Role)),
	)
	return u, nil
}

// Get は指定IDのユーザーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return u, nil
}

// GetByEmail はメールアドレスの完全一致でユーザーを返す。
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError(email)
	}
	return u, nil
}

// List はユーザー一覧と総件数を返す。
func (s *Service) List(ctx context.Context, params model.ListParams) ([]*model.User, int, error) {
	users, total, err := s.users.List(ctx, params.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, total, nil
}

// Update はプロフィールを更新する。本人またはADMINのみ実行できる。
// メールアドレスの重複チェックは自分自身を除外して行う。
func (s *Service) Update(ctx context.Context, caller *model.User, id string, in UpdateInput) (*model.User, error) {
	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(caller, target.ID, policy.ResourceUser, policy.ActionUpdate, policy.TierOwnerOrAdmin); err != nil {
		return nil, err
	}

	if err := validateProfile(in.Name, in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password, false); err != nil {
		return nil, err
	}

	if in.Email != target.Email {
		existing, err := s.users.FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("メールアドレスの確認に失敗しました: %w", err)
		}
		if existing != nil && existing.ID != target.ID {
			return nil, model.NewEmailExistsError()
		}
	}

	updated := *target
	updated.Name = in.Name
	updated.Email = in.Email
	updated.UpdatedAt = s.now()
	if in.Password != "" {
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hash
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, model.NewEmailExistsError()
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewUserNotFoundError(id)
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	slog.Info("user updated",
		slog.String("user_id", target.ID),
		slog.String("caller_id", caller.ID),
	)
	return &updated, nil
}

// ChangeRole はユーザーのロールを変更する。ADMINのみ実行でき、所有関係は考慮しない。
func (s *Service) ChangeRole(ctx context.Context, caller *model.User, id, role string) (*model.User, error) {
	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.RequireAdmin(caller, policy.ResourceUser, policy.ActionChangeRole); err != nil {
		return nil, err
	}

	newRole, ok := model.ParseRole(role)
	if !ok {
		return nil, model.NewInvalidRoleError(role)
	}

	if err := s.users.UpdateRole(ctx, target.ID, newRole); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewUserNotFoundError(id)
		}
		return nil, fmt.Errorf("ロールの更新に失敗しました: %w", err)
	}

	slog.Info("user role changed",
		slog.String("user_id", target.ID),
		slog.String("from", string(target.Role)),
		slog.String("to", string(newRole)),
		slog.String("caller_id", caller.ID),
	)

	updated := *target
	updated.Role = newRole
	updated.UpdatedAt = s.now()
	return &updated, nil
}

// Delete はユーザーを削除する。本人（退会）またはADMINのみ実行できる。
// 所有する記事・コメントはストアのCASCADEで削除される。
// 発行済みトークンは失効しないが、主体の解決時に存在しないユーザーとして拒否される。
func (s *Service) Delete(ctx context.Context, caller *model.User, id string) error {
	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.enforcer.Authorize(caller, target.ID, policy.ResourceUser, policy.ActionDelete, policy.TierOwnerOrAdmin); err != nil {
		return err
	}

	if err := s.users.DeleteByID(ctx, target.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError(id)
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("user deleted",
		slog.String("user_id", target.ID),
		slog.String("caller_id", caller.ID),
	)
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", model.NewInvalidInputError("password", "長すぎます")
	}
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}
	return hash, nil
}

func validateProfile(name, email string) error {
	if err := model.ValidateRequiredText("name", name, MaxNameLength); err != nil {
		return err
	}
	return model.ValidateEmail(email)
}

// maxPasswordBytes はbcryptが扱えるパスワードの最大バイト数。
const maxPasswordBytes = 72

func validatePassword(password string, required bool) error {
	if password == "" {
		if required {
			return model.NewInvalidInputError("password", "必須項目です")
		}
		return nil
	}
	if len(password) > maxPasswordBytes {
		return model.NewInvalidInputError("password", "長すぎます")
	}
	return nil
}
