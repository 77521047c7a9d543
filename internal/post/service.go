// Package post はブログ記事の作成・参照・更新・削除を提供する。
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/policy"
	"github.com/hitoshi/blogapi/internal/repository"
	"github.com/hitoshi/blogapi/internal/security"
)

// Input は記事の作成・更新の入力。
type Input struct {
	Title   string
	Content string
}

// Service は記事のサービス層。
type Service struct {
	posts     repository.PostRepository
	sanitizer security.ContentSanitizer
	enforcer  *policy.Enforcer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(posts repository.PostRepository, sanitizer security.ContentSanitizer, enforcer *policy.Enforcer) *Service {
	return &Service{
		posts:     posts,
		sanitizer: sanitizer,
		enforcer:  enforcer,
		now:       time.Now,
	}
}

// Create は呼び出し元を所有者として記事を作成する。
func (s *Service) Create(ctx context.Context, caller *model.User, in Input) (*model.Post, error) {
	if caller == nil {
		return nil, model.NewAuthenticationRequiredError()
	}
	title, content, err := s.clean(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Post{
		ID:        uuid.New().String(),
		OwnerID:   caller.ID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("記事の作成に失敗しました: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", p.ID),
		slog.String("owner_id", p.OwnerID),
	)
	return p, nil
}

// Get は指定IDの記事を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return p, nil
}

// List は条件に一致する記事を新しい順に返す。2番目の戻り値は総件数。
func (s *Service) List(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error) {
	filter.ListParams = filter.ListParams.Normalize()
	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return posts, total, nil
}

// Update はタイトルと本文を更新する。所有者のみ実行でき、所有者は変更されない。
func (s *Service) Update(ctx context.Context, caller *model.User, id string, in Input) (*model.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(caller, p.OwnerID, policy.ResourcePost, policy.ActionUpdate, policy.TierOwner); err != nil {
		return nil, err
	}

	title, content, err := s.clean(in)
	if err != nil {
		return nil, err
	}

	updated := *p
	updated.Title = title
	updated.Content = content
	updated.UpdatedAt = s.now()
	if err := s.posts.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewPostNotFoundError(id)
		}
		return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
	}

	slog.Info("post updated", slog.String("post_id", p.ID))
	return &updated, nil
}

// Delete は記事を削除する。所有者・MODERATOR・ADMINが実行できる。
// 記事に付いたコメントも削除される。
func (s *Service) Delete(ctx context.Context, caller *model.User, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.enforcer.Authorize(caller, p.OwnerID, policy.ResourcePost, policy.ActionDelete, policy.TierOwnerOrModerator); err != nil {
		return err
	}

	if err := s.posts.DeleteByID(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewPostNotFoundError(id)
		}
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	slog.Info("post deleted",
		slog.String("post_id", p.ID),
		slog.String("caller_id", caller.ID),
	)
	return nil
}

// clean は入力を検証し、サニタイズ済みのタイトルと本文を返す。
// サニタイズの結果が空になる入力は未入力として扱う。
func (s *Service) clean(in Input) (string, string, error) {
	if err := model.ValidateRequiredText("title", in.Title, 0); err != nil {
		return "", "", err
	}
	if err := model.ValidateRequiredText("content", in.Content, 0); err != nil {
		return "", "", err
	}

	// 長さは保存される値（サニタイズ後）で数える
	title := s.sanitizer.SanitizeText(in.Title)
	if err := model.ValidateRequiredText("title", title, model.MaxPostTitleLength); err != nil {
		return "", "", err
	}
	content := s.sanitizer.SanitizeHTML(in.Content)
	if err := model.ValidateRequiredText("content", content, model.MaxPostContentLength); err != nil {
		return "", "", err
	}
	return title, content, nil
}
