// Package comment は記事へのコメントの作成・参照・更新・削除を提供する。
package comment

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

// Input はコメントの作成・更新の入力。
type Input struct {
	Body string
}

// PostFinder は親記事の存在確認に使う。repository.PostRepositoryが満たす。
type PostFinder interface {
	FindByID(ctx context.Context, id string) (*model.Post, error)
}

// Service はコメントのサービス層。
type Service struct {
	comments  repository.CommentRepository
	posts     PostFinder
	sanitizer security.ContentSanitizer
	enforcer  *policy.Enforcer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(comments repository.CommentRepository, posts PostFinder, sanitizer security.ContentSanitizer, enforcer *policy.Enforcer) *Service {
	return &Service{
		comments:  comments,
		posts:     posts,
		sanitizer: sanitizer,
		enforcer:  enforcer,
		now:       time.Now,
	}
}

// Create は記事にコメントを追加する。記事が存在しない場合はNotFoundを返す。
func (s *Service) Create(ctx context.Context, caller *model.User, postID string, in Input) (*model.Comment, error) {
	if caller == nil {
		return nil, model.NewAuthenticationRequiredError()
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	body, err := s.clean(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &model.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		OwnerID:   caller.ID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}

	slog.Info("comment created",
		slog.String("comment_id", c.ID),
		slog.String("post_id", postID),
		slog.String("owner_id", c.OwnerID),
	)
	return c, nil
}

// Get は指定IDのコメントを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("コメントの取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewCommentNotFoundError(id)
	}
	return c, nil
}

// ListByPost は記事に付いたコメントを古い順に返す。記事が存在しない場合はNotFoundを返す。
func (s *Service) ListByPost(ctx context.Context, postID string, params model.ListParams) ([]*model.Comment, int, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.comments.ListByPost(ctx, postID, params.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	return comments, total, nil
}

// List は全コメントを新しい順に返す。
func (s *Service) List(ctx context.Context, params model.ListParams) ([]*model.Comment, int, error) {
	comments, total, err := s.comments.List(ctx, params.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	return comments, total, nil
}

// Update は本文を更新する。所有者のみ実行できる。
func (s *Service) Update(ctx context.Context, caller *model.User, id string, in Input) (*model.Comment, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(caller, c.OwnerID, policy.ResourceComment, policy.ActionUpdate, policy.TierOwner); err != nil {
		return nil, err
	}

	body, err := s.clean(in)
	if err != nil {
		return nil, err
	}

	updated := *c
	updated.Body = body
	updated.UpdatedAt = s.now()
	if err := s.comments.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewCommentNotFoundError(id)
		}
		return nil, fmt.Errorf("コメントの更新に失敗しました: %w", err)
	}

	slog.Info("comment updated", slog.String("comment_id", c.ID))
	return &updated, nil
}

// Delete はコメントを削除する。所有者・MODERATOR・ADMINが実行できる。
func (s *Service) Delete(ctx context.Context, caller *model.User, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.enforcer.Authorize(caller, c.OwnerID, policy.ResourceComment, policy.ActionDelete, policy.TierOwnerOrModerator); err != nil {
		return err
	}

	if err := s.comments.DeleteByID(ctx, c.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewCommentNotFoundError(id)
		}
		return fmt.Errorf("コメントの削除に失敗しました: %w", err)
	}

	slog.Info("comment deleted",
		slog.String("comment_id", c.ID),
		slog.String("caller_id", caller.ID),
	)
	return nil
}

func (s *Service) requirePost(ctx context.Context, postID string) error {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if p == nil {
		return model.NewPostNotFoundError(postID)
	}
	return nil
}

func (s *Service) clean(in Input) (string, error) {
	if err := model.ValidateRequiredText("body", in.Body, 0); err != nil {
		return "", err
	}
	// 長さは保存される値（サニタイズ後）で数える
	body := s.sanitizer.SanitizeText(in.Body)
	if err := model.ValidateRequiredText("body", body, model.MaxCommentLength); err != nil {
		return "", err
	}
	return body, nil
}
