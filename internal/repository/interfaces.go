// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/blogapi/internal/model"
)

// UserRepository はユーザー（認証主体）の永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスの完全一致でユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByEmail はメールアドレスが登録済みかどうかを返す。
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// Update は名前・メールアドレス・パスワードハッシュを更新する。ロールは変更しない。
	// 対象がない場合はErrNotFound、メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Update(ctx context.Context, user *model.User) error

	// UpdateRole はロールのみを更新する。対象がない場合はErrNotFoundを返す。
	UpdateRole(ctx context.Context, id string, role model.Role) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有する記事・コメントはCASCADE削除される。対象がない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error

	// List はユーザー一覧を作成日時の昇順で返す。2番目の戻り値は総件数。
	List(ctx context.Context, params model.ListParams) ([]*model.User, int, error)
}

// PostRepository は記事の永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Create は記事を作成する。
	Create(ctx context.Context, post *model.Post) error

	// Update はタイトルと本文を更新する。所有者は変更しない。対象がない場合はErrNotFoundを返す。
	Update(ctx context.Context, post *model.Post) error

	// DeleteByID は指定IDの記事を削除する。コメントはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// List は条件に一致する記事を作成日時の降順で返す。2番目の戻り値は総件数。
	List(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error)
}

// CommentRepository はコメントの永続化インターフェース。
type CommentRepository interface {
	// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Comment, error)

	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// Update は本文を更新する。対象がない場合はErrNotFoundを返す。
	Update(ctx context.Context, comment *model.Comment) error

	// DeleteByID は指定IDのコメントを削除する。
	DeleteByID(ctx context.Context, id string) error

	// ListByPost は記事に付いたコメントを作成日時の昇順で返す。
	ListByPost(ctx context.Context, postID string, params model.ListParams) ([]*model.Comment, int, error)

	// List は全コメントを作成日時の降順で返す。
	List(ctx context.Context, params model.ListParams) ([]*model.Comment, int, error)
}
