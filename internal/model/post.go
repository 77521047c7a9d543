// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザーが投稿したブログ記事を表す。
// OwnerIDは作成後に変更されない。
type Post struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment は記事に付けられたコメントを表す。
// 親記事の削除時の扱いは永続化層のCASCADEに委ねる。
type Comment struct {
	ID        string
	PostID    string
	OwnerID   string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// 入力値の上限
const (
	MaxPostTitleLength   = 50
	MaxPostContentLength = 500
	MaxCommentLength     = 500
)

// ListParams は一覧取得のページネーション条件。
type ListParams struct {
	Limit  int
	Offset int
}

const (
	// DefaultPageSize はLimit未指定時の件数。
	DefaultPageSize = 20
	// MaxPageSize はLimitの上限。
	MaxPageSize = 100
)

// Normalize はLimitとOffsetを許容範囲に丸めたListParamsを返す。
func (p ListParams) Normalize() ListParams {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PostFilter は記事一覧の検索条件を表す。
// Title、Contentは大文字小文字を区別しない部分一致。
type PostFilter struct {
	Title   string
	Content string
	OwnerID string
	ListParams
}
