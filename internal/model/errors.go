// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code      string // エラーコード
	Message   string // エラーメッセージ
	Category  string // カテゴリ: 下記Category*定数のいずれか
	Action    string // ユーザー向け対処方法
	Resource  string // 対象リソース種別（forbidden / not found時）
	Operation string // 拒否された操作（forbidden時）
	Field     string // 競合・不正のあったフィールド名
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ。認証・認可系の5分類とvalidation、system。
const (
	CategoryUnauthorized     = "unauthorized"
	CategoryInvalidToken     = "invalid_token"
	CategoryForbidden        = "forbidden"
	CategoryResourceNotFound = "resource_not_found"
	CategoryBusinessConflict = "business_conflict"
	CategoryValidation       = "validation"
	CategorySystem           = "system"
)

// 定義済みエラーコード
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInvalidToken    = "INVALID_TOKEN"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodePostNotFound    = "POST_NOT_FOUND"
	ErrCodeCommentNotFound = "COMMENT_NOT_FOUND"
	ErrCodeEmailExists     = "EMAIL_ALREADY_EXISTS"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeInvalidRole     = "INVALID_ROLE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// CategoryOf はerrがAPIErrorの場合そのカテゴリを返す。
// APIError以外（DB障害など）はCategorySystemを返す。
func CategoryOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Category
	}
	return CategorySystem
}

// IsCategory はerrが指定カテゴリのAPIErrorかどうかを返す。
func IsCategory(err error, category string) bool {
	return err != nil && CategoryOf(err) == category
}

// NewUnauthorizedError はログイン失敗エラーを生成する。
// メールアドレス不在とパスワード不一致を区別しない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: CategoryUnauthorized,
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewAuthenticationRequiredError は認証情報がないリクエストに対するエラーを生成する。
func NewAuthenticationRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: CategoryUnauthorized,
		Action:   "ログインしてください。",
	}
}

// NewInvalidTokenError は不正・期限切れトークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "トークンが無効か、有効期限が切れています。",
		Category: CategoryInvalidToken,
		Action:   "再度ログインしてください。",
	}
}

// resourceLabels はリソース種別の表示名。
var resourceLabels = map[string]string{
	"user":    "ユーザー",
	"post":    "記事",
	"comment": "コメント",
}

// operationLabels は操作の表示名。
var operationLabels = map[string]string{
	"update":      "編集",
	"delete":      "削除",
	"change_role": "ロール変更",
}

func labelOf(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

// NewForbiddenError は権限不足エラーを生成する。
// 拒否理由の詳細は含めない。
func NewForbiddenError(resource, operation string) *APIError {
	return &APIError{
		Code:      ErrCodeForbidden,
		Message:   fmt.Sprintf("この%sを%sする権限がありません。", labelOf(resourceLabels, resource), labelOf(operationLabels, operation)),
		Category:  CategoryForbidden,
		Action:    "権限を持つユーザーで操作してください。",
		Resource:  resource,
		Operation: operation,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: CategoryResourceNotFound,
		Action:   "ユーザーIDを確認してください。",
		Resource: "user",
	}
}

// NewPrincipalNotFoundError はトークンの主体となるユーザーが既に存在しない場合のエラーを生成する。
func NewPrincipalNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: CategoryResourceNotFound,
		Action:   "ログインし直してください。",
		Resource: "user",
	}
}

// NewPostNotFoundError は記事が見つからない場合のエラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", postID),
		Category: CategoryResourceNotFound,
		Action:   "記事IDを確認してください。",
		Resource: "post",
	}
}

// NewCommentNotFoundError はコメントが見つからない場合のエラーを生成する。
func NewCommentNotFoundError(commentID string) *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  fmt.Sprintf("指定されたコメントが見つかりません: %s", commentID),
		Category: CategoryResourceNotFound,
		Action:   "コメントIDを確認してください。",
		Resource: "comment",
	}
}

// NewEmailExistsError はメールアドレス重複エラーを生成する。
func NewEmailExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailExists,
		Message:  "このメールアドレスは既に登録されています。",
		Category: CategoryBusinessConflict,
		Action:   "別のメールアドレスを指定してください。",
		Field:    "email",
	}
}

// NewInvalidInputError は入力値の検証エラーを生成する。
func NewInvalidInputError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("入力値が不正です（%s）: %s", field, reason),
		Category: CategoryValidation,
		Action:   "入力内容を確認してください。",
		Field:    field,
	}
}

// NewInvalidRoleError は未知のロール指定エラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効なロールです: %s", role),
		Category: CategoryValidation,
		Action:   "ロールには USER、MODERATOR、ADMIN のいずれかを指定してください。",
		Field:    "role",
	}
}

// NewInternalError は内部エラーの利用者向け表現を生成する。
// 原因の詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: CategorySystem,
		Action:   "しばらく待ってから再度お試しください。",
	}
}
