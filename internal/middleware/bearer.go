// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/blogapi/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証主体を格納するためのキー。
var userContextKey = contextKey("user")

const bearerScheme = "bearer"

// PrincipalResolver はトークンから認証主体を解決するインターフェース。
// auth.Resolverが満たす。
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

// NewBearerMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 解決した認証主体をリクエストコンテキストに注入するミドルウェアを返す。
// ヘッダーがない場合、トークンが無効な場合、ユーザーが削除済みの場合は401を返す。
func NewBearerMiddleware(resolver PrincipalResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからトークンを取り出す
			header := r.Header.Get("Authorization")
			if header == "" {
				writeUnauthorized(w, model.NewAuthenticationRequiredError())
				return
			}
			token, ok := parseBearer(header)
			if !ok {
				writeUnauthorized(w, model.NewInvalidTokenError())
				return
			}

			// 2. トークンを検証し、認証主体を現在のストアから解決する
			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				switch model.CategoryOf(err) {
				case model.CategoryInvalidToken, model.CategoryResourceNotFound, model.CategoryUnauthorized:
					writeUnauthorized(w, asAPIError(err))
				default:
					slog.Error("failed to resolve principal",
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
				}
				return
			}

			// 3. 認証主体をコンテキストに注入
			setRequestUser(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// parseBearer は"Bearer <token>"形式のヘッダー値からトークンを取り出す。
// スキーム名の大文字小文字は区別しない。
func parseBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func writeUnauthorized(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="blogapi"`)
	WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
}

// UserFromContext はリクエストコンテキストから認証主体を取得する。
// Bearerミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// ContextWithUser はコンテキストに認証主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
