package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogapi/internal/comment"
	"github.com/hitoshi/blogapi/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	Create(ctx context.Context, caller *model.User, postID string, in comment.Input) (*model.Comment, error)
	Get(ctx context.Context, id string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string, params model.ListParams) ([]*model.Comment, int, error)
	List(ctx context.Context, params model.ListParams) ([]*model.Comment, int, error)
	Update(ctx context.Context, caller *model.User, id string, in comment.Input) (*model.Comment, error)
	Delete(ctx context.Context, caller *model.User, id string) error
}

// CommentHandler はコメントのHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// commentRequest はコメントの作成・更新リクエストのボディ。
type commentRequest struct {
	Body string `json:"body"`
}

// ListByPost は記事に付いたコメントを古い順に返す。
// GET /api/posts/{id}/comments
func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	comments, total, err := h.service.ListByPost(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(comments, toCommentResponse, total, params))
}

// List は全コメントを新しい順に返す。
// GET /api/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	comments, total, err := h.service.List(r.Context(), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(comments, toCommentResponse, total, params))
}

// Get はコメントを返す。
// GET /api/comments/{id}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

// Create は記事にコメントを追加する。
// POST /api/posts/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), caller, chi.URLParam(r, "id"), comment.Input{Body: req.Body})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/comments/"+c.ID)
	writeJSON(w, http.StatusCreated, toCommentResponse(c))
}

// Update はコメントを更新する。
// PUT /api/comments/{id}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.Update(r.Context(), caller, chi.URLParam(r, "id"), comment.Input{Body: req.Body})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

// Delete はコメントを削除する。
// DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
