package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/post"
)

// PostServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	Create(ctx context.Context, caller *model.User, in post.Input) (*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error)
	Update(ctx context.Context, caller *model.User, id string, in post.Input) (*model.Post, error)
	Delete(ctx context.Context, caller *model.User, id string) error
}

// PostHandler は記事のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// postRequest は記事の作成・更新リクエストのボディ。
type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List は記事一覧を新しい順に返す。
// GET /api/posts?title=&content=&owner_id=&limit=&offset=
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.PostFilter{
		Title:      q.Get("title"),
		Content:    q.Get("content"),
		OwnerID:    q.Get("owner_id"),
		ListParams: parseListParams(r),
	}

	posts, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(posts, toPostResponse, total, filter.ListParams))
}

// Get は記事詳細を返す。
// GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// Create は記事を作成する。
// POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), caller, post.Input{Title: req.Title, Content: req.Content})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/posts/"+p.ID)
	writeJSON(w, http.StatusCreated, toPostResponse(p))
}

// Update は記事を更新する。
// PUT /api/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.Update(r.Context(), caller, chi.URLParam(r, "id"), post.Input{Title: req.Title, Content: req.Content})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// Delete は記事を削除する。
// DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
