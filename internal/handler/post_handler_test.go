package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/blogapi/internal/middleware"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/post"
)

// --- モック定義 ---

type mockPostService struct {
	createFn func(ctx context.Context, caller *model.User, in post.Input) (*model.Post, error)
	getFn    func(ctx context.Context, id string) (*model.Post, error)
	listFn   func(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error)
	updateFn func(ctx context.Context, caller *model.User, id string, in post.Input) (*model.Post, error)
	deleteFn func(ctx context.Context, caller *model.User, id string) error
}

func (m *mockPostService) Create(ctx context.Context, caller *model.User, in post.Input) (*model.Post, error) {
	return m.createFn(ctx, caller, in)
}

func (m *mockPostService) Get(ctx context.Context, id string) (*model.Post, error) {
	return m.getFn(ctx, id)
}

func (m *mockPostService) List(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error) {
	return m.listFn(ctx, filter)
}

func (m *mockPostService) Update(ctx context.Context, caller *model.User, id string, in post.Input) (*model.Post, error) {
	return m.updateFn(ctx, caller, id, in)
}

func (m *mockPostService) Delete(ctx context.Context, caller *model.User, id string) error {
	return m.deleteFn(ctx, caller, id)
}

var _ PostServiceInterface = (*mockPostService)(nil)
var _ PostServiceInterface = (*post.Service)(nil)

// --- テスト ---

func TestPostHandler_List_ParsesFilter(t *testing.T) {
	var got model.PostFilter
	svc := &mockPostService{
		listFn: func(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error) {
			got = filter
			return []*model.Post{{ID: "p1", OwnerID: "u1", Title: "Go"}}, 1, nil
		},
	}

	w := httptest.NewRecorder()
	NewPostHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/api/posts?title=Go&content=chi&owner_id=u1&limit=5", nil))

	assertStatus(t, w, http.StatusOK)
	if got.Title != "Go" || got.Content != "chi" || got.OwnerID != "u1" || got.Limit != 5 {
		t.Errorf("filter = %+v", got)
	}
	body := decodeBody[listResponse[postResponse]](t, w)
	if len(body.Items) != 1 || body.Items[0].OwnerID != "u1" || body.Total != 1 {
		t.Errorf("body = %+v", body)
	}
}

// 一覧が空でもitemsはnullではなく空配列で返す。
func TestPostHandler_List_EmptyItemsIsArray(t *testing.T) {
	svc := &mockPostService{
		listFn: func(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error) {
			return nil, 0, nil
		},
	}

	w := httptest.NewRecorder()
	NewPostHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	assertStatus(t, w, http.StatusOK)
	body := decodeBody[map[string]any](t, w)
	items, ok := body["items"].([]any)
	if !ok || len(items) != 0 {
		t.Errorf("items = %#v, want empty array", body["items"])
	}
}

func TestPostHandler_Create(t *testing.T) {
	caller := &model.User{ID: "alice", Role: model.RoleUser}
	svc := &mockPostService{
		createFn: func(ctx context.Context, c *model.User, in post.Input) (*model.Post, error) {
			if c != caller {
				t.Errorf("caller = %v", c)
			}
			return &model.Post{ID: "p1", OwnerID: c.ID, Title: in.Title, Content: in.Content}, nil
		},
	}

	req := withUser(newJSONRequest(http.MethodPost, "/api/posts", `{"title":"Hello","content":"<p>body</p>"}`), caller)
	w := httptest.NewRecorder()
	NewPostHandler(svc).Create(w, req)

	assertStatus(t, w, http.StatusCreated)
	if loc := w.Result().Header.Get("Location"); loc != "/api/posts/p1" {
		t.Errorf("Location = %q", loc)
	}
	body := decodeBody[postResponse](t, w)
	if body.OwnerID != "alice" || body.Title != "Hello" {
		t.Errorf("body = %+v", body)
	}
}

func TestPostHandler_Create_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	NewPostHandler(&mockPostService{}).Create(w, newJSONRequest(http.MethodPost, "/api/posts", `{"title":"x","content":"y"}`))

	assertStatus(t, w, http.StatusUnauthorized)
}

func TestPostHandler_Create_ValidationError(t *testing.T) {
	svc := &mockPostService{
		createFn: func(ctx context.Context, c *model.User, in post.Input) (*model.Post, error) {
			return nil, model.NewInvalidInputError("title", "必須項目です")
		},
	}

	req := withUser(newJSONRequest(http.MethodPost, "/api/posts", `{"title":"","content":"y"}`), &model.User{ID: "u1"})
	w := httptest.NewRecorder()
	NewPostHandler(svc).Create(w, req)

	assertStatus(t, w, http.StatusBadRequest)
	if body := decodeBody[middleware.ErrorResponseBody](t, w); body.Field != "title" {
		t.Errorf("field = %q, want title", body.Field)
	}
}

func TestPostHandler_Update_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", model.NewPostNotFoundError("p1"), http.StatusNotFound},
		{"forbidden", model.NewForbiddenError("post", "update"), http.StatusForbidden},
		{"validation", model.NewInvalidInputError("content", "必須項目です"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPostService{
				updateFn: func(ctx context.Context, c *model.User, id string, in post.Input) (*model.Post, error) {
					return nil, tt.err
				},
			}
			req := newJSONRequest(http.MethodPut, "/api/posts/p1", `{"title":"t","content":"c"}`)
			req = withUser(withURLParam(req, "id", "p1"), &model.User{ID: "bob", Role: model.RoleUser})
			w := httptest.NewRecorder()
			NewPostHandler(svc).Update(w, req)

			assertStatus(t, w, tt.wantStatus)
		})
	}
}

func TestPostHandler_Delete(t *testing.T) {
	var gotID string
	svc := &mockPostService{
		deleteFn: func(ctx context.Context, c *model.User, id string) error {
			gotID = id
			return nil
		},
	}

	req := withUser(withURLParam(httptest.NewRequest(http.MethodDelete, "/api/posts/p9", nil), "id", "p9"), &model.User{ID: "m", Role: model.RoleModerator})
	w := httptest.NewRecorder()
	NewPostHandler(svc).Delete(w, req)

	assertStatus(t, w, http.StatusNoContent)
	if gotID != "p9" {
		t.Errorf("id = %q, want p9", gotID)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body should be empty, got %q", w.Body.String())
	}
}
