package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/engagepod/internal/model"
	"github.com/hitoshi/engagepod/internal/post"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// Submit は投稿を受け付け、他メンバーへ通知を配信する。
	Submit(ctx context.Context, memberEmail, linkedinURL, note string) (*post.SubmitResult, error)
	// ListRecent は投稿を投稿者情報付きで新しい順に返す。
	ListRecent(ctx context.Context) ([]model.PostWithMember, error)
}

// PostHandler は投稿のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// submitPostRequest は投稿リクエストのボディ。
type submitPostRequest struct {
	MemberEmail string `json:"member_email"`
	LinkedInURL string `json:"linkedin_url"`
	Note        string `json:"note"`
}

// postResponse は投稿情報のAPIレスポンス。
type postResponse struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"member_id"`
	MemberName  string    `json:"member_name,omitempty"`
	LinkedInURL string    `json:"linkedin_url"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// submitPostResponse は投稿受付のAPIレスポンス。
type submitPostResponse struct {
	Post          postResponse       `json:"post"`
	Notifications post.Notifications `json:"notifications"`
	Warning       string             `json:"warning,omitempty"`
}

// Submit は投稿の受付を処理する。
// POST /api/posts
func (h *PostHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	if !emailPattern.MatchString(strings.TrimSpace(req.MemberEmail)) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidEmailError())
		return
	}
	if strings.TrimSpace(req.LinkedInURL) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidURLError("URLが空です"))
		return
	}

	result, err := h.service.Submit(r.Context(), req.MemberEmail, req.LinkedInURL, req.Note)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitPostResponse{
		Post: postResponse{
			ID:          result.Post.ID,
			MemberID:    result.Post.MemberID,
			MemberName:  result.MemberName,
			LinkedInURL: result.Post.LinkedInURL,
			Note:        result.Post.Note,
			CreatedAt:   result.Post.CreatedAt,
		},
		Notifications: result.Notifications,
		Warning:       result.ValidationWarning,
	})
}

// ListRecent は投稿一覧を返す。管理者専用のデバッグビュー。
// GET /api/posts
func (h *PostHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListRecent(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, postResponse{
			ID:          p.ID,
			MemberID:    p.MemberID,
			MemberName:  p.MemberName,
			LinkedInURL: p.LinkedInURL,
			Note:        p.Note,
			CreatedAt:   p.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, responses)
}
