package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/engagepod/internal/model"
)

// emailPattern はメールアドレスの簡易形式チェック。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MemberServiceInterface はメンバーハンドラーが必要とするサービスインターフェース。
type MemberServiceInterface interface {
	// Register はメンバーを登録する。
	Register(ctx context.Context, name, email string) (*model.Member, error)
	// List はアクティブなメンバー一覧を返す。
	List(ctx context.Context) ([]*model.Member, error)
	// FindByEmail はメールアドレスでアクティブなメンバーを検索する。
	FindByEmail(ctx context.Context, email string) (*model.Member, error)
	// Update はメンバーの指定フィールドを更新する。
	Update(ctx context.Context, id string, update model.MemberUpdate) (*model.Member, error)
	// Delete はメンバーを削除する。
	Delete(ctx context.Context, id string) error
}

// MemberHandler はメンバー管理のHTTPハンドラー。
type MemberHandler struct {
	service MemberServiceInterface
}

// NewMemberHandler はMemberHandlerを生成する。
func NewMemberHandler(service MemberServiceInterface) *MemberHandler {
	return &MemberHandler{service: service}
}

// registerMemberRequest はメンバー登録リクエストのボディ。
type registerMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// updateMemberRequest はメンバー更新リクエストのボディ。nilのフィールドは変更しない。
type updateMemberRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

// memberResponse はメンバー情報のAPIレスポンス。
type memberResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// Register はメンバー登録を処理する。
// POST /api/members
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	if len(strings.TrimSpace(req.Name)) < 2 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidNameError())
		return
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidEmailError())
		return
	}

	member, err := h.service.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberResponse(member))
}

// List はアクティブメンバー一覧を返す。
// GET /api/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]memberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, toMemberResponse(m))
	}

	writeJSON(w, http.StatusOK, responses)
}

// FindByEmail はメールアドレスでメンバーを検索する。
// GET /api/members/{key} のkeyをメールアドレスとして解釈する。
func (h *MemberHandler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "key")

	member, err := h.service.FindByEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

// Update はメンバー情報を更新する。管理者専用。
// PUT /api/members/{key} のkeyをメンバーIDとして解釈する。
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "key")

	var req updateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	if req.Name != nil && len(strings.TrimSpace(*req.Name)) < 2 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidNameError())
		return
	}
	if req.Email != nil && !emailPattern.MatchString(strings.TrimSpace(*req.Email)) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidEmailError())
		return
	}

	member, err := h.service.Update(r.Context(), id, model.MemberUpdate{
		Name:     req.Name,
		Email:    req.Email,
		IsActive: req.IsActive,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

// Delete はメンバーを削除する。管理者専用。
// DELETE /api/members/{key} のkeyをメンバーIDとして解釈する。
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "key")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toMemberResponse はmodel.MemberからAPIレスポンスに変換する。
func toMemberResponse(member *model.Member) memberResponse {
	return memberResponse{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		CreatedAt: member.CreatedAt,
		IsActive:  member.IsActive,
	}
}
