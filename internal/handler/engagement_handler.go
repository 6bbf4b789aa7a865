package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/engagepod/internal/model"
)

// EngagementServiceInterface はエンゲージメントハンドラーが必要とするサービスインターフェース。
type EngagementServiceInterface interface {
	// Record はエンゲージメントを記録する。
	Record(ctx context.Context, postID, memberID string, engagementType model.EngagementType) (*model.Engagement, error)
	// Remove は記録済みのエンゲージメントを取り消す。
	Remove(ctx context.Context, postID, memberID string, engagementType model.EngagementType) error
}

// EngagementHandler はエンゲージメントのHTTPハンドラー。
type EngagementHandler struct {
	service EngagementServiceInterface
}

// NewEngagementHandler はEngagementHandlerを生成する。
func NewEngagementHandler(service EngagementServiceInterface) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// engagementRequest は記録・取り消し共通のリクエストボディ。
type engagementRequest struct {
	PostID         string `json:"post_id"`
	MemberID       string `json:"member_id"`
	EngagementType string `json:"engagement_type"`
}

// engagementResponse はエンゲージメントのAPIレスポンス。
type engagementResponse struct {
	ID             string `json:"id"`
	PostID         string `json:"post_id"`
	MemberID       string `json:"member_id"`
	EngagementType string `json:"engagement_type"`
}

// validate は必須フィールドの存在を確認する。
func (req *engagementRequest) validate() *model.APIError {
	if req.PostID == "" || req.MemberID == "" || req.EngagementType == "" {
		return &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "post_id、member_id、engagement_typeは必須です。",
			Category: "validation",
			Action:   "必須フィールドをすべて指定してください。",
		}
	}
	return nil
}

// Record はエンゲージメントの記録を処理する。
// POST /api/engagements
func (h *EngagementHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}
	if apiErr := req.validate(); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	engagement, err := h.service.Record(r.Context(), req.PostID, req.MemberID, model.EngagementType(req.EngagementType))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, engagementResponse{
		ID:             engagement.ID,
		PostID:         engagement.PostID,
		MemberID:       engagement.MemberID,
		EngagementType: string(engagement.Type),
	})
}

// Remove はエンゲージメントの取り消しを処理する。
// DELETE /api/engagements
func (h *EngagementHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}
	if apiErr := req.validate(); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.service.Remove(r.Context(), req.PostID, req.MemberID, model.EngagementType(req.EngagementType)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
