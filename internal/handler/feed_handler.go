package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/engagepod/internal/feed"
	"github.com/hitoshi/engagepod/internal/model"
)

// フィードのクエリパラメータのデフォルト値と上限。
const (
	defaultFeedDays  = 7
	maxFeedDays      = 90
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	// Assemble は直近days日間の投稿をエンゲージメント集計付きで返す。
	Assemble(ctx context.Context, days, limit int) (*feed.Feed, error)
}

// FeedHandler はフィードのHTTPハンドラー。
type FeedHandler struct {
	service FeedServiceInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface) *FeedHandler {
	return &FeedHandler{service: service}
}

// engagementEntryResponse はエンゲージメント一覧内の1メンバーのレスポンス。
type engagementEntryResponse struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
}

// feedEngagementsResponse は投稿ごとのエンゲージメント集計のレスポンス。
type feedEngagementsResponse struct {
	Liked        []engagementEntryResponse `json:"liked"`
	Commented    []engagementEntryResponse `json:"commented"`
	TotalEngaged int                       `json:"total_engaged"`
}

// feedPostResponse はフィード内の1投稿のレスポンス。
type feedPostResponse struct {
	ID          string                  `json:"id"`
	MemberID    string                  `json:"member_id"`
	MemberName  string                  `json:"member_name"`
	LinkedInURL string                  `json:"linkedin_url"`
	Note        string                  `json:"note,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	Engagements feedEngagementsResponse `json:"engagements"`
}

// feedResponse はフィードのAPIレスポンス。
type feedResponse struct {
	Posts         []feedPostResponse `json:"posts"`
	ActiveMembers int                `json:"active_members"`
	Days          int                `json:"days"`
}

// Get はフィードの取得を処理する。
// GET /api/feed?days=7&limit=20
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	days, ok := parseBoundedQueryInt(r, "days", defaultFeedDays, maxFeedDays)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidQueryError("days"))
		return
	}
	limit, ok := parseBoundedQueryInt(r, "limit", defaultFeedLimit, maxFeedLimit)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidQueryError("limit"))
		return
	}

	result, err := h.service.Assemble(r.Context(), days, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedResponse(result, days))
}

// parseBoundedQueryInt はクエリパラメータを正の整数として解釈する。
// 未指定の場合はデフォルト値を、上限超過の場合は上限値を返す。
// 数値として解釈できない、または0以下の場合はok=falseを返す。
func parseBoundedQueryInt(r *http.Request, name string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	if v > max {
		return max, true
	}
	return v, true
}

// invalidQueryError は不正なクエリパラメータのエラーを生成する。
func invalidQueryError(name string) *model.APIError {
	return &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  name + "は正の整数で指定してください。",
		Category: "validation",
		Action:   "クエリパラメータの値を確認してください。",
	}
}

// toFeedResponse はfeed.FeedからAPIレスポンスに変換する。
func toFeedResponse(f *feed.Feed, days int) feedResponse {
	posts := make([]feedPostResponse, 0, len(f.Posts))
	for _, p := range f.Posts {
		posts = append(posts, feedPostResponse{
			ID:          p.ID,
			MemberID:    p.MemberID,
			MemberName:  p.MemberName,
			LinkedInURL: p.LinkedInURL,
			Note:        p.Note,
			CreatedAt:   p.CreatedAt,
			Engagements: toEngagementsResponse(p.Engagements),
		})
	}
	return feedResponse{
		Posts:         posts,
		ActiveMembers: f.ActiveMembers,
		Days:          days,
	}
}

// toEngagementsResponse はエンゲージメント集計をAPIレスポンスに変換する。
func toEngagementsResponse(s model.EngagementSummary) feedEngagementsResponse {
	liked := make([]engagementEntryResponse, 0, len(s.Liked))
	for _, e := range s.Liked {
		liked = append(liked, engagementEntryResponse{MemberID: e.MemberID, MemberName: e.MemberName})
	}
	commented := make([]engagementEntryResponse, 0, len(s.Commented))
	for _, e := range s.Commented {
		commented = append(commented, engagementEntryResponse{MemberID: e.MemberID, MemberName: e.MemberName})
	}
	return feedEngagementsResponse{
		Liked:        liked,
		Commented:    commented,
		TotalEngaged: s.TotalEngaged,
	}
}
