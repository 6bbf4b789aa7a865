package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/engagepod/internal/mail"
	"github.com/hitoshi/engagepod/internal/model"
)

// MemberLister はアナウンス配信の宛先となるメンバー一覧のインターフェース。
type MemberLister interface {
	List(ctx context.Context) ([]*model.Member, error)
}

// Broadcaster はメンバーへの逐次メール配信インターフェース。
type Broadcaster interface {
	Dispatch(ctx context.Context, recipients []mail.Recipient, msg mail.Message) mail.Report
}

// SurveyHandler は管理者向けアナウンス配信のHTTPハンドラー。
// 全エンドポイントは管理者認証ミドルウェアの背後に配置される。
type SurveyHandler struct {
	members     MemberLister
	broadcaster Broadcaster
	sender      mail.Sender
	adminEmail  string
}

// NewSurveyHandler はSurveyHandlerを生成する。
func NewSurveyHandler(members MemberLister, broadcaster Broadcaster, sender mail.Sender, adminEmail string) *SurveyHandler {
	return &SurveyHandler{
		members:     members,
		broadcaster: broadcaster,
		sender:      sender,
		adminEmail:  adminEmail,
	}
}

// surveyRequest はアナウンス配信リクエストのボディ。
type surveyRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// validate は件名と本文の存在を確認する。
func (req *surveyRequest) validate() *model.APIError {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "" {
		return &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "subjectとmessageは必須です。",
			Category: "validation",
			Action:   "件名と本文を指定してください。",
		}
	}
	return nil
}

// Send は全アクティブメンバーへのアナウンス配信を処理する。
// POST /api/survey/send
func (h *SurveyHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}
	if apiErr := req.validate(); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	members, err := h.members.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if len(members) == 0 {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNoActiveMembersError())
		return
	}

	recipients := make([]mail.Recipient, 0, len(members))
	for _, m := range members {
		recipients = append(recipients, mail.Recipient{Name: m.Name, Email: m.Email})
	}

	report := h.broadcaster.Dispatch(r.Context(), recipients, mail.BroadcastMessage(req.Subject, req.Message))

	writeJSON(w, http.StatusOK, report)
}

// Test は管理者宛のテスト送信を処理する。メンバーには配信しない。
// POST /api/survey/test
func (h *SurveyHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}
	if apiErr := req.validate(); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	if h.adminEmail == "" {
		writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
			Code:     "ADMIN_EMAIL_NOT_CONFIGURED",
			Message:  "テスト送信先の管理者メールアドレスが設定されていません。",
			Category: "system",
			Action:   "サーバーのADMIN_EMAIL設定を確認してください。",
		})
		return
	}

	subject, body := mail.BroadcastMessage(req.Subject, req.Message)(mail.Recipient{Name: "Admin", Email: h.adminEmail})
	messageID, err := h.sender.Send(r.Context(), mail.Address{Email: h.adminEmail}, subject, body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message_id": messageID})
}

// Verify は管理者パスワードの照合結果を返す。
// 照合自体は管理者認証ミドルウェアで行われるため、到達した時点で成功している。
// POST /api/survey/verify
func (h *SurveyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
