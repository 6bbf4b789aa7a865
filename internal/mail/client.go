// Package mail はメール送信機能を提供する。
// Brevoトランザクショナルメール APIのクライアントと、
// レート制限を考慮した逐次ブロードキャストディスパッチャを含む。
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// defaultEndpoint はBrevoトランザクショナルメールAPIのエンドポイント。
const defaultEndpoint = "https://api.brevo.com/v3/smtp/email"

// Address はメールの差出人・宛先を表す。
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Client はBrevo APIのクライアント。
// 1回のSendで1通のテキストメールを送信する。
type Client struct {
	httpClient *http.Client
	apiKey     string
	sender     Address
	logger     *slog.Logger
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
// apiKeyが空の場合、Sendは常にエラーを返す（送信結果としては各宛先の失敗になる）。
func NewClient(httpClient *http.Client, apiKey string, sender Address, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		sender:     sender,
		logger:     logger,
		endpoint:   defaultEndpoint,
	}
}

// sendRequest はBrevo APIへのリクエストボディ。
type sendRequest struct {
	Sender      Address   `json:"sender"`
	To          []Address `json:"to"`
	Subject     string    `json:"subject"`
	TextContent string    `json:"textContent"`
}

// sendResponse はBrevo APIの成功レスポンス。
type sendResponse struct {
	MessageID string `json:"messageId"`
}

// apiErrorResponse はBrevo APIのエラーレスポンス。
type apiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Send は1通のテキストメールを送信し、トランスポートのメッセージIDを返す。
// タイムアウトは注入されたhttpClient側の設定に従う。
func (c *Client) Send(ctx context.Context, to Address, subject, textContent string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("BREVO_API_KEY is not configured")
	}

	payload, err := json.Marshal(sendRequest{
		Sender:      c.sender,
		To:          []Address{to},
		Subject:     subject,
		TextContent: textContent,
	})
	if err != nil {
		return "", fmt.Errorf("メール送信リクエストの構築に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("メールAPIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return "", fmt.Errorf("メールAPIがエラーを返しました: %s (status %d)", apiErr.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("メールAPIがステータス %d を返しました", resp.StatusCode)
	}

	var result sendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return result.MessageID, nil
}
