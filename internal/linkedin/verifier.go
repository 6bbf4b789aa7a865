// Package linkedin はLinkedIn投稿URLの形式検証と実在確認を提供する。
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
)

// 受理するLinkedIn投稿URLの形式。
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https://(www\.)?linkedin\.com/posts/[^/\s]+`),
	regexp.MustCompile(`^https://(www\.)?linkedin\.com/feed/update/urn:li:(activity|share):\d+`),
	regexp.MustCompile(`^https://(www\.)?linkedin\.com/pulse/[^/\s]+`),
}

// IsValidPostURL はURLがLinkedIn投稿URLの形式に一致するかを返す。
func IsValidPostURL(rawURL string) bool {
	for _, p := range urlPatterns {
		if p.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// defaultActorEndpoint はApifyのLinkedInスクレイパーActorの同期実行エンドポイント。
const defaultActorEndpoint = "https://api.apify.com/v2/acts/curious_coder~linkedin-post-search-scraper/run-sync-get-dataset-items"

// Result は実在確認の結果を表す。
type Result struct {
	// Verified は投稿の実在が確認できたかどうか。
	Verified bool
	// Degraded は外部サービスの障害等により確認をスキップしたかどうか。
	// trueの場合、Verifiedは形式検証のみの結果である。
	Degraded bool
	// Warning はDegradedの場合に呼び出し側へ伝える警告メッセージ。
	Warning string
}

// Metrics は実在確認の縮退発生の記録先を表す。
type Metrics interface {
	RecordVerificationDegraded()
}

// Verifier はLinkedIn投稿の実在確認を行う。
// トークン未設定時は形式検証のみに縮退し、外部APIの障害時は
// フェイルオープン（確認スキップ＋警告）で投稿の受理を妨げない。
type Verifier struct {
	httpClient *http.Client
	token      string
	logger     *slog.Logger
	metrics    Metrics
	endpoint   string
}

// NewVerifier はVerifierの新しいインスタンスを生成する。
// tokenが空の場合、Verifyは常に縮退結果を返す。metricsはnil可。
func NewVerifier(httpClient *http.Client, token string, logger *slog.Logger, metrics Metrics) *Verifier {
	return &Verifier{
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		metrics:    metrics,
		endpoint:   defaultActorEndpoint,
	}
}

// degraded は縮退結果を構築し、メトリクスに記録する。
func (v *Verifier) degraded(warning string) Result {
	if v.metrics != nil {
		v.metrics.RecordVerificationDegraded()
	}
	return Result{
		Verified: true,
		Degraded: true,
		Warning:  warning,
	}
}

type actorInput struct {
	URLs  []string `json:"urls"`
	Limit int      `json:"limit"`
}

// Verify は投稿URLの実在をApify経由で確認する。
// 戻り値のerrorは検証「不合格」のみを表し、外部サービスの障害はResult.Degradedで表現する。
func (v *Verifier) Verify(ctx context.Context, postURL string) (Result, error) {
	if v.token == "" {
		return v.degraded("投稿の実在確認は無効化されています（形式検証のみ）"), nil
	}

	payload, err := json.Marshal(actorInput{URLs: []string{postURL}, Limit: 1})
	if err != nil {
		return Result{}, fmt.Errorf("検証リクエストの構築に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn("投稿実在確認の呼び出しに失敗しました。確認をスキップします",
			slog.String("url", postURL),
			slog.String("error", err.Error()),
		)
		return v.degraded("投稿の実在確認に失敗したため、確認をスキップしました"), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.logger.Warn("投稿実在確認が異常応答を返しました。確認をスキップします",
			slog.String("url", postURL),
			slog.Int("status", resp.StatusCode),
		)
		return v.degraded("投稿の実在確認に失敗したため、確認をスキップしました"), nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		v.logger.Warn("投稿実在確認のレスポンスをパースできませんでした。確認をスキップします",
			slog.String("url", postURL),
			slog.String("error", err.Error()),
		)
		return v.degraded("投稿の実在確認に失敗したため、確認をスキップしました"), nil
	}

	// 正常応答でデータセットが空の場合のみ、投稿が見つからなかったと判定する
	if len(items) == 0 {
		return Result{}, fmt.Errorf("投稿が見つかりませんでした")
	}

	return Result{Verified: true}, nil
}
