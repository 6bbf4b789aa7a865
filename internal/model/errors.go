// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, member, post, engagement, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidURL          = "INVALID_URL"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeInvalidName         = "INVALID_NAME"
	ErrCodeInvalidEngagement   = "INVALID_ENGAGEMENT_TYPE"
	ErrCodeSelfEngagement      = "SELF_ENGAGEMENT"
	ErrCodeMemberNotFound      = "MEMBER_NOT_FOUND"
	ErrCodePostNotFound        = "POST_NOT_FOUND"
	ErrCodeEngagementNotFound  = "ENGAGEMENT_NOT_FOUND"
	ErrCodeNoActiveMembers     = "NO_ACTIVE_MEMBERS"
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeDuplicateEngagement = "DUPLICATE_ENGAGEMENT"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeAdminNotConfigured  = "ADMIN_NOT_CONFIGURED"
	ErrCodePostNotVerified     = "POST_NOT_VERIFIED"
)

// NewInvalidURLError は無効なLinkedIn URLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なLinkedIn URLです: %s", reason),
		Category: "validation",
		Action:   "LinkedInの投稿・記事のURLを入力してください。",
	}
}

// NewInvalidEmailError は無効なメールアドレスエラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "正しい形式のメールアドレスを入力してください。",
	}
}

// NewInvalidNameError は無効な名前エラーを生成する。
func NewInvalidNameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidName,
		Message:  "名前は2文字以上で入力してください。",
		Category: "validation",
		Action:   "表示名を2文字以上で入力してください。",
	}
}

// NewInvalidEngagementTypeError は無効なエンゲージメント種別エラーを生成する。
func NewInvalidEngagementTypeError(got string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEngagement,
		Message:  fmt.Sprintf("無効なエンゲージメント種別です: %s", got),
		Category: "validation",
		Action:   "engagement_typeには liked または commented を指定してください。",
	}
}

// NewSelfEngagementError は自分の投稿へのエンゲージメントエラーを生成する。
func NewSelfEngagementError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfEngagement,
		Message:  "自分の投稿にはエンゲージメントを記録できません。",
		Category: "validation",
		Action:   "他のメンバーの投稿に対してのみ記録できます。",
	}
}

// NewMemberNotFoundError はメンバー未検出エラーを生成する。
func NewMemberNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeMemberNotFound,
		Message:  "メンバーが見つかりません。",
		Category: "member",
		Action:   "先にメンバー登録を行ってください。",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  "投稿が見つかりません。",
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewEngagementNotFoundError はエンゲージメント未検出エラーを生成する。
func NewEngagementNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeEngagementNotFound,
		Message:  "エンゲージメントが記録されていません。",
		Category: "engagement",
		Action:   "記録済みのエンゲージメントのみ取り消せます。",
	}
}

// NewNoActiveMembersError は送信対象メンバー不在エラーを生成する。
func NewNoActiveMembersError() *APIError {
	return &APIError{
		Code:     ErrCodeNoActiveMembers,
		Message:  "アクティブなメンバーが存在しません。",
		Category: "member",
		Action:   "メンバーを登録してから再度お試しください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "member",
		Action:   "別のメールアドレスを使用するか、登録済みのアカウントを利用してください。",
	}
}

// NewDuplicateEngagementError はエンゲージメント重複エラーを生成する。
func NewDuplicateEngagementError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEngagement,
		Message:  "このエンゲージメントは既に記録されています。",
		Category: "engagement",
		Action:   "取り消す場合は削除操作を行ってください。",
	}
}

// NewUnauthorizedError は管理者認証失敗エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "管理者パスワードが正しくありません。",
		Category: "auth",
		Action:   "正しい管理者パスワードを指定してください。",
	}
}

// NewRateLimitedError は失敗上限によるロックアウトエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "認証失敗が続いたため一時的にロックされています。",
		Category: "auth",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewAdminNotConfiguredError は管理者パスワード未設定エラーを生成する。
// 認証失敗ではなくサーバー設定エラーとして扱う（フェイルクローズ）。
func NewAdminNotConfiguredError() *APIError {
	return &APIError{
		Code:     ErrCodeAdminNotConfigured,
		Message:  "管理者認証が設定されていません。",
		Category: "system",
		Action:   "サーバーの管理者パスワード設定を確認してください。",
	}
}

// NewPostNotVerifiedError はLinkedIn投稿の実在確認失敗エラーを生成する。
func NewPostNotVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodePostNotVerified,
		Message:  "LinkedIn投稿が見つからないかアクセスできません。",
		Category: "post",
		Action:   "投稿が公開されているか、URLが正しいか確認してください。",
	}
}
