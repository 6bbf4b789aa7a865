// Package model はドメインモデルを定義する。
package model

import "time"

// EngagementType はエンゲージメントの種別を表す。
type EngagementType string

const (
	// EngagementLiked はリアクション（いいね）を表す。
	EngagementLiked EngagementType = "liked"
	// EngagementCommented はコメントを表す。
	EngagementCommented EngagementType = "commented"
)

// IsValid はエンゲージメント種別が定義済みの値かを返す。
func (t EngagementType) IsValid() bool {
	return t == EngagementLiked || t == EngagementCommented
}

// Engagement はあるメンバーによる1投稿への1リアクションを表す。
// (PostID, MemberID, Type) の組が一意であり、これが冪等性のキーとなる。
// IDはストレージ上の代理キーにすぎない。
type Engagement struct {
	ID        string
	PostID    string
	MemberID  string
	Type      EngagementType
	CreatedAt time.Time
}

// EngagementEntry はエンゲージメント一覧内の1メンバーを表す。
type EngagementEntry struct {
	MemberID   string
	MemberName string
}

// EngagementSummary は1投稿に対するエンゲージメントの集計結果。
// TotalEngagedはlikedとcommentedに現れるメンバーIDの和集合の要素数であり、
// 両方に現れるメンバーは1人として数える。
type EngagementSummary struct {
	Liked        []EngagementEntry
	Commented    []EngagementEntry
	TotalEngaged int
}
