// Package model はドメインモデルを定義する。
package model

import "time"

// Post はメンバーが投稿したLinkedIn記事の告知を表す。
// メンバー削除時にCASCADEで削除される。
type Post struct {
	ID          string
	MemberID    string
	LinkedInURL string
	Note        string
	CreatedAt   time.Time
}

// PostWithMember は投稿と投稿者情報を結合したモデル。
// postsテーブルとmembersテーブルをJOINして取得される。
type PostWithMember struct {
	Post
	MemberName  string
	MemberEmail string
}
