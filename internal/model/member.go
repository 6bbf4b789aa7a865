// Package model はドメインモデルを定義する。
package model

import "time"

// Member はポッドに参加しているメンバーを表す。
// Emailは登録時に小文字へ正規化され、大文字小文字を区別せず一意となる。
type Member struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	IsActive  bool
}

// MemberUpdate はメンバー更新時の部分更新フィールドを表す。
// nilのフィールドは変更しない。
type MemberUpdate struct {
	Name     *string
	Email    *string
	IsActive *bool
}
