// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/engagepod/internal/model"
)

// ErrDuplicate は一意制約違反（メール重複、エンゲージメント重複）を表す。
// サービス層で適切なAPIErrorにマッピングする。
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound は削除・更新対象のレコードが存在しないことを表す。
var ErrNotFound = errors.New("record not found")

// MemberRepository はメンバーデータの永続化インターフェース。
type MemberRepository interface {
	// Create はメンバーを作成する。メール重複時はErrDuplicateを返す。
	Create(ctx context.Context, member *model.Member) error

	// FindByID は指定IDのメンバーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Member, error)

	// FindByEmail はメールアドレス（小文字比較）でメンバーを検索する。
	// 非アクティブのメンバーも返す。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Member, error)

	// ListActive はアクティブなメンバー一覧を登録日時降順で返す。
	ListActive(ctx context.Context) ([]*model.Member, error)

	// CountActive はアクティブなメンバー数を返す。
	CountActive(ctx context.Context) (int, error)

	// Update はメンバーの全フィールドを上書き更新する。
	// 対象が存在しない場合はErrNotFound、メール重複時はErrDuplicateを返す。
	Update(ctx context.Context, member *model.Member) error

	// DeleteByID は指定IDのメンバーを削除する。
	// 所有する投稿とエンゲージメントはCASCADE削除される。
	// 対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// ListRecentWithMember は投稿を投稿者情報付きで作成日時降順に返す。
	// 管理者向けデバッグビュー用。
	ListRecentWithMember(ctx context.Context, limit int) ([]model.PostWithMember, error)

	// ListSinceWithMember はsince以降に作成された投稿を投稿者情報付きで
	// 作成日時降順、最大limit件返す。フィード組み立て用。
	ListSinceWithMember(ctx context.Context, since time.Time, limit int) ([]model.PostWithMember, error)
}

// EngagementWithMember はエンゲージメントとメンバー名を結合した読み取りモデル。
// engagementsテーブルとmembersテーブルをJOINして取得される。
type EngagementWithMember struct {
	PostID     string
	MemberID   string
	MemberName string
	Type       model.EngagementType
}

// EngagementRepository はエンゲージメントデータの永続化インターフェース。
type EngagementRepository interface {
	// Create はエンゲージメントを作成する。
	// (post_id, member_id, engagement_type) が既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, engagement *model.Engagement) error

	// Delete は (post_id, member_id, engagement_type) で特定される
	// エンゲージメントを削除する。存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, postID, memberID string, engagementType model.EngagementType) error

	// ListByPostIDs は指定された投稿群の全エンゲージメントをメンバー名付きで返す。
	ListByPostIDs(ctx context.Context, postIDs []string) ([]EngagementWithMember, error)
}
