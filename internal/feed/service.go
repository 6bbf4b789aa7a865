// Package feed はフィードの組み立てを提供する。
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/engagepod/internal/model"
	"github.com/hitoshi/engagepod/internal/repository"
)

// Summarizer は投稿群のエンゲージメント集計インターフェース。
type Summarizer interface {
	Summarize(ctx context.Context, postIDs []string) (map[string]*model.EngagementSummary, error)
}

// Post はフィード内の1投稿を表す。
type Post struct {
	ID          string
	MemberID    string
	MemberName  string
	LinkedInURL string
	Note        string
	CreatedAt   time.Time
	Engagements model.EngagementSummary
}

// Feed はフィードの組み立て結果を表す。
type Feed struct {
	Posts         []Post
	ActiveMembers int
}

// Service はフィードを組み立てる。読み取り専用で副作用を持たない。
type Service struct {
	postRepo   repository.PostRepository
	memberRepo repository.MemberRepository
	summarizer Summarizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(postRepo repository.PostRepository, memberRepo repository.MemberRepository, summarizer Summarizer) *Service {
	return &Service{
		postRepo:   postRepo,
		memberRepo: memberRepo,
		summarizer: summarizer,
	}
}

// Assemble は直近days日間の投稿を作成日時降順で最大limit件、
// エンゲージメント集計とアクティブメンバー数を付けて返す。
// 投稿が1件もない場合も空のフィードとメンバー数を返す。
func (s *Service) Assemble(ctx context.Context, days, limit int) (*Feed, error) {
	since := time.Now().AddDate(0, 0, -days)

	posts, err := s.postRepo.ListSinceWithMember(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}

	activeMembers, err := s.memberRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("メンバー数の取得に失敗しました: %w", err)
	}

	feed := &Feed{
		Posts:         make([]Post, 0, len(posts)),
		ActiveMembers: activeMembers,
	}

	if len(posts) == 0 {
		return feed, nil
	}

	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	summaries, err := s.summarizer.Summarize(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("エンゲージメント集計に失敗しました: %w", err)
	}

	for _, p := range posts {
		item := Post{
			ID:          p.ID,
			MemberID:    p.MemberID,
			MemberName:  p.MemberName,
			LinkedInURL: p.LinkedInURL,
			Note:        p.Note,
			CreatedAt:   p.CreatedAt,
			Engagements: model.EngagementSummary{
				Liked:     []model.EngagementEntry{},
				Commented: []model.EngagementEntry{},
			},
		}
		if summary, ok := summaries[p.ID]; ok {
			item.Engagements = *summary
		}
		feed.Posts = append(feed.Posts, item)
	}

	return feed, nil
}
