// Package engagement はエンゲージメントの記録・取り消し・集計を提供する。
package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/engagepod/internal/model"
	"github.com/hitoshi/engagepod/internal/repository"
)

// Service はエンゲージメントのユースケースを実装する。
type Service struct {
	engagementRepo repository.EngagementRepository
	postRepo       repository.PostRepository
	memberRepo     repository.MemberRepository
	logger         *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	engagementRepo repository.EngagementRepository,
	postRepo repository.PostRepository,
	memberRepo repository.MemberRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		engagementRepo: engagementRepo,
		postRepo:       postRepo,
		memberRepo:     memberRepo,
		logger:         logger,
	}
}

// Record はエンゲージメントを記録する。
// (postID, memberID, engagementType) の組が既に存在する場合は重複エラーを返す。
// 自分の投稿への記録は拒否し、非アクティブのメンバーは未検出として扱う。
func (s *Service) Record(ctx context.Context, postID, memberID string, engagementType model.EngagementType) (*model.Engagement, error) {
	if !engagementType.IsValid() {
		return nil, model.NewInvalidEngagementTypeError(string(engagementType))
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError()
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("メンバーの取得に失敗しました: %w", err)
	}
	if member == nil || !member.IsActive {
		return nil, model.NewMemberNotFoundError()
	}

	if post.MemberID == memberID {
		return nil, model.NewSelfEngagementError()
	}

	engagement := &model.Engagement{
		ID:        uuid.New().String(),
		PostID:    postID,
		MemberID:  memberID,
		Type:      engagementType,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.engagementRepo.Create(ctx, engagement); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateEngagementError()
		}
		return nil, fmt.Errorf("エンゲージメントの記録に失敗しました: %w", err)
	}

	s.logger.Info("エンゲージメントを記録しました",
		slog.String("post_id", postID),
		slog.String("member_id", memberID),
		slog.String("type", string(engagementType)),
	)

	return engagement, nil
}

// Remove は記録済みのエンゲージメントを取り消す。
// 組が存在しない場合は未検出エラーを返す（投稿・メンバーの存在は個別に確認しない）。
func (s *Service) Remove(ctx context.Context, postID, memberID string, engagementType model.EngagementType) error {
	if !engagementType.IsValid() {
		return model.NewInvalidEngagementTypeError(string(engagementType))
	}

	if err := s.engagementRepo.Delete(ctx, postID, memberID, engagementType); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewEngagementNotFoundError()
		}
		return fmt.Errorf("エンゲージメントの取り消しに失敗しました: %w", err)
	}

	s.logger.Info("エンゲージメントを取り消しました",
		slog.String("post_id", postID),
		slog.String("member_id", memberID),
		slog.String("type", string(engagementType)),
	)

	return nil
}

// Summarize は指定された投稿群のエンゲージメントを投稿ごとに集計する。
// TotalEngagedはlikedとcommentedの両方に現れるメンバーを1人として数える。
// エンゲージメントのない投稿はマップに含まれない。
func (s *Service) Summarize(ctx context.Context, postIDs []string) (map[string]*model.EngagementSummary, error) {
	if len(postIDs) == 0 {
		return map[string]*model.EngagementSummary{}, nil
	}

	rows, err := s.engagementRepo.ListByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("エンゲージメント一覧の取得に失敗しました: %w", err)
	}

	summaries := make(map[string]*model.EngagementSummary)
	engaged := make(map[string]map[string]struct{})

	for _, row := range rows {
		summary, ok := summaries[row.PostID]
		if !ok {
			summary = &model.EngagementSummary{
				Liked:     []model.EngagementEntry{},
				Commented: []model.EngagementEntry{},
			}
			summaries[row.PostID] = summary
			engaged[row.PostID] = make(map[string]struct{})
		}

		entry := model.EngagementEntry{MemberID: row.MemberID, MemberName: row.MemberName}
		switch row.Type {
		case model.EngagementLiked:
			summary.Liked = append(summary.Liked, entry)
		case model.EngagementCommented:
			summary.Commented = append(summary.Commented, entry)
		}
		engaged[row.PostID][row.MemberID] = struct{}{}
	}

	for postID, members := range engaged {
		summaries[postID].TotalEngaged = len(members)
	}

	return summaries, nil
}
