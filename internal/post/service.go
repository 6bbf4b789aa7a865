// Package post は投稿の受付とメンバーへの通知を提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/engagepod/internal/linkedin"
	"github.com/hitoshi/engagepod/internal/mail"
	"github.com/hitoshi/engagepod/internal/model"
	"github.com/hitoshi/engagepod/internal/repository"
)

// adminListLimit は管理者向け投稿一覧の最大件数。
const adminListLimit = 50

// Verifier はLinkedIn投稿の実在確認インターフェース。
type Verifier interface {
	Verify(ctx context.Context, postURL string) (linkedin.Result, error)
}

// Sanitizer は自由記述ノートのサニタイズインターフェース。
type Sanitizer interface {
	Sanitize(note string) string
}

// Broadcaster はメンバーへの逐次メール配信インターフェース。
type Broadcaster interface {
	Dispatch(ctx context.Context, recipients []mail.Recipient, msg mail.Message) mail.Report
}

// Notifications は投稿通知の配信結果を表す。
type Notifications struct {
	Sent         int `json:"sent"`
	Failed       int `json:"failed"`
	TotalMembers int `json:"total_members"`
}

// SubmitResult は投稿受付の結果を表す。
type SubmitResult struct {
	Post              *model.Post
	MemberName        string
	Notifications     Notifications
	ValidationWarning string
}

// Service は投稿のユースケースを実装する。
type Service struct {
	postRepo    repository.PostRepository
	memberRepo  repository.MemberRepository
	verifier    Verifier
	sanitizer   Sanitizer
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	postRepo repository.PostRepository,
	memberRepo repository.MemberRepository,
	verifier Verifier,
	sanitizer Sanitizer,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *Service {
	return &Service{
		postRepo:    postRepo,
		memberRepo:  memberRepo,
		verifier:    verifier,
		sanitizer:   sanitizer,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Submit は投稿を受け付け、投稿者以外のアクティブメンバーへ通知メールを配信する。
// 実在確認が縮退した場合、投稿は受理され警告がValidationWarningに載る。
func (s *Service) Submit(ctx context.Context, memberEmail, linkedinURL, note string) (*SubmitResult, error) {
	email := strings.ToLower(strings.TrimSpace(memberEmail))
	member, err := s.memberRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("メンバーの検索に失敗しました: %w", err)
	}
	if member == nil || !member.IsActive {
		return nil, model.NewMemberNotFoundError()
	}

	url := strings.TrimSpace(linkedinURL)
	if !linkedin.IsValidPostURL(url) {
		return nil, model.NewInvalidURLError("LinkedInの投稿URLではありません")
	}

	verification, err := s.verifier.Verify(ctx, url)
	if err != nil {
		return nil, model.NewPostNotVerifiedError()
	}

	post := &model.Post{
		ID:          uuid.New().String(),
		MemberID:    member.ID,
		LinkedInURL: url,
		Note:        s.sanitizer.Sanitize(note),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("投稿の保存に失敗しました: %w", err)
	}

	s.logger.Info("投稿を受け付けました",
		slog.String("post_id", post.ID),
		slog.String("member_id", member.ID),
		slog.Bool("verification_degraded", verification.Degraded),
	)

	members, err := s.memberRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}

	recipients := make([]mail.Recipient, 0, len(members))
	for _, m := range members {
		if m.ID == member.ID {
			continue
		}
		recipients = append(recipients, mail.Recipient{Name: m.Name, Email: m.Email})
	}

	report := s.broadcaster.Dispatch(ctx, recipients, mail.NewPostMessage(member.Name, url, post.Note))

	s.logger.Info("投稿通知を配信しました",
		slog.String("post_id", post.ID),
		slog.Int("sent", report.Successful),
		slog.Int("failed", report.Failed),
	)

	return &SubmitResult{
		Post:       post,
		MemberName: member.Name,
		Notifications: Notifications{
			Sent:         report.Successful,
			Failed:       report.Failed,
			TotalMembers: len(recipients),
		},
		ValidationWarning: verification.Warning,
	}, nil
}

// ListRecent は投稿を投稿者情報付きで新しい順に返す。管理者向け。
func (s *Service) ListRecent(ctx context.Context) ([]model.PostWithMember, error) {
	posts, err := s.postRepo.ListRecentWithMember(ctx, adminListLimit)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}
