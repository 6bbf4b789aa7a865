// Package member はメンバー登録と管理を提供する。
package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/engagepod/internal/mail"
	"github.com/hitoshi/engagepod/internal/model"
	"github.com/hitoshi/engagepod/internal/repository"
)

// notifyTimeout は管理者通知メールの送信タイムアウト。
// リクエストのコンテキストから切り離して送信するため独自に設定する。
const notifyTimeout = 15 * time.Second

// Service はメンバーのユースケースを実装する。
type Service struct {
	repo       repository.MemberRepository
	sender     mail.Sender
	adminEmail string
	logger     *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// adminEmailが空の場合、新規登録の管理者通知は送信しない。
func NewService(repo repository.MemberRepository, sender mail.Sender, adminEmail string, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		sender:     sender,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Register はメンバーを登録する。
// 名前は前後の空白を除去し、メールアドレスは小文字に正規化して保存する。
// メールアドレスが登録済みの場合は重複エラーを返す。
// 登録成功後、管理者への通知メールを非同期に送信する（結果はログのみ）。
func (s *Service) Register(ctx context.Context, name, email string) (*model.Member, error) {
	member := &model.Member{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("メンバーの登録に失敗しました: %w", err)
	}

	s.logger.Info("メンバーを登録しました",
		slog.String("member_id", member.ID),
		slog.String("email", member.Email),
	)

	if s.adminEmail != "" {
		go s.notifyAdmin(member.Name, member.Email)
	}

	return member, nil
}

// notifyAdmin は管理者へ新規メンバー通知を送信する。
// リクエスト処理とは独立したコンテキストで実行し、失敗はログに残すだけで伝播しない。
func (s *Service) notifyAdmin(name, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	subject, body := mail.NewMemberAdminMessage(name, email)
	if _, err := s.sender.Send(ctx, mail.Address{Email: s.adminEmail}, subject, body); err != nil {
		s.logger.Warn("管理者への新規メンバー通知に失敗しました",
			slog.String("member_email", email),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("管理者へ新規メンバー通知を送信しました", slog.String("member_email", email))
}

// List はアクティブなメンバー一覧を返す。
func (s *Service) List(ctx context.Context) ([]*model.Member, error) {
	members, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}
	return members, nil
}

// FindByEmail はメールアドレスでアクティブなメンバーを検索する。
// 存在しない、または非アクティブの場合は未検出エラーを返す。
func (s *Service) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	member, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("メンバーの検索に失敗しました: %w", err)
	}
	if member == nil || !member.IsActive {
		return nil, model.NewMemberNotFoundError()
	}
	return member, nil
}

// Update はメンバーの指定フィールドを更新する。nilのフィールドは変更しない。
func (s *Service) Update(ctx context.Context, id string, update model.MemberUpdate) (*model.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("メンバーの取得に失敗しました: %w", err)
	}
	if member == nil {
		return nil, model.NewMemberNotFoundError()
	}

	if update.Name != nil {
		member.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		member.Email = strings.ToLower(strings.TrimSpace(*update.Email))
	}
	if update.IsActive != nil {
		member.IsActive = *update.IsActive
	}

	if err := s.repo.Update(ctx, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewMemberNotFoundError()
		case errors.Is(err, repository.ErrDuplicate):
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("メンバーの更新に失敗しました: %w", err)
	}

	s.logger.Info("メンバーを更新しました", slog.String("member_id", id))

	return member, nil
}

// Delete はメンバーを削除する。投稿とエンゲージメントもCASCADEで削除される。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewMemberNotFoundError()
		}
		return fmt.Errorf("メンバーの削除に失敗しました: %w", err)
	}

	s.logger.Info("メンバーを削除しました", slog.String("member_id", id))

	return nil
}
