package engagement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/engagepod/internal/model"
	"github.com/hitoshi/engagepod/internal/repository"
)

type mockEngagementRepo struct {
	createFunc        func(ctx context.Context, e *model.Engagement) error
	deleteFunc        func(ctx context.Context, postID, memberID string, t model.EngagementType) error
	listByPostIDsFunc func(ctx context.Context, postIDs []string) ([]repository.EngagementWithMember, error)
}

func (m *mockEngagementRepo) Create(ctx context.Context, e *model.Engagement) error {
	return m.createFunc(ctx, e)
}

func (m *mockEngagementRepo) Delete(ctx context.Context, postID, memberID string, t model.EngagementType) error {
	return m.deleteFunc(ctx, postID, memberID, t)
}

func (m *mockEngagementRepo) ListByPostIDs(ctx context.Context, postIDs []string) ([]repository.EngagementWithMember, error) {
	return m.listByPostIDsFunc(ctx, postIDs)
}

type mockPostRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Post, error)
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error { return nil }

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockPostRepo) ListRecentWithMember(ctx context.Context, limit int) ([]model.PostWithMember, error) {
	return nil, nil
}

func (m *mockPostRepo) ListSinceWithMember(ctx context.Context, since time.Time, limit int) ([]model.PostWithMember, error) {
	return nil, nil
}

type mockMemberRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Member, error)
}

func (m *mockMemberRepo) Create(ctx context.Context, member *model.Member) error { return nil }

func (m *mockMemberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockMemberRepo) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	return nil, nil
}

func (m *mockMemberRepo) ListActive(ctx context.Context) ([]*model.Member, error) { return nil, nil }

func (m *mockMemberRepo) CountActive(ctx context.Context) (int, error) { return 0, nil }

func (m *mockMemberRepo) Update(ctx context.Context, member *model.Member) error { return nil }

func (m *mockMemberRepo) DeleteByID(ctx context.Context, id string) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func apiErrorCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	return apiErr.Code
}

func existingPost(memberID string) *mockPostRepo {
	return &mockPostRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Post, error) {
			return &model.Post{ID: id, MemberID: memberID}, nil
		},
	}
}

func existingMember() *mockMemberRepo {
	return &mockMemberRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Member, error) {
			return &model.Member{ID: id, Name: "Alice", IsActive: true}, nil
		},
	}
}

func TestService_Record_Success(t *testing.T) {
	var created *model.Engagement
	repo := &mockEngagementRepo{
		createFunc: func(ctx context.Context, e *model.Engagement) error {
			created = e
			return nil
		},
	}
	svc := NewService(repo, existingPost("poster-id"), existingMember(), discardLogger())

	e, err := svc.Record(context.Background(), "post-1", "member-1", model.EngagementLiked)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if created == nil {
		t.Fatal("Create was not called")
	}
	if e.ID == "" {
		t.Error("engagement ID is empty")
	}
	if e.PostID != "post-1" || e.MemberID != "member-1" || e.Type != model.EngagementLiked {
		t.Errorf("engagement = %+v", e)
	}
}

func TestService_Record_InvalidType(t *testing.T) {
	svc := NewService(&mockEngagementRepo{}, existingPost("poster-id"), existingMember(), discardLogger())

	_, err := svc.Record(context.Background(), "post-1", "member-1", "loved")
	if code := apiErrorCode(t, err); code != model.ErrCodeInvalidEngagement {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeInvalidEngagement)
	}
}

func TestService_Record_PostNotFound(t *testing.T) {
	postRepo := &mockPostRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Post, error) { return nil, nil },
	}
	svc := NewService(&mockEngagementRepo{}, postRepo, existingMember(), discardLogger())

	_, err := svc.Record(context.Background(), "missing", "member-1", model.EngagementLiked)
	if code := apiErrorCode(t, err); code != model.ErrCodePostNotFound {
		t.Errorf("error code = %q, want %q", code, model.ErrCodePostNotFound)
	}
}

func TestService_Record_MemberNotFound(t *testing.T) {
	memberRepo := &mockMemberRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Member, error) { return nil, nil },
	}
	svc := NewService(&mockEngagementRepo{}, existingPost("poster-id"), memberRepo, discardLogger())

	_, err := svc.Record(context.Background(), "post-1", "missing", model.EngagementLiked)
	if code := apiErrorCode(t, err); code != model.ErrCodeMemberNotFound {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeMemberNotFound)
	}
}

// 非アクティブのメンバーによる記録は未検出として拒否される
func TestService_Record_InactiveMember(t *testing.T) {
	memberRepo := &mockMemberRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Member, error) {
			return &model.Member{ID: id, Name: "Alice", IsActive: false}, nil
		},
	}
	svc := NewService(&mockEngagementRepo{}, existingPost("poster-id"), memberRepo, discardLogger())

	_, err := svc.Record(context.Background(), "post-1", "member-1", model.EngagementLiked)
	if code := apiErrorCode(t, err); code != model.ErrCodeMemberNotFound {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeMemberNotFound)
	}
}

// 記録されるエンゲージメントには現在時刻の作成日時が設定される
func TestService_Record_SetsCreatedAt(t *testing.T) {
	var created *model.Engagement
	repo := &mockEngagementRepo{
		createFunc: func(ctx context.Context, e *model.Engagement) error {
			created = e
			return nil
		},
	}
	svc := NewService(repo, existingPost("poster-id"), existingMember(), discardLogger())

	before := time.Now().UTC()
	if _, err := svc.Record(context.Background(), "post-1", "member-1", model.EngagementLiked); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	after := time.Now().UTC()

	if created.CreatedAt.IsZero() {
		t.Fatal("engagement.CreatedAt is zero")
	}
	if created.CreatedAt.Before(before) || created.CreatedAt.After(after) {
		t.Errorf("engagement.CreatedAt = %v, want between %v and %v", created.CreatedAt, before, after)
	}
}

func TestService_Record_SelfEngagement(t *testing.T) {
	svc := NewService(&mockEngagementRepo{}, existingPost("member-1"), existingMember(), discardLogger())

	_, err := svc.Record(context.Background(), "post-1", "member-1", model.EngagementLiked)
	if code := apiErrorCode(t, err); code != model.ErrCodeSelfEngagement {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeSelfEngagement)
	}
}

// 同一の (post, member, type) の二重記録は重複エラーになる
func TestService_Record_DuplicateTriple(t *testing.T) {
	repo := &mockEngagementRepo{
		createFunc: func(ctx context.Context, e *model.Engagement) error {
			return repository.ErrDuplicate
		},
	}
	svc := NewService(repo, existingPost("poster-id"), existingMember(), discardLogger())

	_, err := svc.Record(context.Background(), "post-1", "member-1", model.EngagementLiked)
	if code := apiErrorCode(t, err); code != model.ErrCodeDuplicateEngagement {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeDuplicateEngagement)
	}
}

func TestService_Remove_Success(t *testing.T) {
	var deletedPostID, deletedMemberID string
	var deletedType model.EngagementType
	repo := &mockEngagementRepo{
		deleteFunc: func(ctx context.Context, postID, memberID string, et model.EngagementType) error {
			deletedPostID, deletedMemberID, deletedType = postID, memberID, et
			return nil
		},
	}
	svc := NewService(repo, existingPost("poster-id"), existingMember(), discardLogger())

	if err := svc.Remove(context.Background(), "post-1", "member-1", model.EngagementCommented); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if deletedPostID != "post-1" || deletedMemberID != "member-1" || deletedType != model.EngagementCommented {
		t.Errorf("Delete called with (%q, %q, %q)", deletedPostID, deletedMemberID, deletedType)
	}
}

func TestService_Remove_NotRecorded(t *testing.T) {
	repo := &mockEngagementRepo{
		deleteFunc: func(ctx context.Context, postID, memberID string, et model.EngagementType) error {
			return repository.ErrNotFound
		},
	}
	svc := NewService(repo, existingPost("poster-id"), existingMember(), discardLogger())

	err := svc.Remove(context.Background(), "post-1", "member-1", model.EngagementLiked)
	if code := apiErrorCode(t, err); code != model.ErrCodeEngagementNotFound {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeEngagementNotFound)
	}
}

func TestService_Remove_InvalidType(t *testing.T) {
	svc := NewService(&mockEngagementRepo{}, existingPost("poster-id"), existingMember(), discardLogger())

	err := svc.Remove(context.Background(), "post-1", "member-1", "shared")
	if code := apiErrorCode(t, err); code != model.ErrCodeInvalidEngagement {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeInvalidEngagement)
	}
}

// 両方の種別に現れるメンバーはTotalEngagedで1人として数える
func TestService_Summarize_DistinctMemberCount(t *testing.T) {
	repo := &mockEngagementRepo{
		listByPostIDsFunc: func(ctx context.Context, postIDs []string) ([]repository.EngagementWithMember, error) {
			return []repository.EngagementWithMember{
				{PostID: "post-1", MemberID: "m1", MemberName: "Alice", Type: model.EngagementLiked},
				{PostID: "post-1", MemberID: "m1", MemberName: "Alice", Type: model.EngagementCommented},
				{PostID: "post-1", MemberID: "m2", MemberName: "Bob", Type: model.EngagementLiked},
				{PostID: "post-2", MemberID: "m3", MemberName: "Carol", Type: model.EngagementCommented},
			}, nil
		},
	}
	svc := NewService(repo, existingPost("poster-id"), existingMember(), discardLogger())

	summaries, err := svc.Summarize(context.Background(), []string{"post-1", "post-2", "post-3"})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	p1 := summaries["post-1"]
	if p1 == nil {
		t.Fatal("summary for post-1 is missing")
	}
	if len(p1.Liked) != 2 || len(p1.Commented) != 1 {
		t.Errorf("post-1 liked/commented = %d/%d, want 2/1", len(p1.Liked), len(p1.Commented))
	}
	if p1.TotalEngaged != 2 {
		t.Errorf("post-1 TotalEngaged = %d, want 2 (m1 counted once)", p1.TotalEngaged)
	}

	p2 := summaries["post-2"]
	if p2 == nil {
		t.Fatal("summary for post-2 is missing")
	}
	if p2.TotalEngaged != 1 {
		t.Errorf("post-2 TotalEngaged = %d, want 1", p2.TotalEngaged)
	}

	if _, ok := summaries["post-3"]; ok {
		t.Error("post-3 has no engagements but appears in the map")
	}
}

func TestService_Summarize_EmptyPostIDs(t *testing.T) {
	called := false
	repo := &mockEngagementRepo{
		listByPostIDsFunc: func(ctx context.Context, postIDs []string) ([]repository.EngagementWithMember, error) {
			called = true
			return nil, nil
		},
	}
	svc := NewService(repo, existingPost("poster-id"), existingMember(), discardLogger())

	summaries, err := svc.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("len(summaries) = %d, want 0", len(summaries))
	}
	if called {
		t.Error("repository was queried for an empty post ID list")
	}
}
