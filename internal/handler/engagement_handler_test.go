package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/engagepod/internal/model"
)

type mockEngagementService struct {
	recordFunc func(ctx context.Context, postID, memberID string, engagementType model.EngagementType) (*model.Engagement, error)
	removeFunc func(ctx context.Context, postID, memberID string, engagementType model.EngagementType) error
}

func (m *mockEngagementService) Record(ctx context.Context, postID, memberID string, engagementType model.EngagementType) (*model.Engagement, error) {
	return m.recordFunc(ctx, postID, memberID, engagementType)
}

func (m *mockEngagementService) Remove(ctx context.Context, postID, memberID string, engagementType model.EngagementType) error {
	return m.removeFunc(ctx, postID, memberID, engagementType)
}

func TestEngagementHandler_Record_Created(t *testing.T) {
	service := &mockEngagementService{
		recordFunc: func(ctx context.Context, postID, memberID string, engagementType model.EngagementType) (*model.Engagement, error) {
			return &model.Engagement{ID: "e1", PostID: postID, MemberID: memberID, Type: engagementType}, nil
		},
	}
	h := NewEngagementHandler(service)

	body := bytes.NewBufferString(`{"post_id":"post-1","member_id":"m1","engagement_type":"liked"}`)
	r := httptest.NewRequest("POST", "/api/engagements", body)
	w := httptest.NewRecorder()
	h.Record(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp engagementResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.ID != "e1" || resp.EngagementType != "liked" {
		t.Errorf("response = %+v", resp)
	}
}

// 二重記録は409を返す
func TestEngagementHandler_Record_Duplicate(t *testing.T) {
	service := &mockEngagementService{
		recordFunc: func(ctx context.Context, postID, memberID string, engagementType model.EngagementType) (*model.Engagement, error) {
			return nil, model.NewDuplicateEngagementError()
		},
	}
	h := NewEngagementHandler(service)

	body := bytes.NewBufferString(`{"post_id":"post-1","member_id":"m1","engagement_type":"liked"}`)
	r := httptest.NewRequest("POST", "/api/engagements", body)
	w := httptest.NewRecorder()
	h.Record(w, r)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestEngagementHandler_Record_MissingFields(t *testing.T) {
	h := NewEngagementHandler(&mockEngagementService{
		recordFunc: func(ctx context.Context, postID, memberID string, engagementType model.EngagementType) (*model.Engagement, error) {
			t.Error("service should not be called for invalid input")
			return nil, nil
		},
	})

	body := bytes.NewBufferString(`{"post_id":"post-1"}`)
	r := httptest.NewRequest("POST", "/api/engagements", body)
	w := httptest.NewRecorder()
	h.Record(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEngagementHandler_Record_SelfEngagement(t *testing.T) {
	service := &mockEngagementService{
		recordFunc: func(ctx context.Context, postID, memberID string, engagementType model.EngagementType) (*model.Engagement, error) {
			return nil, model.NewSelfEngagementError()
		},
	}
	h := NewEngagementHandler(service)

	body := bytes.NewBufferString(`{"post_id":"post-1","member_id":"m1","engagement_type":"liked"}`)
	r := httptest.NewRequest("POST", "/api/engagements", body)
	w := httptest.NewRecorder()
	h.Record(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEngagementHandler_Remove_NoContent(t *testing.T) {
	var gotType model.EngagementType
	service := &mockEngagementService{
		removeFunc: func(ctx context.Context, postID, memberID string, engagementType model.EngagementType) error {
			gotType = engagementType
			return nil
		},
	}
	h := NewEngagementHandler(service)

	body := bytes.NewBufferString(`{"post_id":"post-1","member_id":"m1","engagement_type":"commented"}`)
	r := httptest.NewRequest("DELETE", "/api/engagements", body)
	w := httptest.NewRecorder()
	h.Remove(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if gotType != model.EngagementCommented {
		t.Errorf("type = %q, want commented", gotType)
	}
}

// 未記録のエンゲージメント取り消しは404を返す
func TestEngagementHandler_Remove_NotFound(t *testing.T) {
	service := &mockEngagementService{
		removeFunc: func(ctx context.Context, postID, memberID string, engagementType model.EngagementType) error {
			return model.NewEngagementNotFoundError()
		},
	}
	h := NewEngagementHandler(service)

	body := bytes.NewBufferString(`{"post_id":"post-1","member_id":"m1","engagement_type":"liked"}`)
	r := httptest.NewRequest("DELETE", "/api/engagements", body)
	w := httptest.NewRecorder()
	h.Remove(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
