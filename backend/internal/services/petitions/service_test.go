package petitions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	pgrepo "github.com/Brahim-Amzil/3arida-sub004/backend/internal/repo/postgres"
)

type memoryStore struct {
	items map[string]model.Petition
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[string]model.Petition)}
}

func (s *memoryStore) Create(_ context.Context, p model.Petition) error {
	s.items[p.ID] = p.Clone()
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id string) (model.Petition, error) {
	p, ok := s.items[id]
	if !ok {
		return model.Petition{}, pgrepo.ErrPetitionNotFound
	}
	return p.Clone(), nil
}

func (s *memoryStore) Update(_ context.Context, p model.Petition, expectedVersion int64) (model.Petition, error) {
	if s.items[p.ID].Version != expectedVersion {
		return model.Petition{}, apperr.ErrConflict
	}
	p.Version = expectedVersion + 1
	s.items[p.ID] = p.Clone()
	return p, nil
}

func (s *memoryStore) ListByCreator(_ context.Context, creatorID string, _ int) ([]model.Petition, error) {
	out := make([]model.Petition, 0)
	for _, p := range s.items {
		if p.CreatorID == creatorID {
			out = append(out, p)
		}
	}
	return out, nil
}

var creator = model.Actor{ID: "c1", Name: "Creator", Role: enums.RoleCreator}

func newTestService() (*Service, *memoryStore) {
	store := newMemoryStore()
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "p1" }
	return svc, store
}

func TestCreateStartsPending(t *testing.T) {
	svc, store := newTestService()

	p, err := svc.Create(context.Background(), CreateInput{
		Creator:          creator,
		Title:            " Clean the <b>river</b> ",
		Description:      "The river is polluted.",
		Category:         "Environment",
		TargetSignatures: 1000,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Status != enums.PetitionStatusPending || !p.IsActive || p.CurrentSignatures != 0 {
		t.Fatalf("unexpected new petition: %+v", p)
	}
	if p.Title != "Clean the <b>river</b>" || p.Category != "environment" {
		t.Fatalf("expected trimmed content, got %q / %q", p.Title, p.Category)
	}
	if _, ok := store.items["p1"]; !ok {
		t.Fatalf("petition was not stored")
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{name: "title", in: CreateInput{Creator: creator, Description: "d", TargetSignatures: 1}, field: "title"},
		{name: "description", in: CreateInput{Creator: creator, Title: "t", TargetSignatures: 1}, field: "description"},
		{name: "target", in: CreateInput{Creator: creator, Title: "t", Description: "d"}, field: "target_signatures"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			_, err := svc.Create(context.Background(), tt.in)
			var verr *apperr.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestUpdateContentOnlyWhilePendingOrRejected(t *testing.T) {
	tests := []struct {
		status  enums.PetitionStatus
		wantErr error
	}{
		{status: enums.PetitionStatusPending},
		{status: enums.PetitionStatusRejected},
		{status: enums.PetitionStatusApproved, wantErr: apperr.ErrInvalidPetitionState},
		{status: enums.PetitionStatusPaused, wantErr: apperr.ErrInvalidPetitionState},
		{status: enums.PetitionStatusDeleted, wantErr: apperr.ErrInvalidPetitionState},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			svc, store := newTestService()
			store.items["p1"] = model.Petition{ID: "p1", CreatorID: "c1", Title: "t", Description: "d", TargetSignatures: 10, Status: tt.status}

			title := "New title"
			got, err := svc.UpdateContent(context.Background(), UpdateInput{PetitionID: "p1", Actor: creator, Title: &title})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if got.Title != "New title" || got.Description != "d" || got.Version != 1 {
				t.Fatalf("unexpected petition: %+v", got)
			}
		})
	}
}

func TestUpdateContentRequiresCreator(t *testing.T) {
	svc, store := newTestService()
	store.items["p1"] = model.Petition{ID: "p1", CreatorID: "c1", Status: enums.PetitionStatusPending}

	title := "hijack"
	_, err := svc.UpdateContent(context.Background(), UpdateInput{
		PetitionID: "p1",
		Actor:      model.Actor{ID: "c2", Role: enums.RoleCreator},
		Title:      &title,
	})
	if !errors.Is(err, apperr.ErrUnauthorizedAccess) {
		t.Fatalf("expected ErrUnauthorizedAccess, got %v", err)
	}
}

func TestResubmitClosesLastHistoryEntry(t *testing.T) {
	svc, store := newTestService()
	earlier := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store.items["p1"] = model.Petition{
		ID:        "p1",
		CreatorID: "c1",
		Status:    enums.PetitionStatusRejected,
		ResubmissionHistory: []model.ResubmissionEntry{
			{RejectedAt: earlier, Reason: "first", ResubmittedAt: &earlier},
			{RejectedAt: earlier, Reason: "second"},
		},
	}

	got, err := svc.Resubmit(context.Background(), "p1", creator)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if got.Status != enums.PetitionStatusPending {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	last := got.ResubmissionHistory[1]
	if last.ResubmittedAt == nil || !last.ResubmittedAt.Equal(svc.now()) {
		t.Fatalf("expected last entry to be closed, got %+v", last)
	}
	if !got.ResubmissionHistory[0].ResubmittedAt.Equal(earlier) {
		t.Fatalf("earlier entry was modified")
	}

	if _, err := svc.Resubmit(context.Background(), "p1", creator); !errors.Is(err, apperr.ErrInvalidPetitionState) {
		t.Fatalf("expected ErrInvalidPetitionState for pending petition, got %v", err)
	}
}

func TestGetHidesUnpublishedPetitions(t *testing.T) {
	svc, store := newTestService()
	store.items["p1"] = model.Petition{ID: "p1", CreatorID: "c1", Status: enums.PetitionStatusPending}

	if _, err := svc.Get(context.Background(), "p1", model.Actor{ID: "u9", Role: enums.RoleUser}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stranger, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "p1", creator); err != nil {
		t.Fatalf("creator get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "p1", model.Actor{ID: "m1", Role: enums.RoleModerator}); err != nil {
		t.Fatalf("moderator get: %v", err)
	}
}
