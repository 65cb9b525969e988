package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/google/uuid"
)

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.submit(t, "R-1")

	first, err := f.comments.Add(ctx, f.analyst, r.ID, "IICS count pending")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	f.advance(time.Minute)
	if _, err := f.comments.Add(ctx, f.lead, r.ID, "recounted at gate"); err != nil {
		t.Fatal(err)
	}

	list, err := f.comments.List(ctx, f.controller, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Content != "recounted at gate" || list[0].Author.Username != "lead1" {
		t.Fatalf("List() = %+v, want newest first", list)
	}

	if _, err := f.comments.Add(ctx, f.lead, r.ID, "   "); !errors.Is(err, ErrInvalidField) {
		t.Errorf("Add(blank) error = %v", err)
	}
	if _, err := f.comments.Add(ctx, f.lead, uuid.New(), "x"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("Add(missing report) error = %v", err)
	}
	if _, err := f.comments.List(ctx, f.lead, uuid.New()); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("List(missing report) error = %v", err)
	}

	tests := []struct {
		name    string
		actor   access.Actor
		id      uuid.UUID
		wantErr error
	}{
		{"other user cannot delete", f.lead, first.ID, ErrPermissionDenied},
		{"author deletes", f.analyst, first.ID, nil},
		{"already gone", f.admin, first.ID, ErrCommentNotFound},
		{"admin deletes any", f.admin, list[0].ID, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.comments.Delete(ctx, tt.actor, r.ID, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	remaining, _ := f.comments.List(ctx, f.admin, r.ID)
	if len(remaining) != 0 {
		t.Errorf("%d comments left", len(remaining))
	}
}
