package storage

import (
	"context"
	"errors"
	"testing"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	if list, err := s.List(ctx, "u1"); err != nil || len(list) != 0 {
		t.Fatalf("List on empty store = %v, %v", list, err)
	}
	if err := s.Upload(ctx, "u1", "b-2.png", []byte("png")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := s.Upload(ctx, "u1", "a-1.pdf", []byte("pdf")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := s.Upload(ctx, "u2", "c.pdf", []byte("other")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	list, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "a-1.pdf" || list[1].Size != 3 {
		t.Errorf("List = %+v", list)
	}

	b, err := s.Download(ctx, "u1", "b-2.png")
	if err != nil || string(b) != "png" {
		t.Errorf("Download = %q, %v", b, err)
	}
	if _, err := s.Download(ctx, "u1", "c.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user Download err = %v, want ErrNotFound", err)
	}
	if err := s.Upload(ctx, "u1", "..", nil); err == nil {
		t.Error("Upload(..) succeeded")
	}
}

func TestContentType(t *testing.T) {
	if ct := ContentType("x.PDF"); ct != "application/pdf" {
		t.Errorf("ContentType(pdf) = %q", ct)
	}
	if ct := ContentType("x.unknownext"); ct != "application/octet-stream" {
		t.Errorf("ContentType(unknown) = %q", ct)
	}
}
