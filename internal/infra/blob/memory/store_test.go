package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"formcore/internal/blob/core"
)

func TestPutGetHeadDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	info, err := s.Put(ctx, "uploads/a.txt", strings.NewReader("hello"), core.PutOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"owner": "staff@example.org"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 5 || info.ContentType != "text/plain" {
		t.Fatalf("info %+v", info)
	}

	if _, err := s.Put(ctx, "uploads/a.txt", strings.NewReader("again"), core.PutOptions{}); err == nil {
		t.Fatal("duplicate put should fail")
	}

	got, rc, err := s.Get(ctx, "uploads/a.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "hello" || got.Metadata["owner"] != "staff@example.org" {
		t.Fatalf("body %q info %+v", body, got)
	}

	if _, err := s.Head(ctx, "uploads/a.txt"); err != nil {
		t.Fatalf("head: %v", err)
	}

	ok, err := s.Delete(ctx, "uploads/a.txt")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.Delete(ctx, "uploads/a.txt")
	if err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
}

func TestListFiltersByPrefix(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, key := range []string{"uploads/m1/a", "uploads/m1/b", "uploads/m2/c"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "uploads/m1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "uploads/m1/a" {
		t.Fatalf("infos %+v", infos)
	}
}

func TestPresignUnsupported(t *testing.T) {
	s := New()
	if _, err := s.PresignURL(context.Background(), "k", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
