package gallery_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"photofind/internal/gallery"
	"photofind/internal/model"
	"photofind/internal/testutil"
)

func setup(t *testing.T) (*gallery.Service, gallery.Catalog, *testutil.StubProvider, *testutil.MockImageSource) {
	t.Helper()
	cat := testutil.NewTestCatalog(t)
	prov := testutil.NewStubProvider("a cat on a bed indoors", []float32{1, 0})
	src := testutil.NewMockImageSource()
	svc := gallery.NewService(cat, prov, src, gallery.NewNopLogger())
	return svc, cat, prov, src
}

func TestService_IndexFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes new files in full", func(t *testing.T) {
		svc, cat, prov, src := setup(t)
		src.AddImage("/photos/cat.jpg", 100)

		summary, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{})
		if err != nil {
			t.Fatalf("IndexFolder() error = %v", err)
		}
		if summary.Indexed != 1 || summary.Skipped != 0 || len(summary.Failures) != 0 {
			t.Fatalf("summary = %+v, want 1 indexed", summary)
		}
		if prov.CaptionAndTagsCalls != 1 || prov.EmbedTextCalls != 1 {
			t.Errorf("provider calls = %d caption, %d embed; want 1 and 1",
				prov.CaptionAndTagsCalls, prov.EmbedTextCalls)
		}

		rec, err := cat.FindByPath("/photos/cat.jpg")
		if err != nil {
			t.Fatalf("FindByPath() error = %v", err)
		}
		if rec == nil {
			t.Fatal("record not created")
		}
		if rec.Caption != "a cat on a bed indoors" {
			t.Errorf("Caption = %q", rec.Caption)
		}
		if rec.MTime != 100 {
			t.Errorf("MTime = %v, want 100", rec.MTime)
		}
		if rec.Embedding == nil {
			t.Error("embedding not stored")
		}
	})

	t.Run("unchanged files make zero provider calls", func(t *testing.T) {
		svc, cat, prov, src := setup(t)
		src.AddImage("/photos/cat.jpg", 100)

		if _, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{}); err != nil {
			t.Fatalf("first IndexFolder() error = %v", err)
		}
		before, _ := cat.FindByPath("/photos/cat.jpg")
		callsBefore := prov.TotalCalls()

		summary, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{})
		if err != nil {
			t.Fatalf("second IndexFolder() error = %v", err)
		}
		if summary.Skipped != 1 || summary.Indexed != 0 {
			t.Errorf("summary = %+v, want 1 skipped", summary)
		}
		if prov.TotalCalls() != callsBefore {
			t.Errorf("provider calls went %d -> %d, want unchanged", callsBefore, prov.TotalCalls())
		}

		after, _ := cat.FindByPath("/photos/cat.jpg")
		if !bytes.Equal(before.Embedding, after.Embedding) || before.MTime != after.MTime {
			t.Error("store changed on a no-op run")
		}
	})

	t.Run("changed mtime triggers full reprocess", func(t *testing.T) {
		svc, _, prov, src := setup(t)
		src.AddImage("/photos/cat.jpg", 100)

		if _, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{}); err != nil {
			t.Fatal(err)
		}
		src.SetMTime("/photos/cat.jpg", 101)

		summary, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if summary.Indexed != 1 {
			t.Errorf("summary = %+v, want 1 indexed", summary)
		}
		if prov.EmbedTextCalls != 2 {
			t.Errorf("EmbedTextCalls = %d, want 2", prov.EmbedTextCalls)
		}
	})

	t.Run("marked deleted file is revived by re-index", func(t *testing.T) {
		svc, cat, _, src := setup(t)
		src.AddImage("/photos/cat.jpg", 100)

		if _, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{}); err != nil {
			t.Fatal(err)
		}
		if err := svc.MarkDeleted([]string{"/photos/cat.jpg"}); err != nil {
			t.Fatal(err)
		}

		// Same unchanged mtime: a deleted row must still be reprocessed.
		summary, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if summary.Indexed != 1 {
			t.Errorf("summary = %+v, want 1 indexed (revival)", summary)
		}

		rec, _ := cat.FindByPath("/photos/cat.jpg")
		if rec.Deleted {
			t.Error("row still deleted after re-index")
		}
		if rec.Caption == "" || rec.Embedding == nil {
			t.Error("caption/embedding not repopulated")
		}
	})

	t.Run("rescan tags only keeps embedding byte-for-byte", func(t *testing.T) {
		svc, cat, prov, src := setup(t)
		src.AddImage("/photos/cat.jpg", 100)

		if _, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{}); err != nil {
			t.Fatal(err)
		}
		before, _ := cat.FindByPath("/photos/cat.jpg")
		embedsBefore := prov.EmbedTextCalls

		src.SetMTime("/photos/cat.jpg", 200)
		prov.Tags = model.TagSet{HasPeople: model.TagTrue}

		summary, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{RescanTags: true})
		if err != nil {
			t.Fatal(err)
		}
		if summary.Indexed != 1 {
			t.Errorf("summary = %+v, want 1 indexed", summary)
		}
		if prov.EmbedTextCalls != embedsBefore {
			t.Errorf("EmbedTextCalls = %d, tag rescan must not embed", prov.EmbedTextCalls)
		}

		after, _ := cat.FindByPath("/photos/cat.jpg")
		if !bytes.Equal(before.Embedding, after.Embedding) {
			t.Error("embedding changed during tags-only rescan")
		}
		if after.MTime != 200 {
			t.Errorf("MTime = %v, want 200", after.MTime)
		}
		if after.Tags.HasPeople != model.TagTrue {
			t.Error("tags not recomputed")
		}
	})

	t.Run("rescan flags skip files never indexed", func(t *testing.T) {
		svc, cat, prov, src := setup(t)
		src.AddImage("/photos/new.jpg", 100)

		for _, opts := range []gallery.IndexOptions{
			{RescanTags: true},
			{RescanDeleted: true},
		} {
			summary, err := svc.IndexFolder(ctx, "/photos", opts)
			if err != nil {
				t.Fatalf("IndexFolder(%+v) error = %v", opts, err)
			}
			if summary.Skipped != 1 || summary.Indexed != 0 {
				t.Errorf("IndexFolder(%+v) summary = %+v, want 1 skipped", opts, summary)
			}
		}
		if prov.TotalCalls() != 0 {
			t.Errorf("provider calls = %d, want 0", prov.TotalCalls())
		}
		if rec, _ := cat.FindByPath("/photos/new.jpg"); rec != nil {
			t.Error("rescan created a row for a never-indexed file")
		}
	})

	t.Run("rescan deleted only touches deleted rows", func(t *testing.T) {
		svc, _, prov, src := setup(t)
		src.AddImage("/photos/kept.jpg", 100)
		src.AddImage("/photos/gone.jpg", 100)

		if _, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{}); err != nil {
			t.Fatal(err)
		}
		if err := svc.MarkDeleted([]string{"/photos/gone.jpg"}); err != nil {
			t.Fatal(err)
		}
		callsBefore := prov.TotalCalls()

		summary, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{RescanDeleted: true})
		if err != nil {
			t.Fatal(err)
		}
		if summary.Indexed != 1 || summary.Skipped != 1 {
			t.Errorf("summary = %+v, want 1 indexed (the deleted row) and 1 skipped", summary)
		}
		// Only the deleted row costs provider calls: one caption, one embed.
		if got := prov.TotalCalls() - callsBefore; got != 2 {
			t.Errorf("provider calls for rescan = %d, want 2", got)
		}
	})

	t.Run("per-file failures are collected, not fatal", func(t *testing.T) {
		svc, cat, _, src := setup(t)
		src.AddImage("/photos/bad.jpg", 100)
		src.AddImage("/photos/good.jpg", 100)
		src.SetLoadError("/photos/bad.jpg", errors.New("unreadable"))

		summary, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{})
		if err != nil {
			t.Fatalf("IndexFolder() error = %v, per-file failures must not abort", err)
		}
		if summary.Indexed != 1 {
			t.Errorf("Indexed = %d, want 1", summary.Indexed)
		}
		if len(summary.Failures) != 1 || summary.Failures[0].Path != "/photos/bad.jpg" {
			t.Fatalf("Failures = %+v, want one for bad.jpg", summary.Failures)
		}

		if rec, _ := cat.FindByPath("/photos/good.jpg"); rec == nil {
			t.Error("good file was not indexed after a failure")
		}
	})

	t.Run("refuses provider with mismatched dimension", func(t *testing.T) {
		svc, cat, _, src := setup(t)
		src.AddImage("/photos/cat.jpg", 100)
		if _, err := svc.IndexFolder(ctx, "/photos", gallery.IndexOptions{}); err != nil {
			t.Fatal(err)
		}

		// Same catalog, provider now producing 3-dim vectors.
		other := testutil.NewStubProvider("cap", []float32{1, 0, 0})
		svc2 := gallery.NewService(cat, other, src, gallery.NewNopLogger())

		if _, err := svc2.IndexFolder(ctx, "/photos", gallery.IndexOptions{}); err == nil {
			t.Error("IndexFolder() expected error for embedding dimension mismatch")
		}
		if other.TotalCalls() != 0 {
			t.Error("dimension guard must fire before any provider call")
		}
	})
}
