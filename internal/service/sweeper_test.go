package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/church-content-api/internal/mocks"
	"github.com/church-content-api/internal/repository"
)

func seedImage(t *testing.T, store *mocks.MockStore, ref string) {
	t.Helper()
	if err := store.Save(context.Background(), ref, strings.NewReader("x"), 1, "image/png"); err != nil {
		t.Fatalf("seeding %q failed: %v", ref, err)
	}
}

func TestSweeper_ReclaimsOrphans(t *testing.T) {
	posts := mocks.NewMockPostRepository()
	store := mocks.NewMockStore()
	svc := newTestServices(mocks.NewMockUserRepository(), posts, store)
	ctx := context.Background()

	seedImage(t, store, "live.jpg")
	seedImage(t, store, "orphan-a.jpg")
	seedImage(t, store, "orphan-b.png")
	seedImage(t, store, "soft-deleted.jpg")

	createPost(t, svc, "A", "Com imagem", "Eventos", "2024-01-01", []string{"live.jpg"})
	deleted := createPost(t, svc, "A", "Apagado", "SAF", "2024-01-02", []string{"soft-deleted.jpg"})
	if _, err := svc.Post.SoftDelete(ctx, deleted.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	reclaimed, err := svc.Sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	// images of soft-deleted posts are orphans too
	if reclaimed != 3 {
		t.Errorf("expected 3 reclaimed images, got %d", reclaimed)
	}
	if _, ok := store.Objects["live.jpg"]; !ok {
		t.Error("referenced image must survive the sweep")
	}
	for _, ref := range []string{"orphan-a.jpg", "orphan-b.png", "soft-deleted.jpg"} {
		if _, ok := store.Objects[ref]; ok {
			t.Errorf("expected %q to be reclaimed", ref)
		}
	}
}

func TestSweeper_SecondPassIsIdempotent(t *testing.T) {
	posts := mocks.NewMockPostRepository()
	store := mocks.NewMockStore()
	svc := newTestServices(mocks.NewMockUserRepository(), posts, store)
	ctx := context.Background()

	seedImage(t, store, "live.jpg")
	seedImage(t, store, "orphan.jpg")
	createPost(t, svc, "A", "Com imagem", "Eventos", "2024-01-01", []string{"live.jpg"})

	first, err := svc.Sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("first Sweep failed: %v", err)
	}
	if first != 1 {
		t.Errorf("expected 1 reclaimed image, got %d", first)
	}

	second, err := svc.Sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep failed: %v", err)
	}
	if second != 0 {
		t.Errorf("expected an idempotent second pass, reclaimed %d", second)
	}
}

func TestSweeper_SkipsWhileStoreDown(t *testing.T) {
	posts := mocks.NewMockPostRepository()
	store := mocks.NewMockStore()
	svc := newTestServices(mocks.NewMockUserRepository(), posts, store)
	ctx := context.Background()

	seedImage(t, store, "maybe-live.jpg")

	// the live set cannot be computed, so nothing may be deleted
	posts.Err = repository.ErrUnavailable
	reclaimed, err := svc.Sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep must not fail while the store is down, got %v", err)
	}
	if reclaimed != 0 {
		t.Errorf("expected no deletions, got %d", reclaimed)
	}
	if _, ok := store.Objects["maybe-live.jpg"]; !ok {
		t.Error("no image may be deleted while references are unknown")
	}
}

func TestSweeper_TriggerRunsAfterDelay(t *testing.T) {
	posts := mocks.NewMockPostRepository()
	store := mocks.NewMockStore()
	svc := newTestServices(mocks.NewMockUserRepository(), posts, store)
	ctx := context.Background()

	seedImage(t, store, "orphan.jpg")

	svc.Sweeper.Start(ctx)
	defer svc.Sweeper.Stop()

	svc.Sweeper.Trigger()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !store.Has("orphan.jpg") {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected the triggered sweep to reclaim the orphan")
}
