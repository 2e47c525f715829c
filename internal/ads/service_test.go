package ads

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"pressboard/internal/models"
	"pressboard/internal/store"
)

// fakeRecords is an in-memory Records implementation keyed by ad id.
type fakeRecords struct {
	mu  sync.Mutex
	ads map[uuid.UUID]*models.Ad
}

func newFakeRecords(ads ...*models.Ad) *fakeRecords {
	f := &fakeRecords{ads: make(map[uuid.UUID]*models.Ad)}
	for _, a := range ads {
		f.ads[a.ID] = a
	}
	return f
}

func (f *fakeRecords) FindByID(id uuid.UUID) (*models.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.ads[id]
	if !ok {
		return nil, nil
	}
	clone := *a
	return &clone, nil
}

func (f *fakeRecords) UpdateImages(id uuid.UUID, images []string) (*models.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.ads[id]
	if !ok {
		return nil, nil
	}
	a.Images = append([]string(nil), images...)
	clone := *a
	return &clone, nil
}

func (f *fakeRecords) UpdateModeration(id uuid.UUID, u models.ModerationUpdate) (*models.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.ads[id]
	if !ok {
		return nil, nil
	}
	a.Status = u.Status
	a.IsDeleted = u.IsDeleted
	if u.SetModeration {
		a.ModeratedByID = u.ModeratedByID
		a.ModeratedAt = u.ModeratedAt
		a.ModerationNote = u.ModerationNote
	}
	if u.SetDeletion {
		a.DeletedByID = u.DeletedByID
		a.DeletedAt = u.DeletedAt
		a.DeleteReason = u.DeleteReason
	}
	clone := *a
	return &clone, nil
}

func (f *fakeRecords) HardDelete(id uuid.UUID) (*models.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.ads[id]
	if !ok {
		return nil, nil
	}
	delete(f.ads, id)
	return a, nil
}

func (f *fakeRecords) List(filter store.ListFilter, ascending bool, limit int) ([]models.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Ad
	for _, a := range f.ads {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.CategorySlug != nil && a.CategorySlug != *filter.CategorySlug {
			continue
		}
		if filter.IsDeleted != nil && a.IsDeleted != *filter.IsDeleted {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[j].CreatedAt.Before(out[i].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeFiles records every deletion attempt.
type fakeFiles struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeFiles) DeleteSafe(reference string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, reference)
}

func (f *fakeFiles) sorted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.deleted...)
	sort.Strings(out)
	return out
}

func newTestService(records Records) (*Service, *fakeFiles) {
	files := &fakeFiles{}
	svc := New(records, files, DefaultConfig())
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return svc, files
}

func testAd(images ...string) *models.Ad {
	return &models.Ad{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Heidelberg SM 52 operator wanted",
		Status:    models.AdStatusPending,
		Images:    images,
		CreatedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestModerateApprove(t *testing.T) {
	ad := testAd()
	records := newFakeRecords(ad)
	svc, _ := newTestService(records)
	admin := uuid.New()

	got, err := svc.Moderate(ad.ID, admin, models.ActionApprove, "looks good")
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if got.Status != models.AdStatusPublished {
		t.Errorf("status = %s, want PUBLISHED", got.Status)
	}
	if got.IsDeleted {
		t.Errorf("approved ad is still soft-deleted")
	}
	if got.ModeratedByID == nil || *got.ModeratedByID != admin {
		t.Errorf("moderated_by_id not recorded")
	}
	if got.ModeratedAt == nil {
		t.Errorf("moderated_at not recorded")
	}
	if got.ModerationNote == nil || *got.ModerationNote != "looks good" {
		t.Errorf("moderation note not recorded")
	}
}

func TestModerateApproveRevivesDeletedAd(t *testing.T) {
	admin := uuid.New()
	reason := "spam"
	now := time.Now()
	ad := testAd()
	ad.Status = models.AdStatusRejected
	ad.IsDeleted = true
	ad.DeletedByID = &admin
	ad.DeletedAt = &now
	ad.DeleteReason = &reason

	records := newFakeRecords(ad)
	svc, _ := newTestService(records)

	got, err := svc.Moderate(ad.ID, admin, models.ActionApprove, "")
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if got.Status != models.AdStatusPublished || got.IsDeleted {
		t.Errorf("approve did not revive: status=%s deleted=%v", got.Status, got.IsDeleted)
	}
	if got.DeletedByID != nil || got.DeletedAt != nil || got.DeleteReason != nil {
		t.Errorf("approve did not clear the delete audit fields")
	}
	if !got.IsPubliclyVisible() {
		t.Errorf("revived ad is not publicly visible")
	}
}

func TestModerateReject(t *testing.T) {
	ad := testAd()
	ad.IsDeleted = true
	records := newFakeRecords(ad)
	svc, _ := newTestService(records)

	got, err := svc.Moderate(ad.ID, uuid.New(), models.ActionReject, "duplicate posting")
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if got.Status != models.AdStatusRejected {
		t.Errorf("status = %s, want REJECTED", got.Status)
	}
	// REJECT does not touch the soft-delete flag.
	if !got.IsDeleted {
		t.Errorf("reject cleared the soft-delete flag")
	}
}

func TestModerateDelete(t *testing.T) {
	ad := testAd()
	ad.Status = models.AdStatusPublished
	records := newFakeRecords(ad)
	svc, _ := newTestService(records)
	admin := uuid.New()

	got, err := svc.Moderate(ad.ID, admin, models.ActionDelete, "")
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if !got.IsDeleted {
		t.Errorf("delete did not raise the soft-delete flag")
	}
	// Status is untouched; deletion is a flag, not a state.
	if got.Status != models.AdStatusPublished {
		t.Errorf("delete changed status to %s", got.Status)
	}
	if got.DeleteReason == nil || *got.DeleteReason != DefaultDeleteReason {
		t.Errorf("empty reason was not defaulted")
	}
	if got.DeletedByID == nil || *got.DeletedByID != admin {
		t.Errorf("deleted_by_id not recorded")
	}
	if got.IsPubliclyVisible() {
		t.Errorf("soft-deleted ad is still publicly visible")
	}
}

func TestModerateDeleteKeepsCustomReason(t *testing.T) {
	ad := testAd()
	records := newFakeRecords(ad)
	svc, _ := newTestService(records)

	got, err := svc.Moderate(ad.ID, uuid.New(), models.ActionDelete, "reposted from a banned account")
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if got.DeleteReason == nil || *got.DeleteReason != "reposted from a banned account" {
		t.Errorf("custom delete reason was not kept")
	}
}

func TestModerateIsReapplyable(t *testing.T) {
	// Every action is valid from every state; re-applying the same
	// action and flipping between actions must both succeed.
	ad := testAd()
	records := newFakeRecords(ad)
	svc, _ := newTestService(records)
	admin := uuid.New()

	sequence := []models.ModerationAction{
		models.ActionApprove, models.ActionApprove,
		models.ActionReject, models.ActionDelete,
		models.ActionApprove,
	}
	for _, action := range sequence {
		if _, err := svc.Moderate(ad.ID, admin, action, ""); err != nil {
			t.Fatalf("Moderate(%s): %v", action, err)
		}
	}

	got, _ := records.FindByID(ad.ID)
	if got.Status != models.AdStatusPublished || got.IsDeleted {
		t.Errorf("final state = %s/deleted=%v, want PUBLISHED/false", got.Status, got.IsDeleted)
	}
}

func TestModerateUnknownAd(t *testing.T) {
	svc, _ := newTestService(newFakeRecords())
	_, err := svc.Moderate(uuid.New(), uuid.New(), models.ActionApprove, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReconcileImagesNoChange(t *testing.T) {
	// Round-trip: sending back the current list in any stored format
	// must delete nothing.
	ad := testAd("a.jpg", "b.jpg")
	records := newFakeRecords(ad)
	svc, files := newTestService(records)

	got, err := svc.ReconcileImages(ad.ID, []string{"/uploads/a.jpg", "public/uploads/b.jpg"})
	if err != nil {
		t.Fatalf("ReconcileImages: %v", err)
	}
	if len(files.sorted()) != 0 {
		t.Errorf("round-trip deleted files: %v", files.sorted())
	}
	if !equalStrings(got.Images, []string{"a.jpg", "b.jpg"}) {
		t.Errorf("images = %v, want normalized originals", got.Images)
	}
}

func TestReconcileImagesRemovesDropped(t *testing.T) {
	ad := testAd("a.jpg", "b.jpg", "c.jpg")
	records := newFakeRecords(ad)
	svc, files := newTestService(records)

	got, err := svc.ReconcileImages(ad.ID, []string{"c.jpg", "a.jpg"})
	if err != nil {
		t.Fatalf("ReconcileImages: %v", err)
	}
	// The dropped file goes away together with its thumbnail.
	if want := []string{"b.jpg", "b_thumb.jpg"}; !equalStrings(files.sorted(), want) {
		t.Errorf("deleted %v, want exactly %v", files.sorted(), want)
	}
	// Caller order is persisted: index 0 is the new main image.
	if !equalStrings(got.Images, []string{"c.jpg", "a.jpg"}) {
		t.Errorf("images = %v, want caller order preserved", got.Images)
	}
}

func TestReconcileImagesMatchesByIdentityNotFormat(t *testing.T) {
	// Stored reference and desired reference use different formats for
	// the same file; it must be kept, not deleted.
	ad := testAd("/uploads/a.jpg")
	records := newFakeRecords(ad)
	svc, files := newTestService(records)

	got, err := svc.ReconcileImages(ad.ID, []string{"a.jpg"})
	if err != nil {
		t.Fatalf("ReconcileImages: %v", err)
	}
	if len(files.sorted()) != 0 {
		t.Errorf("kept file was deleted: %v", files.sorted())
	}
	if !equalStrings(got.Images, []string{"a.jpg"}) {
		t.Errorf("images = %v, want [a.jpg]", got.Images)
	}
}

func TestReconcileImagesClearAll(t *testing.T) {
	ad := testAd("a.jpg", "b.jpg")
	records := newFakeRecords(ad)
	svc, files := newTestService(records)

	got, err := svc.ReconcileImages(ad.ID, nil)
	if err != nil {
		t.Fatalf("ReconcileImages: %v", err)
	}
	if len(got.Images) != 0 {
		t.Errorf("images = %v, want empty", got.Images)
	}
	want := []string{"a.jpg", "a_thumb.jpg", "b.jpg", "b_thumb.jpg"}
	if !equalStrings(files.sorted(), want) {
		t.Errorf("deleted %v, want %v", files.sorted(), want)
	}
}

func TestReconcileImagesCapDisabledByDefault(t *testing.T) {
	ad := testAd()
	records := newFakeRecords(ad)
	svc, _ := newTestService(records)

	desired := []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg", "7.jpg"}
	got, err := svc.ReconcileImages(ad.ID, desired)
	if err != nil {
		t.Fatalf("ReconcileImages over cap: %v", err)
	}
	if len(got.Images) != len(desired) {
		t.Errorf("images = %d, want %d (cap must not apply on edits by default)", len(got.Images), len(desired))
	}
}

func TestReconcileImagesCapEnforcedWhenConfigured(t *testing.T) {
	ad := testAd()
	records := newFakeRecords(ad)
	files := &fakeFiles{}
	svc := New(records, files, Config{MaxImagesPerAd: 2, EnforceImageCapOnReconcile: true})

	_, err := svc.ReconcileImages(ad.ID, []string{"1.jpg", "2.jpg", "3.jpg"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	// The record is untouched on a rejected reconcile.
	got, _ := records.FindByID(ad.ID)
	if len(got.Images) != 0 {
		t.Errorf("rejected reconcile modified the record: %v", got.Images)
	}
	if len(files.sorted()) != 0 {
		t.Errorf("rejected reconcile deleted files: %v", files.sorted())
	}
}

func TestDeleteImageAt(t *testing.T) {
	ad := testAd("a.jpg", "b.jpg", "c.jpg")
	records := newFakeRecords(ad)
	svc, files := newTestService(records)

	got, err := svc.DeleteImageAt(ad.ID, 1)
	if err != nil {
		t.Fatalf("DeleteImageAt: %v", err)
	}
	if !equalStrings(got.Images, []string{"a.jpg", "c.jpg"}) {
		t.Errorf("images = %v, want [a.jpg c.jpg]", got.Images)
	}
	if want := []string{"b.jpg", "b_thumb.jpg"}; !equalStrings(files.sorted(), want) {
		t.Errorf("deleted %v, want exactly %v", files.sorted(), want)
	}
}

func TestDeleteImageAtOutOfRange(t *testing.T) {
	ad := testAd("a.jpg")
	records := newFakeRecords(ad)
	svc, files := newTestService(records)

	for _, index := range []int{-1, 1, 99} {
		if _, err := svc.DeleteImageAt(ad.ID, index); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("DeleteImageAt(%d) err = %v, want ErrInvalidInput", index, err)
		}
	}

	got, _ := records.FindByID(ad.ID)
	if !equalStrings(got.Images, []string{"a.jpg"}) {
		t.Errorf("out-of-range delete modified images: %v", got.Images)
	}
	if len(files.sorted()) != 0 {
		t.Errorf("out-of-range delete removed files: %v", files.sorted())
	}
}

func TestHardDelete(t *testing.T) {
	ad := testAd("a.jpg", "b.jpg")
	records := newFakeRecords(ad)
	svc, files := newTestService(records)

	if err := svc.HardDelete(ad.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}
	if got, _ := records.FindByID(ad.ID); got != nil {
		t.Errorf("record still present after hard delete")
	}

	// Originals and their thumbnails are both removed.
	want := []string{"a.jpg", "a_thumb.jpg", "b.jpg", "b_thumb.jpg"}
	if !equalStrings(files.sorted(), want) {
		t.Errorf("deleted %v, want %v", files.sorted(), want)
	}
}

func TestHardDeleteUnknownAd(t *testing.T) {
	svc, _ := newTestService(newFakeRecords())
	if err := svc.HardDelete(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListForReviewIsFIFO(t *testing.T) {
	oldest := testAd()
	oldest.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	middle := testAd()
	middle.CreatedAt = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	newest := testAd()
	newest.CreatedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	records := newFakeRecords(newest, oldest, middle)
	svc, _ := newTestService(records)

	got, err := svc.ListForReview(nil, nil, 10)
	if err != nil {
		t.Fatalf("ListForReview: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d ads, want 3", len(got))
	}
	if got[0].ID != oldest.ID || got[2].ID != newest.ID {
		t.Errorf("queue is not oldest-first")
	}
}

func TestListForReviewIncludesDeleted(t *testing.T) {
	deleted := testAd()
	deleted.IsDeleted = true
	records := newFakeRecords(deleted)
	svc, _ := newTestService(records)

	got, err := svc.ListForReview(nil, nil, 10)
	if err != nil {
		t.Fatalf("ListForReview: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("soft-deleted ad missing from the admin view")
	}
}
