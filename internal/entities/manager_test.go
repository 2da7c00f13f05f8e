package entities

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/openjournals/backissue/internal/model"
	"github.com/openjournals/backissue/internal/repo"
)

func setupManager(t *testing.T) (*Manager, *repo.DB, *model.Journal) {
	t.Helper()
	db, err := repo.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	j := &model.Journal{Path: "actaex", Title: "Acta Exemplaria", Locale: "en_US"}
	if err := db.CreateJournal(context.Background(), j); err != nil {
		t.Fatalf("CreateJournal: %v", err)
	}
	return NewManager(db, j, nil), db, j
}

func sectionBuilder(j *model.Journal, title string) func() *model.Section {
	return func() *model.Section {
		return &model.Section{Journal: j.ID, Title: title, Locale: j.Locale}
	}
}

func issueBuilder(j *model.Journal, volume int, number string) func() *model.Issue {
	return func() *model.Issue {
		return &model.Issue{Journal: j.ID, Volume: volume, Number: number, Published: true}
	}
}

func TestAtMostOneCreationPerKey(t *testing.T) {
	m, db, j := setupManager(t)
	ctx := context.Background()

	// Five articles all referencing issue (3, "2") and the same section.
	var issueIDs []int64
	for i := 0; i < 5; i++ {
		is, err := m.Issue(ctx, 3, "2", issueBuilder(j, 3, "2"))
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		issueIDs = append(issueIDs, is.ID)

		if _, err := m.Section(ctx, "Articles", "en_US", sectionBuilder(j, "Articles")); err != nil {
			t.Fatalf("Section: %v", err)
		}
		m.Commit()
	}

	for _, id := range issueIDs {
		if id != issueIDs[0] {
			t.Errorf("issue handles differ: %v", issueIDs)
			break
		}
	}
	n, err := db.CountRows(ctx, "issues")
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if n != 1 {
		t.Errorf("issue rows = %d, want 1", n)
	}
	n, _ = db.CountRows(ctx, "sections")
	if n != 1 {
		t.Errorf("section rows = %d, want 1", n)
	}
}

func TestResolveFallsBackToStore(t *testing.T) {
	m, db, j := setupManager(t)
	ctx := context.Background()

	// Pre-existing section, not created through this manager.
	pre := &model.Section{Journal: j.ID, Title: "Reviews", Locale: "en_US"}
	if err := db.CreateSection(ctx, pre); err != nil {
		t.Fatalf("CreateSection: %v", err)
	}

	s, err := m.Section(ctx, "Reviews", "en_US", func() *model.Section {
		t.Fatal("builder must not run for a store hit")
		return nil
	})
	if err != nil {
		t.Fatalf("Section: %v", err)
	}
	if s.ID != pre.ID {
		t.Errorf("resolved id %d, want %d", s.ID, pre.ID)
	}
	if m.Tracked() != 0 {
		t.Errorf("store hit tracked %d entities, want 0", m.Tracked())
	}
}

func TestRollbackDeletesOnlyTrackedEntities(t *testing.T) {
	m, db, j := setupManager(t)
	ctx := context.Background()

	// A pre-existing section resolved from the store must survive rollback.
	pre := &model.Section{Journal: j.ID, Title: "Reviews", Locale: "en_US"}
	if err := db.CreateSection(ctx, pre); err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if _, err := m.Section(ctx, "Reviews", "en_US", sectionBuilder(j, "Reviews")); err != nil {
		t.Fatalf("Section: %v", err)
	}

	// Newly created this invocation: one section, one issue.
	if _, err := m.Section(ctx, "Articles", "en_US", sectionBuilder(j, "Articles")); err != nil {
		t.Fatalf("Section: %v", err)
	}
	if _, err := m.Issue(ctx, 1, "1", issueBuilder(j, 1, "1")); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.Rollback(ctx)

	if n, _ := db.CountRows(ctx, "issues"); n != 0 {
		t.Errorf("issue rows after rollback = %d, want 0", n)
	}
	if n, _ := db.CountRows(ctx, "sections"); n != 1 {
		t.Errorf("section rows after rollback = %d, want 1 (pre-existing)", n)
	}
	if got, _ := db.FindSection(ctx, j.ID, "Reviews", "en_US"); got == nil {
		t.Error("pre-existing section was deleted by rollback")
	}

	// The cache no longer references the deleted entities: the next
	// resolution creates fresh rows without conflicts.
	s, err := m.Section(ctx, "Articles", "en_US", sectionBuilder(j, "Articles"))
	if err != nil {
		t.Fatalf("Section after rollback: %v", err)
	}
	if s.ID == 0 {
		t.Error("re-created section has no ID")
	}
	is, err := m.Issue(ctx, 1, "1", issueBuilder(j, 1, "1"))
	if err != nil {
		t.Fatalf("Issue after rollback: %v", err)
	}
	if is.ID == 0 {
		t.Error("re-created issue has no ID")
	}
}

func TestCommitKeepsEntities(t *testing.T) {
	m, db, _ := setupManager(t)
	ctx := context.Background()

	j, _ := db.JournalByPath(ctx, "actaex")
	if _, err := m.Issue(ctx, 2, "1", issueBuilder(j, 2, "1")); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	m.Commit()
	m.Rollback(ctx) // nothing tracked anymore

	if n, _ := db.CountRows(ctx, "issues"); n != 1 {
		t.Errorf("issue rows = %d, want 1 (committed entity kept)", n)
	}
}

func TestTrackSubmissionRollback(t *testing.T) {
	m, db, j := setupManager(t)
	ctx := context.Background()

	sub := &model.Submission{Journal: j.ID, Status: model.StatusQueued,
		PubIDs: map[string]string{model.PubIDPublisher: "x1"}}
	if err := db.CreateSubmission(ctx, sub); err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	m.TrackSubmission(sub.ID)
	m.Rollback(ctx)

	found, err := db.FindSubmissionByPubID(ctx, j.ID, model.PubIDPublisher, "x1")
	if err != nil {
		t.Fatalf("FindSubmissionByPubID: %v", err)
	}
	if found != nil {
		t.Error("tracked submission survived rollback")
	}
}

func TestRollbackSwallowsDeletionFailures(t *testing.T) {
	m, db, j := setupManager(t)
	ctx := context.Background()

	if _, err := m.Issue(ctx, 1, "1", issueBuilder(j, 1, "1")); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	// Closing the store makes every deletion fail; Rollback must not
	// panic or return an error, just log and clear.
	db.Close()
	m.Rollback(ctx)

	if m.Tracked() != 0 {
		t.Errorf("tracked = %d after rollback, want 0", m.Tracked())
	}
}
