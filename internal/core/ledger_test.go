package core_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/colo/internal/core"
	"github.com/JonMunkholm/colo/internal/store/memory"
)

// ============================================================================
// Helpers
// ============================================================================

func newTestService(t testing.TB) (*core.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return core.NewService(store, core.ServiceConfig{}), store
}

func createSession(t testing.TB, svc *core.Service, name string) int64 {
	t.Helper()
	sess, err := svc.CreateSession(context.Background(), core.SessionRequest{
		Name:      name,
		StartDate: time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		Location:  "Les Karellis",
	})
	if err != nil {
		t.Fatalf("CreateSession(%q) error = %v", name, err)
	}
	return sess.ID
}

func emma() core.ChildRequest {
	return core.ChildRequest{
		Surname:     "Martin",
		GivenName:   "Emma",
		Sex:         core.SexFemale,
		BirthDate:   time.Date(2014, 3, 15, 0, 0, 0, 0, time.UTC),
		SchoolLevel: core.LevelCP,
	}
}

func lucas() core.ChildRequest {
	return core.ChildRequest{
		Surname:     "Bernard",
		GivenName:   "Lucas",
		Sex:         core.SexMale,
		BirthDate:   time.Date(2013, 11, 2, 0, 0, 0, 0, time.UTC),
		SchoolLevel: core.LevelCE1,
	}
}

func enroll(t *testing.T, svc *core.Service, sessionID int64, req core.ChildRequest) core.ChildView {
	t.Helper()
	v, err := svc.Enroll(context.Background(), sessionID, req)
	if err != nil {
		t.Fatalf("Enroll(%d, %s %s) error = %v", sessionID, req.GivenName, req.Surname, err)
	}
	return v
}

func childExists(t *testing.T, store *memory.Store, id int64) bool {
	t.Helper()
	c, err := store.GetChild(context.Background(), id)
	if err != nil {
		t.Fatalf("GetChild(%d) error = %v", id, err)
	}
	return c != nil
}

func membershipCount(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	n, err := store.CountByChild(context.Background(), id)
	if err != nil {
		t.Fatalf("CountByChild(%d) error = %v", id, err)
	}
	return n
}

func wantKind(t *testing.T, err error, kind core.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want kind %v", kind)
	}
	if got := core.KindOf(err); got != kind {
		t.Fatalf("KindOf(%v) = %v, want %v", err, got, kind)
	}
}

// ============================================================================
// Enroll
// ============================================================================

func TestEnroll_CreatesChildAndMembership(t *testing.T) {
	svc, store := newTestService(t)
	s1 := createSession(t, svc, "Été 1")

	v := enroll(t, svc, s1, emma())

	if v.ID == 0 {
		t.Fatal("child ID = 0")
	}
	if v.BirthDate != "2014-03-15" {
		t.Errorf("BirthDate = %q, want 2014-03-15", v.BirthDate)
	}
	if n := membershipCount(t, store, v.ID); n != 1 {
		t.Errorf("membership count = %d, want 1", n)
	}
}

func TestEnroll_SessionNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Enroll(context.Background(), 42, emma())
	wantKind(t, err, core.KindNotFound)
}

func TestEnroll_DuplicateIsConflict(t *testing.T) {
	tests := []struct {
		name     string
		req      core.ChildRequest
		wantWord string
	}{
		{name: "girl uses née", req: emma(), wantWord: "Emma Martin née le 15/03/2014"},
		{name: "boy uses né", req: lucas(), wantWord: "Lucas Bernard né le 02/11/2013"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			s1 := createSession(t, svc, "Été 1")
			enroll(t, svc, s1, tt.req)

			_, err := svc.Enroll(context.Background(), s1, tt.req)
			wantKind(t, err, core.KindConflict)

			msg := core.MessageOf(err)
			if !strings.Contains(msg, "existe déjà") {
				t.Errorf("message %q does not contain %q", msg, "existe déjà")
			}
			if !strings.Contains(msg, tt.wantWord) {
				t.Errorf("message %q does not contain %q", msg, tt.wantWord)
			}
		})
	}
}

func TestEnroll_ReusesChildAcrossSessions(t *testing.T) {
	svc, store := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	s2 := createSession(t, svc, "Été 2")

	first := enroll(t, svc, s1, emma())
	second := enroll(t, svc, s2, emma())

	if first.ID != second.ID {
		t.Errorf("second enrollment child ID = %d, want %d", second.ID, first.ID)
	}
	if n := membershipCount(t, store, first.ID); n != 2 {
		t.Errorf("membership count = %d, want 2", n)
	}
}

func TestEnroll_IdentityIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")

	a := enroll(t, svc, s1, emma())
	req := emma()
	req.Surname = "MARTIN"
	b := enroll(t, svc, s1, req)

	if a.ID == b.ID {
		t.Error("names differing in case matched the same child")
	}
}

func TestEnroll_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.ChildRequest)
	}{
		{name: "missing surname", mutate: func(r *core.ChildRequest) { r.Surname = "" }},
		{name: "missing given name", mutate: func(r *core.ChildRequest) { r.GivenName = "" }},
		{name: "unknown sex", mutate: func(r *core.ChildRequest) { r.Sex = "X" }},
		{name: "zero birth date", mutate: func(r *core.ChildRequest) { r.BirthDate = time.Time{} }},
		{name: "unknown level", mutate: func(r *core.ChildRequest) { r.SchoolLevel = "CM3" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			s1 := createSession(t, svc, "Été 1")
			req := emma()
			tt.mutate(&req)

			_, err := svc.Enroll(context.Background(), s1, req)
			wantKind(t, err, core.KindValidation)
		})
	}
}

// ============================================================================
// RemoveMembership
// ============================================================================

func TestRemoveMembership(t *testing.T) {
	t.Run("only membership deletes child", func(t *testing.T) {
		svc, store := newTestService(t)
		s1 := createSession(t, svc, "Été 1")
		c := enroll(t, svc, s1, emma())

		if err := svc.RemoveMembership(context.Background(), s1, c.ID); err != nil {
			t.Fatalf("RemoveMembership error = %v", err)
		}
		if childExists(t, store, c.ID) {
			t.Error("child still exists after its only membership was removed")
		}
	})

	t.Run("second membership keeps child", func(t *testing.T) {
		svc, store := newTestService(t)
		s1 := createSession(t, svc, "Été 1")
		s2 := createSession(t, svc, "Été 2")
		c := enroll(t, svc, s1, emma())
		enroll(t, svc, s2, emma())

		if err := svc.RemoveMembership(context.Background(), s1, c.ID); err != nil {
			t.Fatalf("RemoveMembership error = %v", err)
		}
		if !childExists(t, store, c.ID) {
			t.Fatal("child deleted while still enrolled in another session")
		}
		if n := membershipCount(t, store, c.ID); n != 1 {
			t.Errorf("membership count = %d, want 1", n)
		}
	})

	t.Run("missing membership", func(t *testing.T) {
		svc, _ := newTestService(t)
		s1 := createSession(t, svc, "Été 1")

		err := svc.RemoveMembership(context.Background(), s1, 99)
		wantKind(t, err, core.KindNotFound)
	})
}

// ============================================================================
// RemoveAllMemberships
// ============================================================================

func TestRemoveAllMemberships(t *testing.T) {
	svc, store := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	s2 := createSession(t, svc, "Été 2")

	shared := enroll(t, svc, s1, emma())
	enroll(t, svc, s2, emma())
	alone := enroll(t, svc, s1, lucas())

	if err := svc.RemoveAllMemberships(context.Background(), s1); err != nil {
		t.Fatalf("RemoveAllMemberships error = %v", err)
	}

	if childExists(t, store, alone.ID) {
		t.Error("child with no other session was not deleted")
	}
	if !childExists(t, store, shared.ID) {
		t.Error("child enrolled in another session was deleted")
	}

	list, err := svc.ListMemberships(context.Background(), s1)
	if err != nil {
		t.Fatalf("ListMemberships error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("session still has %d children", len(list))
	}
}

func TestRemoveAllMemberships_EmptyAndMissing(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")

	if err := svc.RemoveAllMemberships(context.Background(), s1); err != nil {
		t.Errorf("empty session error = %v, want nil", err)
	}

	err := svc.RemoveAllMemberships(context.Background(), 404)
	wantKind(t, err, core.KindNotFound)
}

// ============================================================================
// UpdateMembership
// ============================================================================

func TestUpdateMembership_InPlace(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	c := enroll(t, svc, s1, emma())

	req := emma()
	req.SchoolLevel = core.LevelCE1
	req.GivenName = "Emmy"

	v, err := svc.UpdateMembership(context.Background(), s1, c.ID, req)
	if err != nil {
		t.Fatalf("UpdateMembership error = %v", err)
	}
	if v.ID != c.ID {
		t.Errorf("ID = %d, want %d", v.ID, c.ID)
	}
	if v.GivenName != "Emmy" || v.SchoolLevel != core.LevelCE1 {
		t.Errorf("view = %+v, want updated fields", v)
	}
}

func TestUpdateMembership_SameIdentityUpdatesLevel(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	c := enroll(t, svc, s1, emma())

	req := emma()
	req.SchoolLevel = core.LevelCE2

	v, err := svc.UpdateMembership(context.Background(), s1, c.ID, req)
	if err != nil {
		t.Fatalf("UpdateMembership error = %v", err)
	}
	if v.ID != c.ID || v.SchoolLevel != core.LevelCE2 {
		t.Errorf("view = %+v, want child %d at CE2", v, c.ID)
	}
}

func TestUpdateMembership_ConflictWithChildInSession(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	a := enroll(t, svc, s1, lucas())
	enroll(t, svc, s1, emma())

	_, err := svc.UpdateMembership(context.Background(), s1, a.ID, emma())
	wantKind(t, err, core.KindConflict)
}

func TestUpdateMembership_RetargetsToExistingChild(t *testing.T) {
	svc, store := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	s2 := createSession(t, svc, "Été 2")

	x := enroll(t, svc, s2, emma())
	orig := enroll(t, svc, s1, lucas())

	v, err := svc.UpdateMembership(context.Background(), s1, orig.ID, emma())
	if err != nil {
		t.Fatalf("UpdateMembership error = %v", err)
	}
	if v.ID != x.ID {
		t.Errorf("returned child ID = %d, want matched child %d", v.ID, x.ID)
	}
	if v.GivenName != "Emma" {
		t.Errorf("returned GivenName = %q, want Emma", v.GivenName)
	}
	if childExists(t, store, orig.ID) {
		t.Error("original child left without membership was not deleted")
	}
	if n := membershipCount(t, store, x.ID); n != 2 {
		t.Errorf("matched child membership count = %d, want 2", n)
	}
}

func TestUpdateMembership_RetargetKeepsEnrolledOriginal(t *testing.T) {
	svc, store := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	s2 := createSession(t, svc, "Été 2")
	s3 := createSession(t, svc, "Été 3")

	enroll(t, svc, s3, emma())
	orig := enroll(t, svc, s1, lucas())
	enroll(t, svc, s2, lucas())

	if _, err := svc.UpdateMembership(context.Background(), s1, orig.ID, emma()); err != nil {
		t.Fatalf("UpdateMembership error = %v", err)
	}
	if !childExists(t, store, orig.ID) {
		t.Error("original child still enrolled elsewhere was deleted")
	}
}

func TestUpdateMembership_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")

	_, err := svc.UpdateMembership(context.Background(), s1, 7, emma())
	wantKind(t, err, core.KindNotFound)
}

func TestMissingTargetReportedBeforeInvalidRequest(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	invalid := emma()
	invalid.Sex = "X"
	invalid.Surname = ""

	tests := []struct {
		name string
		call func() error
	}{
		{"enroll in missing session", func() error {
			_, err := svc.Enroll(context.Background(), 404, invalid)
			return err
		}},
		{"update missing membership", func() error {
			_, err := svc.UpdateMembership(context.Background(), s1, 7, invalid)
			return err
		}},
		{"update in missing session", func() error {
			_, err := svc.UpdateMembership(context.Background(), 404, 1, invalid)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, tt.call(), core.KindNotFound)
		})
	}
}

func TestUpdateMembership_InvalidRequest(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	c := enroll(t, svc, s1, emma())

	req := emma()
	req.SchoolLevel = "CM3"
	_, err := svc.UpdateMembership(context.Background(), s1, c.ID, req)
	wantKind(t, err, core.KindValidation)
}

// ============================================================================
// Sessions
// ============================================================================

func TestListMemberships(t *testing.T) {
	svc, _ := newTestService(t)
	s1 := createSession(t, svc, "Été 1")

	list, err := svc.ListMemberships(context.Background(), s1)
	if err != nil {
		t.Fatalf("ListMemberships error = %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("empty session list = %#v, want empty non-nil slice", list)
	}

	enroll(t, svc, s1, emma())
	enroll(t, svc, s1, lucas())

	list, err = svc.ListMemberships(context.Background(), s1)
	if err != nil {
		t.Fatalf("ListMemberships error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Surname != "Bernard" || list[1].Surname != "Martin" {
		t.Errorf("order = %s, %s; want Bernard, Martin", list[0].Surname, list[1].Surname)
	}

	_, err = svc.ListMemberships(context.Background(), 404)
	wantKind(t, err, core.KindNotFound)
}

func TestDeleteSession_CollectsOrphans(t *testing.T) {
	svc, store := newTestService(t)
	s1 := createSession(t, svc, "Été 1")
	s2 := createSession(t, svc, "Été 2")

	alone := enroll(t, svc, s1, lucas())
	shared := enroll(t, svc, s1, emma())
	enroll(t, svc, s2, emma())

	if err := svc.DeleteSession(context.Background(), s1); err != nil {
		t.Fatalf("DeleteSession error = %v", err)
	}

	_, err := svc.GetSession(context.Background(), s1)
	wantKind(t, err, core.KindNotFound)

	if childExists(t, store, alone.ID) {
		t.Error("orphaned child not deleted with its session")
	}
	if !childExists(t, store, shared.ID) {
		t.Error("shared child deleted with session")
	}
}

func TestCreateSession_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateSession(context.Background(), core.SessionRequest{})
	wantKind(t, err, core.KindValidation)

	_, err = svc.CreateSession(context.Background(), core.SessionRequest{
		Name:      "Hiver",
		StartDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	wantKind(t, err, core.KindValidation)
}

// ============================================================================
// Orphan invariant
// ============================================================================

func TestOrphanInvariant_AfterMixedOperations(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	s1 := createSession(t, svc, "Été 1")
	s2 := createSession(t, svc, "Été 2")

	a := enroll(t, svc, s1, emma())
	enroll(t, svc, s2, emma())
	b := enroll(t, svc, s1, lucas())

	if _, err := svc.UpdateMembership(ctx, s2, a.ID, lucas()); err != nil {
		t.Fatalf("UpdateMembership error = %v", err)
	}
	if err := svc.RemoveAllMemberships(ctx, s1); err != nil {
		t.Fatalf("RemoveAllMemberships error = %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		exists := childExists(t, store, id)
		count := membershipCount(t, store, id)
		if exists != (count > 0) {
			t.Errorf("child %d: exists = %v with %d memberships", id, exists, count)
		}
	}
}
