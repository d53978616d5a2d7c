package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusreg/student-registry/internal/client/userdata"
	"github.com/campusreg/student-registry/internal/client/view"
	"github.com/campusreg/student-registry/internal/core/domain"
)

type scriptedSource struct {
	mu      sync.Mutex
	queries []userdata.ListQuery

	listFn   func(q userdata.ListQuery) (*userdata.ListResult, error)
	createFn func(input userdata.CreateInput) (*domain.User, error)
	updateFn func(id string, input userdata.UpdateInput) (*domain.User, error)
	deleteFn func(id string) error
}

func (s *scriptedSource) List(_ context.Context, q userdata.ListQuery) (*userdata.ListResult, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	if s.listFn != nil {
		return s.listFn(q)
	}
	return &userdata.ListResult{Page: q.Page, Limit: q.Limit}, nil
}

func (s *scriptedSource) Create(_ context.Context, input userdata.CreateInput) (*domain.User, error) {
	if s.createFn != nil {
		return s.createFn(input)
	}
	return &domain.User{ID: "new", FirstName: input.FirstName, LastName: input.LastName}, nil
}

func (s *scriptedSource) Update(_ context.Context, id string, input userdata.UpdateInput) (*domain.User, error) {
	if s.updateFn != nil {
		return s.updateFn(id, input)
	}
	return &domain.User{ID: id}, nil
}

func (s *scriptedSource) Delete(_ context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(id)
	}
	return nil
}

func (s *scriptedSource) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *scriptedSource) lastQuery() userdata.ListQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func demoResult() *userdata.ListResult {
	return &userdata.ListResult{
		Items: []*domain.User{
			{ID: "u-1", FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com",
				RegistrationNumber: "REG-1002-2025", Role: domain.RoleStudent, Course: "Mathematics"},
			{ID: "u-2", FirstName: "John", LastName: "Doe", Email: "john.doe@example.com",
				RegistrationNumber: "REG-1001-2025", Role: domain.RoleStudent},
		},
		Total: 2, Page: 1, Limit: 5, TotalPages: 1,
	}
}

func newTestDashboard(src userdata.Source) (*Dashboard, *ToastQueue) {
	toasts := &ToastQueue{}
	d := New(src, toasts, zerolog.Nop(), WithDebounce(20*time.Millisecond))
	return d, toasts
}

func TestDashboard_RefreshPopulatesResult(t *testing.T) {
	src := &scriptedSource{listFn: func(userdata.ListQuery) (*userdata.ListResult, error) {
		return demoResult(), nil
	}}
	d, _ := newTestDashboard(src)

	d.Refresh(context.Background())

	snap := d.Snapshot()
	if snap.Err != nil {
		t.Fatalf("unexpected error: %v", snap.Err)
	}
	if snap.Loading || snap.Refreshing {
		t.Fatalf("flags must clear after fetch: %+v", snap)
	}
	if snap.Result == nil || snap.Result.Total != 2 {
		t.Fatalf("result not stored: %+v", snap.Result)
	}
	if q := src.lastQuery(); q.SortBy != view.SortByCreatedAt || q.SortOrder != view.OrderDescending {
		t.Fatalf("default sort not sent: %+v", q)
	}
}

func TestDashboard_LoadingThenRefreshingFlags(t *testing.T) {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	src := &scriptedSource{listFn: func(userdata.ListQuery) (*userdata.ListResult, error) {
		entered <- struct{}{}
		<-release
		return demoResult(), nil
	}}
	d, _ := newTestDashboard(src)

	done := make(chan struct{})
	go func() {
		d.Refresh(context.Background())
		close(done)
	}()

	<-entered
	if snap := d.Snapshot(); !snap.Loading || snap.Refreshing {
		t.Fatalf("first fetch must raise loading, got %+v", snap)
	}
	release <- struct{}{}
	<-done

	done = make(chan struct{})
	go func() {
		d.Refresh(context.Background())
		close(done)
	}()

	<-entered
	if snap := d.Snapshot(); snap.Loading || !snap.Refreshing {
		t.Fatalf("fetch with data on screen must raise refreshing, got %+v", snap)
	}
	release <- struct{}{}
	<-done
}

func TestDashboard_FetchErrorSurfacesAndClears(t *testing.T) {
	fail := true
	src := &scriptedSource{listFn: func(userdata.ListQuery) (*userdata.ListResult, error) {
		if fail {
			return nil, domain.ErrNetworkUnavailable
		}
		return demoResult(), nil
	}}
	d, _ := newTestDashboard(src)

	d.Refresh(context.Background())
	if snap := d.Snapshot(); !errors.Is(snap.Err, domain.ErrNetworkUnavailable) {
		t.Fatalf("expected fetch error in snapshot, got %v", snap.Err)
	}

	fail = false
	d.Refresh(context.Background())
	if snap := d.Snapshot(); snap.Err != nil {
		t.Fatalf("error must clear on the next successful fetch, got %v", snap.Err)
	}
}

func TestDashboard_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	first := true
	src := &scriptedSource{listFn: func(q userdata.ListQuery) (*userdata.ListResult, error) {
		if first {
			first = false
			entered <- struct{}{}
			<-release // hold the first response until a newer one lands
			return &userdata.ListResult{Page: 1, Total: 100}, nil
		}
		return &userdata.ListResult{Page: q.Page, Total: 2}, nil
	}}
	d, _ := newTestDashboard(src)

	done := make(chan struct{})
	go func() {
		d.Refresh(context.Background())
		close(done)
	}()
	<-entered

	d.SetPage(context.Background(), 2)

	close(release)
	<-done

	snap := d.Snapshot()
	if snap.Result.Page != 2 || snap.Result.Total != 2 {
		t.Fatalf("stale response overwrote newer data: %+v", snap.Result)
	}
}

func TestDashboard_SearchDebounced(t *testing.T) {
	src := &scriptedSource{}
	d, _ := newTestDashboard(src)
	ctx := context.Background()

	d.SetSearch(ctx, "j")
	d.SetSearch(ctx, "ja")
	d.SetSearch(ctx, "jane")

	time.Sleep(100 * time.Millisecond)

	if n := src.queryCount(); n != 1 {
		t.Fatalf("rapid keystrokes must collapse into one fetch, got %d", n)
	}
	q := src.lastQuery()
	if q.Search != "jane" || q.Page != 1 {
		t.Fatalf("expected final text on page 1, got %+v", q)
	}
}

func TestDashboard_SortTogglesDirection(t *testing.T) {
	src := &scriptedSource{}
	d, _ := newTestDashboard(src)
	ctx := context.Background()

	d.SetPage(ctx, 3)

	d.SetSort(ctx, view.SortByName)
	q := src.lastQuery()
	if q.SortBy != view.SortByName || q.SortOrder != view.OrderAscending || q.Page != 1 {
		t.Fatalf("new sort key must start ascending on page 1: %+v", q)
	}

	d.SetSort(ctx, view.SortByName)
	if q = src.lastQuery(); q.SortOrder != view.OrderDescending {
		t.Fatalf("same key must toggle to descending: %+v", q)
	}

	d.SetSort(ctx, view.SortByEmail)
	if q = src.lastQuery(); q.SortBy != view.SortByEmail || q.SortOrder != view.OrderAscending {
		t.Fatalf("switching key must reset to ascending: %+v", q)
	}
}

func TestDashboard_RoleFilterResetsPage(t *testing.T) {
	src := &scriptedSource{}
	d, _ := newTestDashboard(src)
	ctx := context.Background()

	d.SetPage(ctx, 2)
	d.SetRole(ctx, domain.RoleAdmin)

	q := src.lastQuery()
	if q.Role != domain.RoleAdmin || q.Page != 1 {
		t.Fatalf("role filter must reset to page 1: %+v", q)
	}
}

func TestDashboard_EditCommitSendsOnlyChanges(t *testing.T) {
	var gotID string
	var gotInput userdata.UpdateInput
	src := &scriptedSource{
		listFn: func(userdata.ListQuery) (*userdata.ListResult, error) { return demoResult(), nil },
		updateFn: func(id string, input userdata.UpdateInput) (*domain.User, error) {
			gotID, gotInput = id, input
			return &domain.User{ID: id}, nil
		},
	}
	d, toasts := newTestDashboard(src)
	ctx := context.Background()
	d.Refresh(ctx)

	draft, err := d.BeginEdit("u-1")
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	draft.FirstName = "Janet"
	draft.Course = "Statistics"

	if err := d.CommitEdit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if gotID != "u-1" {
		t.Fatalf("wrong id: %s", gotID)
	}
	if gotInput.FirstName == nil || *gotInput.FirstName != "Janet" {
		t.Fatalf("changed field not sent: %+v", gotInput)
	}
	if gotInput.Course == nil || *gotInput.Course != "Statistics" {
		t.Fatalf("changed field not sent: %+v", gotInput)
	}
	if gotInput.LastName != nil || gotInput.Email != nil || gotInput.Role != nil {
		t.Fatalf("unchanged fields must stay nil: %+v", gotInput)
	}

	active := toasts.Active()
	if len(active) == 0 || active[len(active)-1].Level != LevelSuccess {
		t.Fatalf("expected success toast, got %+v", active)
	}
}

func TestDashboard_CommitWithoutChangesSkipsUpdate(t *testing.T) {
	updates := 0
	src := &scriptedSource{
		listFn:   func(userdata.ListQuery) (*userdata.ListResult, error) { return demoResult(), nil },
		updateFn: func(string, userdata.UpdateInput) (*domain.User, error) { updates++; return nil, nil },
	}
	d, toasts := newTestDashboard(src)
	ctx := context.Background()
	d.Refresh(ctx)

	if _, err := d.BeginEdit("u-1"); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if err := d.CommitEdit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if updates != 0 {
		t.Fatalf("no-change commit must not call update")
	}
	active := toasts.Active()
	if len(active) != 1 || active[0].Level != LevelInfo {
		t.Fatalf("expected info toast, got %+v", active)
	}
}

func TestDashboard_EditLifecycleGuards(t *testing.T) {
	src := &scriptedSource{listFn: func(userdata.ListQuery) (*userdata.ListResult, error) { return demoResult(), nil }}
	d, _ := newTestDashboard(src)
	ctx := context.Background()
	d.Refresh(ctx)

	if _, err := d.BeginEdit("missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown id, got %v", err)
	}

	if _, err := d.BeginEdit("u-1"); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	d.CancelEdit()
	if err := d.CommitEdit(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("commit after cancel must fail, got %v", err)
	}
}

func TestDashboard_DeleteRequiresConfirmation(t *testing.T) {
	deleted := []string{}
	src := &scriptedSource{
		listFn:   func(userdata.ListQuery) (*userdata.ListResult, error) { return demoResult(), nil },
		deleteFn: func(id string) error { deleted = append(deleted, id); return nil },
	}
	d, toasts := newTestDashboard(src)
	ctx := context.Background()
	d.Refresh(ctx)

	if err := d.ConfirmDelete(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("confirm without request must fail, got %v", err)
	}

	u, err := d.RequestDelete("u-2")
	if err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if u.FullName() != "John Doe" {
		t.Fatalf("wrong target: %s", u.FullName())
	}
	if d.PendingDelete() == nil {
		t.Fatalf("pending delete not recorded")
	}

	d.CancelDelete()
	if d.PendingDelete() != nil {
		t.Fatalf("cancel must clear the pending delete")
	}
	if len(deleted) != 0 {
		t.Fatalf("nothing may be deleted before confirmation")
	}

	if _, err := d.RequestDelete("u-2"); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if err := d.ConfirmDelete(ctx); err != nil {
		t.Fatalf("confirm delete: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "u-2" {
		t.Fatalf("unexpected deletions: %v", deleted)
	}

	active := toasts.Active()
	if len(active) == 0 || !strings.Contains(active[len(active)-1].Message, "John Doe") {
		t.Fatalf("expected deletion toast naming the user, got %+v", active)
	}
}

func TestDashboard_DeleteFailureKeepsNotification(t *testing.T) {
	src := &scriptedSource{
		listFn:   func(userdata.ListQuery) (*userdata.ListResult, error) { return demoResult(), nil },
		deleteFn: func(string) error { return domain.ErrUserNotFound },
	}
	d, toasts := newTestDashboard(src)
	ctx := context.Background()
	d.Refresh(ctx)

	if _, err := d.RequestDelete("u-1"); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if err := d.ConfirmDelete(ctx); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected delete failure to surface, got %v", err)
	}

	active := toasts.Active()
	if len(active) == 0 || active[len(active)-1].Level != LevelError {
		t.Fatalf("expected error toast, got %+v", active)
	}
}

func TestDashboard_CreateUserNotifies(t *testing.T) {
	src := &scriptedSource{createFn: func(input userdata.CreateInput) (*domain.User, error) {
		return &domain.User{
			ID: "new", FirstName: input.FirstName, LastName: input.LastName,
			RegistrationNumber: "REG-1006-2025",
		}, nil
	}}
	d, toasts := newTestDashboard(src)

	err := d.CreateUser(context.Background(), userdata.CreateInput{FirstName: "Emma", LastName: "Wilson"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	active := toasts.Active()
	if len(active) != 2 || active[0].Level != LevelInfo || active[1].Level != LevelSuccess {
		t.Fatalf("expected pending then success toasts, got %+v", active)
	}
	if !strings.Contains(active[1].Message, "REG-1006-2025") {
		t.Fatalf("toast should name the new registration number: %s", active[1].Message)
	}
}

func TestDashboard_ApplyStateRestoresView(t *testing.T) {
	src := &scriptedSource{}
	d, _ := newTestDashboard(src)

	d.ApplyState(context.Background(), view.State{
		Search:    "jane",
		Role:      domain.RoleStudent,
		SortBy:    view.SortByEmail,
		SortOrder: view.OrderAscending,
		Page:      2,
		PageSize:  10,
	})

	q := src.lastQuery()
	if q.Search != "jane" || q.Role != domain.RoleStudent || q.SortBy != view.SortByEmail || q.Page != 2 || q.Limit != 10 {
		t.Fatalf("restored state not sent: %+v", q)
	}

	d.ApplyState(context.Background(), view.State{})
	if q = src.lastQuery(); q.Page != 1 || q.Limit != view.DefaultPageSize {
		t.Fatalf("empty state must normalize pagination: %+v", q)
	}
}

func TestDashboard_CloseCancelsPendingSearch(t *testing.T) {
	src := &scriptedSource{}
	d, _ := newTestDashboard(src)

	d.SetSearch(context.Background(), "jane")
	d.Close()

	time.Sleep(100 * time.Millisecond)

	if n := src.queryCount(); n != 0 {
		t.Fatalf("closed dashboard must not fetch, got %d queries", n)
	}
}
