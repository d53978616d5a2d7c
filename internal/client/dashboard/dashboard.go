// Package dashboard is the admin table controller. It owns the view state
// (search, filter, sort, page), talks to a userdata source, and exposes the
// loading and error flags a frontend renders from. Searches are debounced and
// every fetch carries a generation number so a slow response never overwrites
// a newer one.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusreg/student-registry/internal/client/userdata"
	"github.com/campusreg/student-registry/internal/client/view"
	"github.com/campusreg/student-registry/internal/core/domain"
)

// Dashboard drives the user table. All exported methods are safe for
// concurrent use; the source is called outside the lock so a slow network
// never blocks state reads.
type Dashboard struct {
	mu       sync.Mutex
	source   userdata.Source
	notifier Notifier
	log      zerolog.Logger
	debounce *view.Debouncer

	state  view.State
	result *userdata.ListResult
	err    error

	gen        uint64
	loading    bool
	refreshing bool
	closed     bool

	draft         *Draft
	pendingDelete *domain.User
}

// Draft holds an edit in progress. Fields start as copies of the record and
// the commit only sends what actually changed.
type Draft struct {
	original    domain.User
	FirstName   string
	LastName    string
	Email       string
	DateOfBirth time.Time
	Role        string
	Course      string
	Status      string
}

// ID identifies the record being edited.
func (d *Draft) ID() string { return d.original.ID }

type Option func(*Dashboard)

// WithDebounce overrides the search debounce period, mainly for tests.
func WithDebounce(d time.Duration) Option {
	return func(db *Dashboard) { db.debounce = view.NewDebouncer(d) }
}

func New(source userdata.Source, notifier Notifier, log zerolog.Logger, opts ...Option) *Dashboard {
	d := &Dashboard{
		source:   source,
		notifier: notifier,
		log:      log,
		debounce: view.NewDebouncer(view.DefaultDebounce),
		state:    view.DefaultState(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Snapshot is a consistent read of everything a renderer needs.
type Snapshot struct {
	State      view.State
	Result     *userdata.ListResult
	Err        error
	Loading    bool
	Refreshing bool
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		State:      d.state,
		Result:     d.result,
		Err:        d.err,
		Loading:    d.loading,
		Refreshing: d.refreshing,
	}
}

// Refresh fetches the current page. While data is already on screen the
// refreshing flag is raised instead of loading, so the table does not blank
// out during background updates.
func (d *Dashboard) Refresh(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.gen++
	gen := d.gen
	if d.result == nil {
		d.loading = true
	} else {
		d.refreshing = true
	}
	q := queryFromState(d.state)
	d.mu.Unlock()

	res, err := d.source.List(ctx, q)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		// a newer fetch started while this one was in flight
		d.log.Debug().Uint64("gen", gen).Msg("discarding stale list response")
		return
	}
	d.loading = false
	d.refreshing = false
	if err != nil {
		d.err = err
		d.log.Error().Err(err).Msg("user list fetch failed")
		return
	}
	d.err = nil
	d.result = res
}

func queryFromState(s view.State) userdata.ListQuery {
	return userdata.ListQuery{
		Search:    s.Search,
		Role:      s.Role,
		SortBy:    s.SortBy,
		SortOrder: s.SortOrder,
		Page:      s.Page,
		Limit:     s.PageSize,
	}
}

// SetSearch records the search text and schedules a debounced refresh on
// page 1. Rapid keystrokes collapse into one fetch.
func (d *Dashboard) SetSearch(ctx context.Context, text string) {
	d.mu.Lock()
	d.state.Search = text
	d.mu.Unlock()

	d.debounce.Trigger(func() {
		d.mu.Lock()
		d.state.Page = 1
		d.mu.Unlock()
		d.Refresh(ctx)
	})
}

// SetRole filters by role immediately, resetting to page 1.
func (d *Dashboard) SetRole(ctx context.Context, role string) {
	d.mu.Lock()
	d.state.Role = role
	d.state.Page = 1
	d.mu.Unlock()
	d.Refresh(ctx)
}

// SetSort sorts by the given key. Selecting the active key toggles direction;
// a new key starts ascending. Sorting resets to page 1.
func (d *Dashboard) SetSort(ctx context.Context, key string) {
	d.mu.Lock()
	if d.state.SortBy == key {
		if d.state.SortOrder == view.OrderAscending {
			d.state.SortOrder = view.OrderDescending
		} else {
			d.state.SortOrder = view.OrderAscending
		}
	} else {
		d.state.SortBy = key
		d.state.SortOrder = view.OrderAscending
	}
	d.state.Page = 1
	d.mu.Unlock()
	d.Refresh(ctx)
}

// ApplyState replaces the whole view state at once and fetches, used to
// restore a bookmarked view.
func (d *Dashboard) ApplyState(ctx context.Context, s view.State) {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.PageSize <= 0 {
		s.PageSize = view.DefaultPageSize
	}
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
	d.Refresh(ctx)
}

// SetPage jumps to a page immediately.
func (d *Dashboard) SetPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	d.mu.Lock()
	d.state.Page = page
	d.mu.Unlock()
	d.Refresh(ctx)
}

// CreateUser submits a new user and refreshes on success.
func (d *Dashboard) CreateUser(ctx context.Context, input userdata.CreateInput) error {
	d.notify(LevelInfo, fmt.Sprintf("Creating %s %s...", input.FirstName, input.LastName))
	u, err := d.source.Create(ctx, input)
	if err != nil {
		d.notify(LevelError, fmt.Sprintf("Could not create user: %v", err))
		return err
	}
	d.notify(LevelSuccess, fmt.Sprintf("Created %s (%s)", u.FullName(), u.RegistrationNumber))
	d.Refresh(ctx)
	return nil
}

// BeginEdit opens a draft for a user on the current page.
func (d *Dashboard) BeginEdit(id string) (*Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u := d.findLocked(id)
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	d.draft = &Draft{
		original:    *u,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		DateOfBirth: u.DateOfBirth,
		Role:        u.Role,
		Course:      u.Course,
		Status:      u.Status,
	}
	return d.draft, nil
}

// CommitEdit sends the draft's changed fields. A draft with no changes is
// dropped without a network call.
func (d *Dashboard) CommitEdit(ctx context.Context) error {
	d.mu.Lock()
	draft := d.draft
	d.draft = nil
	d.mu.Unlock()

	if draft == nil {
		return fmt.Errorf("%w: no edit in progress", domain.ErrValidation)
	}

	input, changed := draft.diff()
	if !changed {
		d.notify(LevelInfo, "No changes to save")
		return nil
	}

	d.notify(LevelInfo, fmt.Sprintf("Saving %s...", draft.original.FullName()))
	if _, err := d.source.Update(ctx, draft.ID(), input); err != nil {
		d.notify(LevelError, fmt.Sprintf("Could not update %s: %v", draft.original.FullName(), err))
		return err
	}
	d.notify(LevelSuccess, fmt.Sprintf("Updated %s", draft.original.FullName()))
	d.Refresh(ctx)
	return nil
}

// CancelEdit drops the draft without saving.
func (d *Dashboard) CancelEdit() {
	d.mu.Lock()
	d.draft = nil
	d.mu.Unlock()
}

func (dr *Draft) diff() (userdata.UpdateInput, bool) {
	var input userdata.UpdateInput
	changed := false
	o := dr.original

	if dr.FirstName != o.FirstName {
		input.FirstName = &dr.FirstName
		changed = true
	}
	if dr.LastName != o.LastName {
		input.LastName = &dr.LastName
		changed = true
	}
	if dr.Email != o.Email {
		input.Email = &dr.Email
		changed = true
	}
	if !dr.DateOfBirth.Equal(o.DateOfBirth) {
		dob := dr.DateOfBirth
		input.DateOfBirth = &dob
		changed = true
	}
	if dr.Role != o.Role {
		input.Role = &dr.Role
		changed = true
	}
	if dr.Course != o.Course {
		input.Course = &dr.Course
		changed = true
	}
	if dr.Status != o.Status {
		input.Status = &dr.Status
		changed = true
	}
	return input, changed
}

// RequestDelete marks a user for deletion, pending confirmation.
func (d *Dashboard) RequestDelete(id string) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u := d.findLocked(id)
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	d.pendingDelete = &cp
	return &cp, nil
}

// ConfirmDelete deletes the marked user. Nothing is deleted without a prior
// RequestDelete.
func (d *Dashboard) ConfirmDelete(ctx context.Context) error {
	d.mu.Lock()
	target := d.pendingDelete
	d.pendingDelete = nil
	d.mu.Unlock()

	if target == nil {
		return fmt.Errorf("%w: no delete pending", domain.ErrValidation)
	}

	d.notify(LevelInfo, fmt.Sprintf("Deleting %s...", target.FullName()))
	if err := d.source.Delete(ctx, target.ID); err != nil {
		d.notify(LevelError, fmt.Sprintf("Could not delete %s: %v", target.FullName(), err))
		return err
	}
	d.notify(LevelSuccess, fmt.Sprintf("Deleted %s", target.FullName()))
	d.Refresh(ctx)
	return nil
}

// CancelDelete clears the pending deletion.
func (d *Dashboard) CancelDelete() {
	d.mu.Lock()
	d.pendingDelete = nil
	d.mu.Unlock()
}

// PendingDelete reports the user awaiting confirmation, if any.
func (d *Dashboard) PendingDelete() *domain.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingDelete
}

// Close cancels pending debounced work and invalidates in-flight fetches.
func (d *Dashboard) Close() {
	d.debounce.Stop()
	d.mu.Lock()
	d.closed = true
	d.gen++
	d.mu.Unlock()
}

func (d *Dashboard) findLocked(id string) *domain.User {
	if d.result == nil {
		return nil
	}
	for _, u := range d.result.Items {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (d *Dashboard) notify(level Level, msg string) {
	if d.notifier != nil {
		d.notifier.Notify(Notification{Level: level, Message: msg})
	}
}
