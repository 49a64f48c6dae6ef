package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"conferencecentral/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	ada = domain.Identity{UserID: "u-ada", Email: "ada@example.com", DisplayName: "Ada"}
	bob = domain.Identity{UserID: "u-bob", Email: "bob@example.com", DisplayName: "Bob"}
)

// fakeTx serializes transactions with a mutex, which is enough to model SERIALIZABLE.
type fakeTx struct {
	mu    sync.Mutex
	calls int
	err   error // if set, RunInTx returns this error without calling fn
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

// conflictOnceTx aborts the first attempt of every transaction with a serialization
// failure, rolling back its writes, then runs fn again the way the Postgres transactor
// retries. Failed attempts are rolled back too.
type conflictOnceTx struct {
	mu       sync.Mutex
	confs    *fakeConferenceRepo
	profiles *fakeProfileRepo
	attempts int
	aborted  int
}

func (f *conflictOnceTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for attempt := 1; ; attempt++ {
		f.attempts++
		confs, profiles := f.confs.snapshot(), f.profiles.snapshot()
		err := fn(ctx)
		if err != nil || attempt == 1 {
			f.confs.restore(confs)
			f.profiles.restore(profiles)
		}
		if attempt == 1 {
			f.aborted++
			continue
		}
		return err
	}
}

// fakeProfileRepo is an in-memory ProfileRepository; it hands out copies like a real store.
type fakeProfileRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Profile
	getErr error
}

func newFakeProfileRepo(profiles ...*domain.Profile) *fakeProfileRepo {
	f := &fakeProfileRepo{byID: make(map[string]*domain.Profile)}
	for _, p := range profiles {
		f.byID[p.UserID] = copyProfile(p)
	}
	return f
}

func copyProfile(p *domain.Profile) *domain.Profile {
	c := *p
	c.ConferenceKeysToAttend = slices.Clone(p.ConferenceKeysToAttend)
	c.SessionWishlistKeys = slices.Clone(p.SessionWishlistKeys)
	return &c
}

func (f *fakeProfileRepo) Get(_ context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if p, ok := f.byID[userID]; ok {
		return copyProfile(p), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProfileRepo) GetForUpdate(ctx context.Context, userID string) (*domain.Profile, error) {
	return f.Get(ctx, userID)
}

func (f *fakeProfileRepo) Insert(_ context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.UserID]; !ok {
		f.byID[p.UserID] = copyProfile(p)
	}
	return nil
}

func (f *fakeProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.UserID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[p.UserID] = copyProfile(p)
	return nil
}

func (f *fakeProfileRepo) FindByDisplayName(_ context.Context, displayName string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.DisplayName == displayName {
			return copyProfile(p), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProfileRepo) ListByUserIDs(_ context.Context, userIDs []string) ([]*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Profile
	for _, id := range userIDs {
		if p, ok := f.byID[id]; ok {
			out = append(out, copyProfile(p))
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) CountWishlisting(_ context.Context, websafeSessionKey string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.byID {
		if slices.Contains(p.SessionWishlistKeys, websafeSessionKey) {
			n++
		}
	}
	return n, nil
}

func (f *fakeProfileRepo) snapshot() map[string]*domain.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*domain.Profile, len(f.byID))
	for id, p := range f.byID {
		out[id] = copyProfile(p)
	}
	return out
}

func (f *fakeProfileRepo) restore(byID map[string]*domain.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID = byID
}

func (f *fakeProfileRepo) profile(userID string) *domain.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[userID]
}

// fakeConferenceRepo is an in-memory ConferenceRepository. Query returns queryResult and
// records the plan it was given.
type fakeConferenceRepo struct {
	mu          sync.Mutex
	byID        map[string]*domain.Conference
	nextID      int
	createErr   error
	queryResult []*domain.Conference
	lastPlan    *domain.QueryPlan
}

func newFakeConferenceRepo() *fakeConferenceRepo {
	return &fakeConferenceRepo{byID: make(map[string]*domain.Conference), nextID: 1}
}

func copyConference(c *domain.Conference) *domain.Conference {
	cp := *c
	cp.Topics = slices.Clone(c.Topics)
	return &cp
}

func (f *fakeConferenceRepo) add(c *domain.Conference) *domain.Conference {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("conf-%d", f.nextID)
		f.nextID++
	}
	f.byID[c.ID] = copyConference(c)
	return c
}

func (f *fakeConferenceRepo) snapshot() map[string]*domain.Conference {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*domain.Conference, len(f.byID))
	for id, c := range f.byID {
		out[id] = copyConference(c)
	}
	return out
}

func (f *fakeConferenceRepo) restore(byID map[string]*domain.Conference) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID = byID
}

func (f *fakeConferenceRepo) Create(_ context.Context, c *domain.Conference) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.add(c)
	return nil
}

func (f *fakeConferenceRepo) GetByID(_ context.Context, id string) (*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byID[id]; ok {
		return copyConference(c), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConferenceRepo) GetForUpdate(ctx context.Context, id string) (*domain.Conference, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeConferenceRepo) Update(_ context.Context, c *domain.Conference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[c.ID] = copyConference(c)
	return nil
}

func (f *fakeConferenceRepo) ListByOrganizer(_ context.Context, organizerUserID string) ([]*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Conference
	for _, c := range f.byID {
		if c.OrganizerUserID == organizerUserID {
			out = append(out, copyConference(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeConferenceRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Conference
	for _, c := range f.byID {
		if slices.Contains(ids, c.ID) {
			out = append(out, copyConference(c))
		}
	}
	// unordered, like ANY($1)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeConferenceRepo) Query(_ context.Context, plan domain.QueryPlan) ([]*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPlan = &plan
	return f.queryResult, nil
}

func (f *fakeConferenceRepo) conference(id string) *domain.Conference {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

// fakeSessionRepo is an in-memory SessionRepository. Query returns queryResult.
type fakeSessionRepo struct {
	mu          sync.Mutex
	sessions    []*domain.Session
	nextID      int
	listErr     error
	queryResult []*domain.Session
	lastPlan    *domain.QueryPlan
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{nextID: 1}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		s.ID = fmt.Sprintf("sess-%d", f.nextID)
		f.nextID++
	}
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSessionRepo) ListByConference(_ context.Context, conferenceID string) ([]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Session
	for _, s := range f.sessions {
		if s.ConferenceID == conferenceID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListByConferenceAndType(ctx context.Context, conferenceID string, t domain.TypeOfSession) ([]*domain.Session, error) {
	all, err := f.ListByConference(ctx, conferenceID)
	if err != nil {
		return nil, err
	}
	var out []*domain.Session
	for _, s := range all {
		if s.TypeOfSession == t {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListBySpeaker(_ context.Context, websafeSpeakerKey string) ([]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Session
	for _, s := range f.sessions {
		if slices.Contains(s.SpeakerKeys, websafeSpeakerKey) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Session
	for i := len(f.sessions) - 1; i >= 0; i-- {
		if slices.Contains(ids, f.sessions[i].ID) {
			out = append(out, f.sessions[i])
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Query(_ context.Context, plan domain.QueryPlan) ([]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPlan = &plan
	return f.queryResult, nil
}

// fakeSpeakerRepo is an in-memory SpeakerRepository.
type fakeSpeakerRepo struct {
	byID   map[string]*domain.Speaker
	nextID int
}

func newFakeSpeakerRepo(speakers ...*domain.Speaker) *fakeSpeakerRepo {
	f := &fakeSpeakerRepo{byID: make(map[string]*domain.Speaker), nextID: 1}
	for _, s := range speakers {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSpeakerRepo) Create(_ context.Context, s *domain.Speaker) error {
	s.ID = fmt.Sprintf("spk-%d", f.nextID)
	f.nextID++
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSpeakerRepo) GetByID(_ context.Context, id string) (*domain.Speaker, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSpeakerRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Speaker, error) {
	var out []*domain.Speaker
	for _, id := range ids {
		if s, ok := f.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSpeakerRepo) List(_ context.Context) ([]*domain.Speaker, error) {
	var out []*domain.Speaker
	for _, s := range f.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type enqueuedTask struct {
	task   string
	params map[string]string
}

// fakeQueue records enqueued tasks and dispatches them on demand.
type fakeQueue struct {
	mu       sync.Mutex
	tasks    []enqueuedTask
	err      error
	handlers map[string]domain.TaskHandlerFunc
}

func (f *fakeQueue) Enqueue(_ context.Context, task string, params map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, enqueuedTask{task: task, params: params})
	return nil
}

func (f *fakeQueue) Handle(task string, handler domain.TaskHandlerFunc) {
	if f.handlers == nil {
		f.handlers = make(map[string]domain.TaskHandlerFunc)
	}
	f.handlers[task] = handler
}

// fakeCache is an in-memory Cache.
type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.values[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

type sentMail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, html: html, text: text})
	return nil
}

type fakeRenderer struct {
	name string
	data any
	err  error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.name, f.data = templateName, data
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}

var errStore = errors.New("store unavailable")
