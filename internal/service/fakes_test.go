package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"learnhub_backend/internal/cache"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memDB is an in-memory stand-in for the gorm repositories. It returns the
// same gorm sentinel errors so the services' error mapping is exercised.
type memDB struct {
	mu       sync.Mutex
	nextID   uint
	users    map[uint]*model.User
	courses  map[uint]*model.Course
	modules  map[uint]*model.Module
	lessons  map[uint]*model.Lesson
	enrolled map[[2]uint]*model.Enrollment
	progress map[[2]uint]*model.UserProgress
	quizzes  map[uint]*model.Quiz
	attempts []model.UserQuizAttempt
	certs    []model.Certificate
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[uint]*model.User{},
		courses:  map[uint]*model.Course{},
		modules:  map[uint]*model.Module{},
		lessons:  map[uint]*model.Lesson{},
		enrolled: map[[2]uint]*model.Enrollment{},
		progress: map[[2]uint]*model.UserProgress{},
		quizzes:  map[uint]*model.Quiz{},
	}
}

func (db *memDB) id() uint {
	db.nextID++
	return db.nextID
}

// ---- users

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = f.db.id()
	cp := *u
	f.db.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	cp.Grants = append([]model.UserRoleGrant(nil), u.Grants...)
	return &cp, nil
}

func (f fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.db.mu.Lock()
	var id uint
	for _, u := range f.db.users {
		if u.Email == email {
			id = u.ID
		}
	}
	f.db.mu.Unlock()
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return f.FindByID(ctx, id)
}

func (f fakeUsers) Update(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.users[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	grants := stored.Grants
	cp := *u
	cp.Grants = grants
	f.db.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if u, ok := f.db.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (f fakeUsers) SetDisabled(_ context.Context, id uint, disabled bool) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Disabled = disabled
	return nil
}

func (f fakeUsers) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var all []model.User
	for _, u := range f.db.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (f fakeUsers) GrantRole(_ context.Context, userID uint, role model.Role) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, g := range u.Grants {
		if g.Role == role {
			return nil
		}
	}
	u.Grants = append(u.Grants, model.UserRoleGrant{UserID: userID, Role: role})
	return nil
}

func (f fakeUsers) RevokeRole(_ context.Context, userID uint, role model.Role) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[userID]
	if !ok {
		return nil
	}
	kept := u.Grants[:0]
	for _, g := range u.Grants {
		if g.Role != role {
			kept = append(kept, g)
		}
	}
	u.Grants = kept
	return nil
}

// ---- courses

type fakeCourses struct{ db *memDB }

func (f fakeCourses) Create(_ context.Context, c *model.Course) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.courses {
		if existing.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = f.db.id()
	cp := *c
	f.db.courses[c.ID] = &cp
	return nil
}

func (f fakeCourses) Update(_ context.Context, c *model.Course) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for id, existing := range f.db.courses {
		if id != c.ID && existing.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *c
	f.db.courses[c.ID] = &cp
	return nil
}

func (f fakeCourses) FindByID(_ context.Context, id uint) (*model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeCourses) FindTree(ctx context.Context, id uint) (*model.Course, error) {
	c, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, m := range f.db.modules {
		if m.CourseID != id {
			continue
		}
		mod := *m
		for _, l := range f.db.lessons {
			if l.ModuleID == m.ID {
				mod.Lessons = append(mod.Lessons, *l)
			}
		}
		c.Modules = append(c.Modules, mod)
	}
	return c, nil
}

func (f fakeCourses) List(_ context.Context, publishedOnly bool, page, limit int) ([]model.Course, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Course
	for _, c := range f.db.courses {
		if publishedOnly && !c.Published {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f fakeCourses) Delete(_ context.Context, id uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.db.courses, id)
	return nil
}

func (f fakeCourses) CreateModule(_ context.Context, m *model.Module) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	m.ID = f.db.id()
	cp := *m
	f.db.modules[m.ID] = &cp
	return nil
}

func (f fakeCourses) UpdateModule(_ context.Context, m *model.Module) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *m
	f.db.modules[m.ID] = &cp
	return nil
}

func (f fakeCourses) FindModule(_ context.Context, id uint) (*model.Module, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	m, ok := f.db.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (f fakeCourses) DeleteModule(_ context.Context, id uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.modules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.db.modules, id)
	return nil
}

func (f fakeCourses) CreateLesson(_ context.Context, l *model.Lesson) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	l.ID = f.db.id()
	cp := *l
	f.db.lessons[l.ID] = &cp
	return nil
}

func (f fakeCourses) UpdateLesson(_ context.Context, l *model.Lesson) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *l
	f.db.lessons[l.ID] = &cp
	return nil
}

func (f fakeCourses) FindLesson(_ context.Context, id uint) (*model.Lesson, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	l, ok := f.db.lessons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (f fakeCourses) DeleteLesson(_ context.Context, id uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.lessons[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.db.lessons, id)
	return nil
}

func (f fakeCourses) CourseIDForLesson(_ context.Context, lessonID uint) (uint, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	l, ok := f.db.lessons[lessonID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	m, ok := f.db.modules[l.ModuleID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return m.CourseID, nil
}

func (f fakeCourses) LessonIDsByModule(_ context.Context, moduleID uint) ([]uint, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var ids []uint
	for _, l := range f.db.lessons {
		if l.ModuleID == moduleID {
			ids = append(ids, l.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f fakeCourses) LessonIDsByCourse(_ context.Context, courseID uint) ([]uint, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var ids []uint
	for _, l := range f.db.lessons {
		if m, ok := f.db.modules[l.ModuleID]; ok && m.CourseID == courseID {
			ids = append(ids, l.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ---- enrollments

type fakeEnrollments struct{ db *memDB }

func (f fakeEnrollments) Enroll(_ context.Context, userID, courseID uint) (*model.Enrollment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uint{userID, courseID}
	if e, ok := f.db.enrolled[key]; ok {
		cp := *e
		return &cp, nil
	}
	e := &model.Enrollment{UserID: userID, CourseID: courseID, EnrolledAt: time.Now()}
	e.ID = f.db.id()
	f.db.enrolled[key] = e
	cp := *e
	return &cp, nil
}

func (f fakeEnrollments) IsEnrolled(_ context.Context, userID, courseID uint) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, ok := f.db.enrolled[[2]uint{userID, courseID}]
	return ok, nil
}

func (f fakeEnrollments) ListByUser(_ context.Context, userID uint) ([]model.Enrollment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Enrollment
	for k, e := range f.db.enrolled {
		if k[0] == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

// ---- progress

type fakeProgress struct{ db *memDB }

func (f fakeProgress) MarkCompleted(_ context.Context, userID, lessonID uint) (*model.UserProgress, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uint{userID, lessonID}
	p, ok := f.db.progress[key]
	if !ok {
		now := time.Now()
		p = &model.UserProgress{UserID: userID, LessonID: lessonID, Completed: true, CompletedAt: &now}
		p.ID = f.db.id()
		f.db.progress[key] = p
	}
	cp := *p
	return &cp, nil
}

func (f fakeProgress) CompletedLessonIDs(_ context.Context, userID uint, lessonIDs []uint) ([]uint, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []uint
	for _, id := range lessonIDs {
		if p, ok := f.db.progress[[2]uint{userID, id}]; ok && p.Completed {
			out = append(out, id)
		}
	}
	return out, nil
}

// ---- quizzes

type fakeQuizzes struct{ db *memDB }

func (f fakeQuizzes) assignIDs(q *model.Quiz) {
	for i := range q.Questions {
		q.Questions[i].ID = f.db.id()
		q.Questions[i].QuizID = q.ID
		for j := range q.Questions[i].Answers {
			q.Questions[i].Answers[j].ID = f.db.id()
			q.Questions[i].Answers[j].QuestionID = q.Questions[i].ID
		}
	}
}

func (f fakeQuizzes) Create(_ context.Context, q *model.Quiz) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	q.ID = f.db.id()
	f.assignIDs(q)
	cp := *q
	f.db.quizzes[q.ID] = &cp
	return nil
}

func (f fakeQuizzes) Replace(_ context.Context, q *model.Quiz) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.quizzes[q.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.assignIDs(q)
	cp := *q
	f.db.quizzes[q.ID] = &cp
	return nil
}

func (f fakeQuizzes) Delete(_ context.Context, id uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.quizzes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.db.quizzes, id)
	kept := f.db.attempts[:0]
	for _, a := range f.db.attempts {
		if a.QuizID != id {
			kept = append(kept, a)
		}
	}
	f.db.attempts = kept
	return nil
}

func (f fakeQuizzes) FindByID(ctx context.Context, id uint) (*model.Quiz, error) {
	q, err := f.FindWithQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Questions = nil
	return q, nil
}

func (f fakeQuizzes) FindWithQuestions(_ context.Context, id uint) (*model.Quiz, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	q, ok := f.db.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *q
	cp.Questions = append([]model.QuizQuestion(nil), q.Questions...)
	sort.SliceStable(cp.Questions, func(i, j int) bool {
		if cp.Questions[i].Order != cp.Questions[j].Order {
			return cp.Questions[i].Order < cp.Questions[j].Order
		}
		return cp.Questions[i].ID < cp.Questions[j].ID
	})
	return &cp, nil
}

func (f fakeQuizzes) FinalExamsForCourse(_ context.Context, courseID uint) ([]model.Quiz, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Quiz
	for _, q := range f.db.quizzes {
		if q.IsFinalExam && q.CourseID != nil && *q.CourseID == courseID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f fakeQuizzes) ListForCourse(_ context.Context, courseID uint) ([]model.Quiz, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	inCourse := func(moduleID uint) bool {
		m, ok := f.db.modules[moduleID]
		return ok && m.CourseID == courseID
	}
	var out []model.Quiz
	for _, q := range f.db.quizzes {
		switch {
		case q.CourseID != nil && *q.CourseID == courseID:
		case q.ModuleID != nil && inCourse(*q.ModuleID):
		case q.LessonID != nil && f.db.lessons[*q.LessonID] != nil && inCourse(f.db.lessons[*q.LessonID].ModuleID):
		default:
			continue
		}
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- attempts

type fakeAttempts struct{ db *memDB }

func (f fakeAttempts) Record(_ context.Context, a *model.UserQuizAttempt, reset *model.ProgressReset) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a.ID = f.db.id()
	a.CreatedAt = time.Now()
	for i := range a.Responses {
		a.Responses[i].ID = f.db.id()
		a.Responses[i].AttemptID = a.ID
	}
	f.db.attempts = append(f.db.attempts, *a)
	if reset == nil {
		return nil
	}
	for _, lessonID := range reset.LessonIDs {
		delete(f.db.progress, [2]uint{reset.UserID, lessonID})
	}
	kept := f.db.attempts[:0]
	for _, existing := range f.db.attempts {
		if existing.UserID == reset.UserID && existing.QuizID == reset.QuizID {
			continue
		}
		kept = append(kept, existing)
	}
	f.db.attempts = kept
	return nil
}

func (f fakeAttempts) ListByUserAndQuiz(_ context.Context, userID, quizID uint) ([]model.UserQuizAttempt, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.UserQuizAttempt
	for i := len(f.db.attempts) - 1; i >= 0; i-- {
		a := f.db.attempts[i]
		if a.UserID == userID && a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeAttempts) HasPassed(ctx context.Context, userID, quizID uint) (bool, error) {
	attempts, _ := f.ListByUserAndQuiz(ctx, userID, quizID)
	for _, a := range attempts {
		if a.Passed {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeAttempts) ListByQuiz(_ context.Context, quizID uint) ([]model.UserQuizAttempt, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.UserQuizAttempt
	for _, a := range f.db.attempts {
		if a.QuizID == quizID {
			if u, ok := f.db.users[a.UserID]; ok {
				cp := *u
				a.User = &cp
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// ---- certificates

type fakeCerts struct {
	db *memDB
	// beforeCreate runs inside Create, letting tests simulate a racing writer.
	beforeCreate func(cert *model.Certificate)
}

func (f *fakeCerts) Create(_ context.Context, c *model.Certificate) error {
	if f.beforeCreate != nil {
		f.beforeCreate(c)
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.certs {
		if existing.CertificateNumber == c.CertificateNumber ||
			(existing.UserID == c.UserID && existing.CourseID == c.CourseID) {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = f.db.id()
	f.db.certs = append(f.db.certs, *c)
	return nil
}

func (f *fakeCerts) FindByUserAndCourse(_ context.Context, userID, courseID uint) (*model.Certificate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.certs {
		if c.UserID == userID && c.CourseID == courseID {
			cp := c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCerts) FindByNumber(_ context.Context, number string) (*model.Certificate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.certs {
		if c.CertificateNumber == number {
			cp := c
			if u, ok := f.db.users[c.UserID]; ok {
				uc := *u
				cp.User = &uc
			}
			if course, ok := f.db.courses[c.CourseID]; ok {
				cc := *course
				cp.Course = &cc
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCerts) ListByUser(_ context.Context, userID uint) ([]model.Certificate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Certificate
	for _, c := range f.db.certs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCerts) List(_ context.Context, courseID uint) ([]model.Certificate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Certificate
	for _, c := range f.db.certs {
		if courseID == 0 || c.CourseID == courseID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ---- events

type recordedEvent struct {
	Type    events.EventType
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, t events.EventType, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: t, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// ---- storage

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	return m.GetURL(key), nil
}

func (m *memStorage) UploadFile(ctx context.Context, key, localPath, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return m.Upload(ctx, key, f, -1, contentType)
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memStorage) GetURL(key string) string {
	return "/files/" + key
}

// ---- fixtures

type fixture struct {
	db        *memDB
	users     fakeUsers
	courses   fakeCourses
	enrolled  fakeEnrollments
	progress  fakeProgress
	quizzes   fakeQuizzes
	attempts  fakeAttempts
	certs     *fakeCerts
	publisher *recordingPublisher
}

func newFixture() *fixture {
	db := newMemDB()
	return &fixture{
		db:        db,
		users:     fakeUsers{db},
		courses:   fakeCourses{db},
		enrolled:  fakeEnrollments{db},
		progress:  fakeProgress{db},
		quizzes:   fakeQuizzes{db},
		attempts:  fakeAttempts{db},
		certs:     &fakeCerts{db: db},
		publisher: &recordingPublisher{},
	}
}

func (f *fixture) quizService(maxFailures int) *QuizService {
	return NewQuizService(f.quizzes, f.attempts, f.courses, NewLocalLocker(), cache.Noop{}, f.publisher,
		config.LearningConfig{MaxConsecutiveFailures: maxFailures, QuizCacheTTL: time.Minute})
}

func (f *fixture) certificateService() *CertificateService {
	return NewCertificateService(f.certs, f.courses, f.quizzes, f.attempts, f.progress, cache.Noop{}, f.publisher, time.Minute)
}

func (f *fixture) progressService() *ProgressService {
	return NewProgressService(f.progress, f.courses, f.enrolled)
}

// courseWithLessons creates a published course with one module per entry in
// lessonsPerModule. It returns the course, module ids and all lesson ids.
func (f *fixture) courseWithLessons(t *testing.T, lessonsPerModule ...int) (*model.Course, []uint, []uint) {
	t.Helper()
	ctx := context.Background()
	course := &model.Course{Title: "Go Basics", Slug: fmt.Sprintf("go-basics-%d", f.db.nextID), Published: true}
	require.NoError(t, f.courses.Create(ctx, course))

	var moduleIDs, lessonIDs []uint
	for mi, n := range lessonsPerModule {
		m := &model.Module{CourseID: course.ID, Title: fmt.Sprintf("Module %d", mi+1), Order: mi}
		require.NoError(t, f.courses.CreateModule(ctx, m))
		moduleIDs = append(moduleIDs, m.ID)
		for li := 0; li < n; li++ {
			l := &model.Lesson{ModuleID: m.ID, Title: fmt.Sprintf("Lesson %d.%d", mi+1, li+1), Order: li}
			require.NoError(t, f.courses.CreateLesson(ctx, l))
			lessonIDs = append(lessonIDs, l.ID)
		}
	}
	return course, moduleIDs, lessonIDs
}

// quiz stores a quiz with the given number of two-option questions. The
// first answer of every question is the correct one.
func (f *fixture) quiz(t *testing.T, owner func(*model.Quiz), questions, passingScore int, final bool) *model.Quiz {
	t.Helper()
	q := &model.Quiz{Title: "Checkpoint", PassingScore: passingScore, IsFinalExam: final}
	owner(q)
	for i := 0; i < questions; i++ {
		q.Questions = append(q.Questions, model.QuizQuestion{
			Text:  fmt.Sprintf("Question %d", i+1),
			Order: i,
			Answers: []model.QuizAnswer{
				{Text: "right", IsCorrect: true},
				{Text: "wrong"},
			},
		})
	}
	require.NoError(t, f.quizzes.Create(context.Background(), q))
	return q
}

func ownedByCourse(id uint) func(*model.Quiz) { return func(q *model.Quiz) { q.CourseID = util.UintPtr(id) } }
func ownedByModule(id uint) func(*model.Quiz) { return func(q *model.Quiz) { q.ModuleID = util.UintPtr(id) } }
func ownedByLesson(id uint) func(*model.Quiz) { return func(q *model.Quiz) { q.LessonID = util.UintPtr(id) } }

// answers builds a submission answering the first `correct` questions right
// and the rest wrong.
func answers(q *model.Quiz, correct int) []SubmittedResponse {
	out := make([]SubmittedResponse, 0, len(q.Questions))
	for i, question := range q.Questions {
		pick := question.Answers[1].ID
		if i < correct {
			pick = question.Answers[0].ID
		}
		out = append(out, SubmittedResponse{QuestionID: question.ID, AnswerID: pick})
	}
	return out
}
