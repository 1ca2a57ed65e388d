package core

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// memCategoryRepo is an in-memory CategoryRepository with a unique name constraint.
type memCategoryRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{items: map[int64]Category{}}
}

func (r *memCategoryRepo) List(ctx context.Context) ([]Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Category{}
	for _, c := range r.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nama < out[j].Nama })
	return out, nil
}

func (r *memCategoryRepo) Create(ctx context.Context, nama string) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	nama = strings.TrimSpace(nama)
	for _, c := range r.items {
		if c.Nama == nama {
			return nil, duplicateError("category")
		}
	}
	r.nextID++
	c := Category{ID: r.nextID, Nama: nama, CreatedAt: time.Now()}
	r.items[c.ID] = c
	return &c, nil
}

func (r *memCategoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFoundError("category")
	}
	delete(r.items, id)
	return nil
}

func (r *memCategoryRepo) EnsureExists(ctx context.Context, nama string) (bool, error) {
	if _, err := r.Create(ctx, nama); err != nil {
		if KindOf(err) == KindConflict {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type memAnnouncementRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]Announcement
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{items: map[int64]Announcement{}}
}

func (r *memAnnouncementRepo) List(ctx context.Context, kategoriID *int64, page, perPage int) ([]Announcement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []Announcement{}
	for _, a := range r.items {
		if kategoriID != nil && (a.KategoriID == nil || *a.KategoriID != *kategoriID) {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	start := (page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r *memAnnouncementRepo) Get(ctx context.Context, id int64) (*Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, notFoundError("announcement")
	}
	return &a, nil
}

func (r *memAnnouncementRepo) Create(ctx context.Context, in AnnouncementInput) (*Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now()
	a := Announcement{ID: r.nextID, Judul: in.Judul, Isi: in.Isi, KategoriID: in.KategoriID, CreatedAt: now, UpdatedAt: now}
	r.items[a.ID] = a
	return &a, nil
}

func (r *memAnnouncementRepo) Update(ctx context.Context, id int64, in AnnouncementInput) (*Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, notFoundError("announcement")
	}
	a.Judul, a.Isi, a.KategoriID, a.UpdatedAt = in.Judul, in.Isi, in.KategoriID, time.Now()
	r.items[id] = a
	return &a, nil
}

func (r *memAnnouncementRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFoundError("announcement")
	}
	delete(r.items, id)
	return nil
}

type memNewsRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]News
}

func newMemNewsRepo() *memNewsRepo {
	return &memNewsRepo{items: map[int64]News{}}
}

func (r *memNewsRepo) List(ctx context.Context, kategoriID *int64, page, perPage int) ([]News, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []News{}
	for _, n := range r.items {
		if kategoriID == nil || (n.KategoriID != nil && *n.KategoriID == *kategoriID) {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, len(all), nil
}

func (r *memNewsRepo) Get(ctx context.Context, id int64) (*News, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, notFoundError("news")
	}
	return &n, nil
}

func (r *memNewsRepo) Create(ctx context.Context, penulisID int64, in NewsInput) (*News, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n := News{ID: r.nextID, Judul: in.Judul, Isi: in.Isi, GambarURL: in.GambarURL, KategoriID: in.KategoriID, PenulisID: penulisID}
	r.items[n.ID] = n
	return &n, nil
}

func (r *memNewsRepo) Update(ctx context.Context, id int64, in NewsInput) (*News, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, notFoundError("news")
	}
	n.Judul, n.Isi, n.GambarURL, n.KategoriID = in.Judul, in.Isi, in.GambarURL, in.KategoriID
	r.items[id] = n
	return &n, nil
}

func (r *memNewsRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFoundError("news")
	}
	delete(r.items, id)
	return nil
}

// memSubmissionRepo mirrors PgSubmissionRepository's state machine in memory.
type memSubmissionRepo struct {
	mu        sync.Mutex
	nextID    int64
	items     map[int64]Submission
	sequences map[string]int
	failNext  error
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{items: map[int64]Submission{}, sequences: map[string]int{}}
}

func (r *memSubmissionRepo) Create(ctx context.Context, userID int64, jenisSurat, keperluan string) (*Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now()
	s := Submission{ID: r.nextID, UserID: userID, JenisSurat: jenisSurat, Keperluan: keperluan, Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	r.items[s.ID] = s
	return &s, nil
}

func (r *memSubmissionRepo) Get(ctx context.Context, id int64) (*Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, notFoundError("submission")
	}
	return &s, nil
}

func (r *memSubmissionRepo) List(ctx context.Context, userID *int64, page, perPage int) ([]Submission, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Submission{}
	for _, s := range r.items {
		if userID == nil || s.UserID == *userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (r *memSubmissionRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *memSubmissionRepo) AcquirePending(ctx context.Context, id int64) (*Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return nil, err
	}
	s, ok := r.items[id]
	if !ok {
		return nil, notFoundError("submission")
	}
	if s.Status != StatusPending {
		return nil, ErrSubmissionNotPending
	}
	s.Status = StatusProcessing
	r.items[id] = s
	return &s, nil
}

func (r *memSubmissionRepo) MarkStatus(ctx context.Context, id int64, status string) error {
	return r.transition(id, openStatus, func(s *Submission) { s.Status = status })
}

func (r *memSubmissionRepo) IncrementRetry(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.transition(id, openStatus, func(s *Submission) {
		s.RetryCount++
		n = s.RetryCount
	})
	return n, err
}

func (r *memSubmissionRepo) Complete(ctx context.Context, id int64, nomorSurat string) error {
	return r.transition(id, func(st string) bool { return st == StatusProcessing }, func(s *Submission) {
		s.Status = StatusDone
		s.NomorSurat = &nomorSurat
	})
}

func (r *memSubmissionRepo) Fail(ctx context.Context, id int64, message string) error {
	return r.transition(id, openStatus, func(s *Submission) {
		s.Status = StatusFailed
		s.ErrorMessage = &message
	})
}

func openStatus(st string) bool { return st == StatusPending || st == StatusProcessing }

// transition applies fn when allowed accepts the current status, like the guarded
// UPDATEs of PgSubmissionRepository.
func (r *memSubmissionRepo) transition(id int64, allowed func(string) bool, fn func(*Submission)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return notFoundError("submission")
	}
	if !allowed(s.Status) {
		return ErrSubmissionNotPending
	}
	fn(&s)
	r.items[id] = s
	return nil
}

func (r *memSubmissionRepo) NextSequence(ctx context.Context, kode string, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := kode + "/" + strconv.Itoa(year)
	r.sequences[key]++
	return r.sequences[key], nil
}

func (r *memSubmissionRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{StatusPending: 0, StatusProcessing: 0, StatusDone: 0, StatusFailed: 0}
	for _, s := range r.items {
		out[s.Status]++
	}
	return out, nil
}

func (r *memSubmissionRepo) status(id int64) Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id]
}

// sliceQueue is a JobQueue over a slice; enqueueErr makes Enqueue fail.
type sliceQueue struct {
	mu         sync.Mutex
	pending    []string
	acked      []string
	enqueueErr error
}

func (q *sliceQueue) Enqueue(ctx context.Context, value string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.pending = append(q.pending, value)
	return nil
}

func (q *sliceQueue) Reserve(ctx context.Context, visibility time.Duration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return "", ErrQueueEmpty
	}
	v := q.pending[0]
	q.pending = q.pending[1:]
	return v, nil
}

func (q *sliceQueue) Ack(ctx context.Context, value string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, value)
	return nil
}

func (q *sliceQueue) RequeueExpired(ctx context.Context, now time.Time) ([]string, error) {
	return nil, nil
}

func (q *sliceQueue) snapshot() (pending, acked []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.pending...), append([]string(nil), q.acked...)
}
