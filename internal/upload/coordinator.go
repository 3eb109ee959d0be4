// Package upload drives client-side image uploads: presign, thumbnail, direct PUTs and
// metadata registration, one independent task per file.
package upload

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"imagevault/internal/model"
	"imagevault/internal/policy"
	"imagevault/internal/service"
	"imagevault/internal/thumbnail"
)

// DefaultEvictAfter is how long a finished task stays visible.
const DefaultEvictAfter = 3 * time.Second

// State is the lifecycle stage of one task.
type State string

const (
	StatePending State = "pending"
	StateDone    State = "done"
	StateErrored State = "errored"
)

// TaskState is an observed copy of one upload task.
type TaskState struct {
	Name     string
	Size     int64
	Progress int
	State    State
	Err      error
}

// URLIssuer issues presigned upload URLs. service.PresignService and client.Client satisfy it.
type URLIssuer interface {
	IssueUploadURL(ctx context.Context, req service.UploadURLRequest) (*service.UploadURLs, error)
}

// MetadataRegistrar records uploaded objects. service.RegistrarService and client.Client satisfy it.
type MetadataRegistrar interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.ImageRecord, error)
}

// ThumbnailDeriver produces a thumbnail in the background.
type ThumbnailDeriver interface {
	DeriveAsync(ctx context.Context, open func() (io.ReadCloser, error)) <-chan thumbnail.Result
}

// Options tune a Coordinator. The zero value is usable.
type Options struct {
	// Concurrency bounds simultaneous tasks; <= 0 runs every task at once.
	Concurrency int
	// EvictAfter hides done tasks from Batch.Tasks; <= 0 means DefaultEvictAfter.
	EvictAfter time.Duration
	// Policy is checked locally before any network call; nil means policy.Default().
	Policy *policy.Policy
	// OnUpdate, when set, receives a snapshot after each task change. It must be safe for
	// concurrent use.
	OnUpdate func(TaskState)
	// Now overrides the clock used for eviction.
	Now func() time.Time
}

// Coordinator runs upload batches.
type Coordinator struct {
	issuer    URLIssuer
	transfer  Transferer
	registrar MetadataRegistrar
	deriver   ThumbnailDeriver
	opts      Options
	pol       policy.Policy
}

func NewCoordinator(issuer URLIssuer, transfer Transferer, registrar MetadataRegistrar, deriver ThumbnailDeriver, opts Options) *Coordinator {
	if opts.EvictAfter <= 0 {
		opts.EvictAfter = DefaultEvictAfter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	pol := policy.Default()
	if opts.Policy != nil {
		pol = *opts.Policy
	}
	return &Coordinator{
		issuer:    issuer,
		transfer:  transfer,
		registrar: registrar,
		deriver:   deriver,
		opts:      opts,
		pol:       pol,
	}
}

// task is written only by the goroutine running it; readers copy under mu.
type task struct {
	mu     sync.Mutex
	file   File
	state  TaskState
	doneAt time.Time
}

func (t *task) snapshot() (TaskState, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.doneAt
}

// Batch is the set of tasks created by one Start call.
type Batch struct {
	tasks      []*task
	done       chan struct{}
	evictAfter time.Duration
	now        func() time.Time
}

// Start creates one pending task per file and returns immediately. A failing task never
// affects its siblings.
func (c *Coordinator) Start(ctx context.Context, userID string, files []File) *Batch {
	b := &Batch{
		tasks:      make([]*task, len(files)),
		done:       make(chan struct{}),
		evictAfter: c.opts.EvictAfter,
		now:        c.opts.Now,
	}
	for i, f := range files {
		b.tasks[i] = &task{
			file:  f,
			state: TaskState{Name: f.Name, Size: f.Size, State: StatePending},
		}
	}

	go func() {
		defer close(b.done)
		var g errgroup.Group
		if c.opts.Concurrency > 0 {
			g.SetLimit(c.opts.Concurrency)
		}
		for _, t := range b.tasks {
			g.Go(func() error {
				c.run(ctx, userID, t)
				return nil
			})
		}
		g.Wait()
	}()
	return b
}

// Tasks returns the visible tasks in input order. Done tasks disappear EvictAfter after
// they finished; errored tasks stay.
func (b *Batch) Tasks() []TaskState {
	now := b.now()
	out := make([]TaskState, 0, len(b.tasks))
	for _, t := range b.tasks {
		st, doneAt := t.snapshot()
		if st.State == StateDone && now.Sub(doneAt) >= b.evictAfter {
			continue
		}
		out = append(out, st)
	}
	return out
}

// Done is closed once every task is terminal.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Wait blocks until every task is terminal and returns all of them, evicted or not.
func (b *Batch) Wait() []TaskState {
	<-b.done
	out := make([]TaskState, len(b.tasks))
	for i, t := range b.tasks {
		out[i], _ = t.snapshot()
	}
	return out
}

func (c *Coordinator) update(t *task, fn func(*TaskState)) {
	t.mu.Lock()
	fn(&t.state)
	if t.state.State == StateDone {
		t.doneAt = c.opts.Now()
	}
	st := t.state
	t.mu.Unlock()

	if c.opts.OnUpdate != nil {
		c.opts.OnUpdate(st)
	}
}

func (c *Coordinator) run(ctx context.Context, userID string, t *task) {
	if err := c.upload(ctx, userID, t); err != nil {
		c.update(t, func(s *TaskState) {
			s.State = StateErrored
			s.Err = err
		})
		return
	}
	c.update(t, func(s *TaskState) {
		s.State = StateDone
		s.Progress = 100
	})
}

func (c *Coordinator) upload(ctx context.Context, userID string, t *task) error {
	f := t.file
	if err := model.ValidateFilename(f.Name); err != nil {
		return err
	}
	if err := c.pol.Validate(f.Size, f.MimeType); err != nil {
		return err
	}

	thumbs := c.deriver.DeriveAsync(ctx, f.Open)
	urls, err := c.issuer.IssueUploadURL(ctx, service.UploadURLRequest{
		UserID:        userID,
		Filename:      f.Name,
		Size:          f.Size,
		MimeType:      f.MimeType,
		WithThumbnail: true,
	})
	thumb := <-thumbs
	if err != nil {
		return fmt.Errorf("issue upload url: %w", err)
	}
	if thumb.Err != nil {
		return fmt.Errorf("derive thumbnail: %w", thumb.Err)
	}

	if err := c.putOriginal(ctx, t, urls.URL); err != nil {
		return err
	}
	th := thumb.Thumbnail
	if err := c.transfer.Put(ctx, urls.ThumbnailURL, th.Reader(), th.Size(), th.ContentType(), nil); err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}

	if _, err := c.registrar.Register(ctx, service.RegisterInput{
		UserID:        userID,
		Filename:      f.Name,
		Size:          f.Size,
		MimeType:      f.MimeType,
		StoragePath:   urls.Key,
		ThumbnailPath: urls.ThumbnailKey,
	}); err != nil {
		return fmt.Errorf("register metadata: %w", err)
	}
	return nil
}

func (c *Coordinator) putOriginal(ctx context.Context, t *task, url string) error {
	rc, err := t.file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", t.file.Name, err)
	}
	defer rc.Close()

	onProgress := func(pct int) {
		c.update(t, func(s *TaskState) { s.Progress = pct })
	}
	if err := c.transfer.Put(ctx, url, rc, t.file.Size, t.file.MimeType, onProgress); err != nil {
		return fmt.Errorf("upload original: %w", err)
	}
	return nil
}
