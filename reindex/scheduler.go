// Package reindex refreshes project snapshots in the background after tool
// calls or filesystem events change a project's tree.
package reindex

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pairpilot/model"
)

// DefaultDelay is the debounce window between the last request and the scan.
const DefaultDelay = 100 * time.Millisecond

// ErrClosed is returned by IndexNow after the scheduler has shut down.
var ErrClosed = errors.New("reindex scheduler closed")

// Indexer rescans a project root and stores the new snapshot.
type Indexer interface {
	Index(ctx context.Context, rootPath string) (*model.Project, error)
}

type pending struct {
	timer *time.Timer
	name  string
}

type runState struct {
	running bool
	rerun   bool
}

// Scheduler debounces reindex requests per project root. Requests within the
// delay window collapse into one scan, and at most one scan per root runs at
// a time; a request arriving mid-scan queues exactly one follow-up scan.
// Failures are logged and never retried.
type Scheduler struct {
	indexer Indexer
	delay   time.Duration
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group
	wg     sync.WaitGroup

	mu      sync.Mutex
	timers  map[string]*pending
	running map[string]*runState
	closed  bool
}

func NewScheduler(indexer Indexer, delay time.Duration, logger *zap.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		indexer: indexer,
		delay:   delay,
		logger:  logger.Named("reindex"),
		ctx:     ctx,
		cancel:  cancel,
		timers:  make(map[string]*pending),
		running: make(map[string]*runState),
	}
}

// Schedule requests a deferred reindex of project. It never blocks on the
// scan and is safe to call from any goroutine.
func (s *Scheduler) Schedule(project model.Project) {
	if project.RootPath == "" {
		s.logger.Warn("cannot trigger re-index: project root path is missing", zap.String("project", project.Name))
		return
	}
	root := project.RootPath

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("scheduler closed, dropping re-index request", zap.String("root", root))
		return
	}

	if p, ok := s.timers[root]; ok && p.timer.Stop() {
		p.timer.Reset(s.delay)
		s.logger.Debug("re-index coalesced", zap.String("project", project.Name))
		return
	}

	p := &pending{name: project.Name}
	s.wg.Add(1)
	p.timer = time.AfterFunc(s.delay, func() { s.fire(root, p) })
	s.timers[root] = p
	s.logger.Info("scheduling background re-index",
		zap.String("project", project.Name),
		zap.String("root", root),
		zap.Duration("delay", s.delay))
}

func (s *Scheduler) fire(root string, p *pending) {
	defer s.wg.Done()

	s.mu.Lock()
	if s.timers[root] == p {
		delete(s.timers, root)
	}
	s.mu.Unlock()

	s.run(root, p.name)
}

// run scans root, then rescans once more if another request landed while
// the first scan was in flight.
func (s *Scheduler) run(root, name string) {
	s.mu.Lock()
	st, ok := s.running[root]
	if !ok {
		st = &runState{}
		s.running[root] = st
	}
	if st.running {
		st.rerun = true
		s.mu.Unlock()
		return
	}
	st.running = true
	s.mu.Unlock()

	for {
		s.indexOnce(root, name)

		s.mu.Lock()
		if st.rerun && s.ctx.Err() == nil {
			st.rerun = false
			s.mu.Unlock()
			continue
		}
		delete(s.running, root)
		s.mu.Unlock()
		return
	}
}

func (s *Scheduler) indexOnce(root, name string) {
	s.logger.Info("starting background re-index", zap.String("project", name), zap.String("root", root))
	start := time.Now()

	v, err, _ := s.group.Do(root, func() (any, error) {
		return s.indexer.Index(s.ctx, root)
	})
	if err != nil {
		s.logger.Warn("background re-index failed",
			zap.String("project", name),
			zap.String("root", root),
			zap.Error(err))
		return
	}

	fields := []zap.Field{zap.String("root", root), zap.Duration("took", time.Since(start))}
	if p, ok := v.(*model.Project); ok && p != nil {
		fields = append(fields, zap.Int64("project_id", p.ID), zap.String("project", p.Name))
	}
	s.logger.Info("background re-index complete", fields...)
}

// IndexNow scans root immediately. Concurrent calls for the same root,
// including a scheduled scan already in flight, share one result.
func (s *Scheduler) IndexNow(ctx context.Context, root string) (*model.Project, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	v, err, shared := s.group.Do(root, func() (any, error) {
		return s.indexer.Index(ctx, root)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("index request joined an in-flight scan", zap.String("root", root))
	}
	return v.(*model.Project), nil
}

// Pending reports how many roots are waiting for their debounce window.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Shutdown stops accepting requests, runs every pending scan right away and
// waits for all scans to finish or ctx to expire.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for root, p := range s.timers {
		if p.timer.Stop() {
			delete(s.timers, root)
			go func(root string, p *pending) {
				defer s.wg.Done()
				s.run(root, p.name)
			}(root, p)
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}

// Close drops pending scans, cancels in-flight ones and waits for them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for root, p := range s.timers {
		if p.timer.Stop() {
			delete(s.timers, root)
			s.wg.Done()
		}
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
