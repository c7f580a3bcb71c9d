package ndjson

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
)

const (
	fileExt    = ".jsonl"
	dayLayout  = "2006-01-02"
	maxLineLen = 16 * 1024 * 1024
)

// Store keeps one append-only line-delimited JSON file per UTC day. Reads
// scan every day file in name order, so a job's history survives midnight.
type Store struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) dayFile(t time.Time) string {
	return filepath.Join(s.dir, t.UTC().Format(dayLayout)+fileExt)
}

func (s *Store) Append(_ context.Context, jobID string, activity domain.Activity, details map[string]any) (*domain.StageEvent, error) {
	if err := domain.ValidateJobID(jobID); err != nil {
		return nil, err
	}
	if !activity.Valid() {
		return nil, fmt.Errorf("append event: unknown activity %q", activity)
	}
	if details == nil {
		details = map[string]any{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prior := 0
	if err := s.scan(func(e domain.StageEvent) {
		if e.JobID == jobID {
			prior++
		}
	}); err != nil {
		return nil, err
	}

	event := domain.StageEvent{
		Timestamp: s.now().UTC(),
		JobID:     jobID,
		Activity:  activity,
		Details:   details,
	}
	line, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", activity, err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.dayFile(event.Timestamp), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write event: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("sync log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close log file: %w", err)
	}

	var stored domain.StageEvent
	if err := json.Unmarshal(line, &stored); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", activity, err)
	}
	stored.Seq = prior + 1
	return &stored, nil
}

func (s *Store) Query(_ context.Context, jobID string) ([]domain.StageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []domain.StageEvent{}
	err := s.scan(func(e domain.StageEvent) {
		if e.JobID == jobID {
			e.Seq = len(events) + 1
			events = append(events, e)
		}
	})
	return events, err
}

func (s *Store) FindLatest(ctx context.Context, jobID string, activity domain.Activity) (*domain.StageEvent, error) {
	events, err := s.Query(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Activity == activity {
			return &events[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) State(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	events, err := s.Query(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.ErrNotFound
	}
	return domain.StatusFromEvents(jobID, events), nil
}

func (s *Store) ListJobs(_ context.Context) ([]domain.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byJob := make(map[string]*domain.JobStatus)
	err := s.scan(func(e domain.StageEvent) {
		st, ok := byJob[e.JobID]
		if !ok {
			st = &domain.JobStatus{JobID: e.JobID}
			byJob[e.JobID] = st
		}
		st.Apply(e)
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.JobStatus, 0, len(byJob))
	for _, st := range byJob {
		jobs = append(jobs, *st)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].UpdatedAt.Equal(jobs[j].UpdatedAt) {
			return jobs[i].UpdatedAt.After(jobs[j].UpdatedAt)
		}
		return jobs[i].JobID < jobs[j].JobID
	})
	return jobs, nil
}

// scan feeds every stored event to fn in append order. A line that does not
// decode (a torn write after a crash) is skipped with a warning.
func (s *Store) scan(fn func(domain.StageEvent)) error {
	files, err := s.dayFiles()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := scanFile(path, fn); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) dayFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		if _, err := time.Parse(dayLayout, strings.TrimSuffix(name, fileExt)); err != nil {
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func scanFile(path string, fn func(domain.StageEvent)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e domain.StageEvent
		if err := json.Unmarshal(line, &e); err != nil {
			logger.Warn.Printf("skipping malformed log line %s:%d: %v", filepath.Base(path), lineNo, err)
			continue
		}
		fn(e)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

var _ port.JobLog = (*Store)(nil)
