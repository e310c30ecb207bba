package etl

import (
	"context"
	sterrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/oarkflow/errors"
	"github.com/oarkflow/json"
)

var ErrRunNotFound = errors.New("run not found")

// RunStore persists finished run records.
type RunStore interface {
	Save(ctx context.Context, run *Run) error
	Load(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context) ([]Run, error)
}

// FileRunStore keeps one JSON file per run under a directory.
type FileRunStore struct {
	baseDir string
	mu      sync.Mutex
}

func NewFileRunStore(baseDir string) (*FileRunStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &FileRunStore{baseDir: baseDir}, nil
}

func (s *FileRunStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileRunStore) Save(_ context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(s.path(run.ID), data, 0o644)
}

func (s *FileRunStore) Load(_ context.Context, id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if sterrors.Is(err, fs.ErrNotExist) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns every stored run, oldest first.
func (s *FileRunStore) List(ctx context.Context) ([]Run, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	var runs []Run
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		run, err := s.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	sortRuns(runs)
	return runs, nil
}

// MemoryRunStore keeps runs for the life of the process. Dry runs use it.
type MemoryRunStore struct {
	runs map[string]Run
	mu   sync.RWMutex
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]Run)}
}

func (s *MemoryRunStore) Save(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *MemoryRunStore) Load(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &run, nil
}

func (s *MemoryRunStore) List(_ context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func sortRuns(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
}
