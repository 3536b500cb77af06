package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/dao/snapshot"
)

// Service stores snapshots as JSON files under a base URL
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

// Ensure Service implements dao.Service
var _ dao.Service[string, snapshot.Snapshot] = (*Service)(nil)

// Save persists a snapshot, overwriting one with the same name
func (s *Service) Save(ctx context.Context, aSnapshot *snapshot.Snapshot) error {
	if aSnapshot == nil {
		return dao.ErrNilEntity
	}
	if err := snapshot.ValidateName(aSnapshot.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(aSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	filePath := s.snapshotPath(aSnapshot.Name)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save snapshot to file %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a snapshot by name
func (s *Service) Load(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	if err := snapshot.ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.snapshotPath(name)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if snapshot exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: snapshot %s", dao.ErrNotFound, name)
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	var ret snapshot.Snapshot
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot data: %w", err)
	}
	return &ret, nil
}

// Delete removes a snapshot file
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := snapshot.ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.snapshotPath(name)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if snapshot exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: snapshot %s", dao.ErrNotFound, name)
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete snapshot file: %w", err)
	}
	return nil
}

// List returns stored snapshots ordered by name. A "Name" parameter narrows
// the result to matching names.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot files: %w", err)
	}
	var ret []*snapshot.Snapshot
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot file %s: %w", object.URL(), err)
		}
		var aSnapshot snapshot.Snapshot
		if err := json.Unmarshal(data, &aSnapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot from %s: %w", object.URL(), err)
		}
		if !matchesName(aSnapshot.Name, parameters) {
			continue
		}
		ret = append(ret, &aSnapshot)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret, nil
}

func matchesName(name string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != "Name" {
			continue
		}
		switch value := parameter.Value.(type) {
		case string:
			return strings.EqualFold(name, value)
		case []string:
			for _, candidate := range value {
				if strings.EqualFold(name, candidate) {
					return true
				}
			}
			return false
		}
	}
	return true
}

func (s *Service) snapshotPath(name string) string {
	return url.Join(s.basePath, name+".json")
}

// New creates a filesystem snapshot store rooted at basePath (any afs URL)
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	basePath = url.Normalize(basePath, file.Scheme)
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &Service{
		basePath: basePath,
		fs:       fs,
	}, nil
}
