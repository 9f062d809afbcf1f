// Package backup copies the sqlite user store to object storage and keeps a
// bounded number of snapshots there.
package backup

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"users-service/internal/storage"
)

const (
	snapshotPrefix = "users-"
	snapshotSuffix = ".db"
	// UTC, lexically sortable.
	timestampLayout = "20060102T150405Z"
)

// Snapshotter writes a consistent copy of the database to a local path.
type Snapshotter interface {
	SnapshotTo(ctx context.Context, path string) error
}

type Config struct {
	Bucket    string
	KeyPrefix string
	// Retain is the number of snapshots kept under KeyPrefix; <= 0 keeps all.
	Retain  int
	WorkDir string
	Logger  *logrus.Logger
	Now     func() time.Time
}

type Runner struct {
	cfg     Config
	db      Snapshotter
	storage storage.Service
}

func NewRunner(cfg Config, db Snapshotter, store storage.Service) *Runner {
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &Runner{cfg: cfg, db: db, storage: store}
}

// Run snapshots the database, uploads it and prunes old snapshots. It returns
// the location of the uploaded object.
func (r *Runner) Run(ctx context.Context) (string, error) {
	if r.cfg.Bucket == "" {
		return "", fmt.Errorf("backup bucket is required")
	}

	name := snapshotPrefix + r.cfg.Now().UTC().Format(timestampLayout) + snapshotSuffix
	local := filepath.Join(r.cfg.WorkDir, name)

	if err := r.db.SnapshotTo(ctx, local); err != nil {
		return "", fmt.Errorf("snapshot database: %w", err)
	}
	defer func() {
		if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
			r.cfg.Logger.Warnf("remove local snapshot %s: %v", local, err)
		}
	}()

	location, err := r.storage.UploadFile(ctx, r.cfg.Bucket, r.key(name), local)
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	r.cfg.Logger.Infof("uploaded snapshot to %s", location)

	if err := r.prune(ctx); err != nil {
		return location, fmt.Errorf("prune snapshots: %w", err)
	}
	return location, nil
}

func (r *Runner) key(name string) string {
	if r.cfg.KeyPrefix == "" {
		return name
	}
	return path.Join(r.cfg.KeyPrefix, name)
}

func (r *Runner) prune(ctx context.Context) error {
	if r.cfg.Retain <= 0 {
		return nil
	}

	listPrefix := ""
	if r.cfg.KeyPrefix != "" {
		listPrefix = r.cfg.KeyPrefix + "/"
	}
	objects, err := r.storage.ListObjects(ctx, r.cfg.Bucket, listPrefix)
	if err != nil {
		return err
	}

	var keys []string
	for _, obj := range objects {
		base := path.Base(obj.Key)
		if path.Dir(obj.Key) != path.Dir(r.key(base)) {
			continue
		}
		if strings.HasPrefix(base, snapshotPrefix) && strings.HasSuffix(base, snapshotSuffix) {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) <= r.cfg.Retain {
		return nil
	}

	// newest first
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	stale := keys[r.cfg.Retain:]
	if err := r.storage.DeleteObjects(ctx, r.cfg.Bucket, stale); err != nil {
		return err
	}
	r.cfg.Logger.Infof("pruned %d old snapshots", len(stale))
	return nil
}
