package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before Watch emits it.
const DefaultSettle = 2 * time.Second

// Options controls which files become documents.
type Options struct {
	// Extensions lists accepted file extensions, compared case-insensitively.
	// Empty accepts every regular file.
	Extensions []string

	// SkipHidden skips files and directories whose name starts with a dot.
	SkipHidden bool

	// KeyMode selects relative-path or bare-name keys.
	KeyMode domain.KeyMode

	// Settle delays Watch emissions until a file stops changing.
	Settle time.Duration
}

// Connector enumerates PDF documents under a root directory.
type Connector struct {
	root string
	opts Options

	mu     sync.Mutex
	closed bool
	abs    string
}

// New creates a connector for root.
func New(root string, opts Options) *Connector {
	if opts.KeyMode == "" {
		opts.KeyMode = domain.KeyModePath
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	return &Connector{root: root, opts: opts}
}

// Walk validates root and returns its documents in lexical order.
func Walk(ctx context.Context, root string, opts Options) ([]domain.Document, error) {
	return New(root, opts).Walk(ctx)
}

// Root returns the absolute root once validated, or the root as given.
func (c *Connector) Root() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.abs != "" {
		return c.abs
	}
	return c.root
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := filepath.Abs(c.root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidRoot, c.root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", domain.ErrInvalidRoot, c.root)
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidRoot, c.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidRoot, c.root)
	}

	c.mu.Lock()
	c.abs = abs
	c.mu.Unlock()
	return nil
}

// Walk returns every accepted regular file under the root in lexical
// order. Symbolic links and special files are skipped. Unreadable
// subdirectories are logged and skipped.
func (c *Connector) Walk(ctx context.Context) ([]domain.Document, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}
	root := c.Root()

	var docs []domain.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != root && c.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !c.accepts(d.Name()) {
			return nil
		}

		doc, err := c.document(path)
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	logger.Debug("found %d documents under %s", len(docs), root)
	return docs, nil
}

// Watch emits documents created or modified under the root until ctx is
// done. A file is emitted once it has been quiet for the settle delay.
// The channel is closed when watching stops.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.Document, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errors.New("connector is closed")
	}

	if err := c.Validate(ctx); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := c.addTree(watcher, c.Root()); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan domain.Document)
	go c.watchLoop(ctx, watcher, out)
	return out, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.Document) {
	defer close(out)
	defer watcher.Close()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(max(c.opts.Settle/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			path, isDir := c.handleFsEvent(event)
			switch {
			case path == "":
			case isDir:
				if err := c.addTree(watcher, path); err != nil {
					logger.Warn("watching %s: %v", path, err)
				}
				// Files may have landed before the directory was watched.
				for _, doc := range c.scan(ctx, path) {
					pending[doc.Path] = time.Now().Add(c.opts.Settle)
				}
			default:
				pending[path] = time.Now().Add(c.opts.Settle)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)

		case now := <-ticker.C:
			var due []string
			for path, at := range pending {
				if !now.Before(at) {
					due = append(due, path)
				}
			}
			slices.Sort(due)
			for _, path := range due {
				delete(pending, path)
				doc, err := c.document(path)
				if err != nil {
					logger.Debug("dropping %s: %v", path, err)
					continue
				}
				select {
				case out <- doc:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent returns the path to act on for an event. isDir reports a
// new directory that must be watched. Removals, renames and permission
// changes are ignored; cached entries outlive their files.
func (c *Connector) handleFsEvent(event fsnotify.Event) (path string, isDir bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if c.opts.SkipHidden {
		if rel, err := filepath.Rel(c.Root(), event.Name); err == nil && isHidden(rel) {
			return "", false
		}
	}

	info, err := os.Lstat(event.Name)
	if err != nil {
		return "", false
	}
	switch {
	case info.IsDir():
		if event.Has(fsnotify.Create) {
			return event.Name, true
		}
		return "", false
	case !info.Mode().IsRegular():
		return "", false
	case !c.accepts(info.Name()):
		return "", false
	}
	return event.Name, false
}

// addTree watches dir and its subdirectories.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && c.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// scan lists accepted files below dir.
func (c *Connector) scan(ctx context.Context, dir string) []domain.Document {
	sub := New(dir, c.opts)
	docs, err := sub.Walk(ctx)
	if err != nil {
		return nil
	}
	return docs
}

// accepts checks a file name against the extension filter.
func (c *Connector) accepts(name string) bool {
	if len(c.opts.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, want := range c.opts.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// document builds a Document for a regular file under the root.
func (c *Connector) document(path string) (domain.Document, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return domain.Document{}, err
	}
	if !info.Mode().IsRegular() {
		return domain.Document{}, fmt.Errorf("%w: not a regular file", domain.ErrUnsupportedType)
	}

	root := c.Root()
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return domain.Document{}, err
	}

	key := filepath.ToSlash(rel)
	if c.opts.KeyMode == domain.KeyModeName {
		key = info.Name()
	}

	return domain.Document{
		Key:     key,
		Path:    filepath.Join(root, rel),
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Close marks the connector closed. It is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
