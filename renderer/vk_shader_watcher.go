package renderer

import (
	"context"
	"log"
	"path/filepath"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// ShaderWatcher flags changes to compiled shaders in a directory. It never touches Vulkan itself, the render loop
// polls Changed and rebuilds the pipelines on its own goroutine. Any number of writes between two polls count as
// one change.
type ShaderWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	dirty   atomic.Bool
}

func NewShaderWatcher(dir string) (*ShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create shader watcher")
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch shader directory %s", dir)
	}
	log.Printf("Watching %s for shader changes", dir)
	return &ShaderWatcher{
		dir:     dir,
		watcher: watcher,
	}, nil
}

// Run consumes watcher events until ctx is done or the watcher is closed.
func (sw *ShaderWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if isShaderUpdate(event) {
				log.Printf("Shader %s changed", filepath.Base(event.Name))
				sw.dirty.Store(true)
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Shader watcher error: %v", err)
		}
	}
}

// Changed reports whether a shader changed since the last call.
func (sw *ShaderWatcher) Changed() bool {
	return sw.dirty.Swap(false)
}

func (sw *ShaderWatcher) Close() error {
	return sw.watcher.Close()
}

func isShaderUpdate(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".spv" {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
