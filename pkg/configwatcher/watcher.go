package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"
	"zhitu_backend/internal/config"
	"zhitu_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader 在配置文件变化并成功重新加载后调用
type Reloader func(cfg *config.Config)

type Watcher struct {
	file     string
	debounce time.Duration

	mu        sync.Mutex
	reloaders []Reloader
}

// New 监听 configFile，例如 configs/config.yaml
func New(configFile string) *Watcher {
	return &Watcher{file: configFile, debounce: time.Second}
}

func (w *Watcher) OnReload(r Reloader) {
	w.mu.Lock()
	w.reloaders = append(w.reloaders, r)
	w.mu.Unlock()
}

// Run 阻塞直到 ctx 取消。监听所在目录，编辑器以重命名方式保存时也能收到事件。
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.file)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// 防抖
			timer.Reset(w.debounce)
		case <-timer.C:
			w.reload(filepath.Dir(abs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload(dir string) {
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		logger.Log.Error("Failed to reload config", zap.Error(err))
		return
	}

	w.mu.Lock()
	reloaders := append([]Reloader(nil), w.reloaders...)
	w.mu.Unlock()

	for _, r := range reloaders {
		r(cfg)
	}
	logger.Log.Info("Config reloaded", zap.String("file", w.file))
}
