package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

// ErrNotFound 表示临时文件不存在或已过期。
var ErrNotFound = errors.New("temporary file not found")

var validTempNamePattern = regexp.MustCompile(`^[a-f0-9]{32}\.pdf$`)

// TempStore 把生成的 PDF 暂存在磁盘上，过期时间记录在内存中。
type TempStore struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

// NewTempStore 创建（必要时新建目录）临时存储。
func NewTempStore(dir string, ttl time.Duration) (*TempStore, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("temp ttl must be greater than 0")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &TempStore{dir: dir, ttl: ttl, now: time.Now, entries: map[string]time.Time{}}, nil
}

// Put 写入文件并返回随机文件名与过期时间。
func (s *TempStore) Put(data []byte) (string, time.Time, error) {
	id, err := randomID()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate name: %w", err)
	}
	name := id + ".pdf"
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o600); err != nil {
		return "", time.Time{}, fmt.Errorf("write temp file: %w", err)
	}
	expires := s.now().Add(s.ttl)

	s.mu.Lock()
	s.entries[name] = expires
	s.mu.Unlock()
	return name, expires, nil
}

// Get 读取未过期的文件。
func (s *TempStore) Get(name string) ([]byte, error) {
	if !validTempNamePattern.MatchString(name) {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	expires, ok := s.entries[name]
	s.mu.Unlock()
	if !ok || !s.now().Before(expires) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read temp file: %w", err)
	}
	return data, nil
}

// Sweep 删除所有已过期的文件，返回删除的数量。
func (s *TempStore) Sweep() int {
	now := s.now()
	var expired []string
	s.mu.Lock()
	for name, expires := range s.entries {
		if !now.Before(expires) {
			expired = append(expired, name)
			delete(s.entries, name)
		}
	}
	s.mu.Unlock()

	for _, name := range expired {
		_ = os.Remove(filepath.Join(s.dir, name))
	}
	return len(expired)
}

// RunSweeper 按 interval 周期清理，直到 ctx 结束。
func (s *TempStore) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func randomID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
