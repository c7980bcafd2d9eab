package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Sequence 跨重启持久的单调递增邮件 ID 计数器。
// 启动时从计数器文件加载，之后每次分配在持有锁的情况下
// 先落盘再返回，保证崩溃重启后不会重发已用过的 ID。
type Sequence struct {
	mu      sync.Mutex
	path    string
	current int
	log     *zap.Logger
}

// NewSequence 加载或初始化计数器文件
func NewSequence(path string, log *zap.Logger) (*Sequence, error) {
	if log == nil {
		log = zap.NewNop()
	}
	seq := &Sequence{path: path, log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read counter file: %w", err)
		}
		return seq, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		log.Warn("malformed counter file, restarting from zero",
			zap.String("path", path), zap.Error(err))
		return seq, nil
	}
	seq.current = value
	return seq, nil
}

// Next 分配下一个 ID。递增与持久化是一个原子单元：
// 落盘失败时回滚内存值并返回错误，而不是发出一个可能重复的 ID。
func (q *Sequence) Next() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.current++
	if err := q.persist(); err != nil {
		q.current--
		return 0, err
	}
	return q.current, nil
}

// Current 返回最近一次分配的 ID（测试与诊断用）
func (q *Sequence) Current() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

func (q *Sequence) persist() error {
	if err := os.MkdirAll(filepath.Dir(q.path), 0755); err != nil {
		return fmt.Errorf("failed to create counter directory: %w", err)
	}
	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(q.current)), 0644); err != nil {
		return fmt.Errorf("failed to write counter file: %w", err)
	}
	if err := os.Rename(tmp, q.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace counter file: %w", err)
	}
	return nil
}
