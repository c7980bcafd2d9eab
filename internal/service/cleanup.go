package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/monitoring"
	"webmail/backend/internal/pool"
	"webmail/backend/internal/storage/jsonfile"
)

// TrashCleanupService 定期清理超过保留期的回收站邮件。
// 每个用户的清理作为独立任务提交到协程池执行。
type TrashCleanupService struct {
	store     *jsonfile.Store
	pool      *pool.WorkerPool
	metrics   *monitoring.Metrics
	log       *zap.Logger
	retention time.Duration
	interval  time.Duration
}

// NewTrashCleanupService 创建回收站清理服务
func NewTrashCleanupService(store *jsonfile.Store, workers *pool.WorkerPool, metrics *monitoring.Metrics, log *zap.Logger, retention, interval time.Duration) *TrashCleanupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TrashCleanupService{
		store:     store,
		pool:      workers,
		metrics:   metrics,
		log:       log,
		retention: retention,
		interval:  interval,
	}
}

// Run 按配置间隔循环清理，直到 ctx 取消。启动时先跑一轮。
func (s *TrashCleanupService) Run(ctx context.Context) {
	s.CleanupAll()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanupAll()
		}
	}
}

// CleanupAll 对所有用户执行一轮清理，等待全部任务完成后返回删除总数。
func (s *TrashCleanupService) CleanupAll() int {
	users := s.store.ListUsers()
	if len(users) == 0 {
		return 0
	}

	var (
		mu    sync.Mutex
		total int
		wg    sync.WaitGroup
	)
	cutoff := time.Now().Add(-s.retention)

	for _, userID := range users {
		userID := userID
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			removed := s.cleanupUser(userID, cutoff)
			if removed > 0 {
				mu.Lock()
				total += removed
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if total > 0 {
		s.log.Info("trash cleanup finished",
			zap.Int("users", len(users)), zap.Int("removed", total))
	}
	return total
}

// cleanupUser 清理单个用户的回收站，返回删除数量。
// 过期判断优先用 trashedAt，缺失时退回原始时间戳。
func (s *TrashCleanupService) cleanupUser(userID string, cutoff time.Time) int {
	lock := s.store.Lock(userID, domain.FolderTrash)
	lock.Lock()
	defer lock.Unlock()

	mails := s.store.ReadFolder(userID, domain.FolderTrash)
	if len(mails) == 0 {
		return 0
	}

	kept := mails[:0:0]
	for _, m := range mails {
		if s.expired(m, cutoff) {
			continue
		}
		kept = append(kept, m)
	}

	removed := len(mails) - len(kept)
	if removed == 0 {
		return 0
	}

	if err := s.store.WriteFolder(userID, domain.FolderTrash, kept); err != nil {
		s.log.Error("failed to persist cleaned trash",
			zap.String("user", userID), zap.Error(err))
		return 0
	}

	if s.metrics != nil {
		s.metrics.TrashPurged.Add(float64(removed))
	}
	s.log.Debug("trash cleaned",
		zap.String("user", userID), zap.Int("removed", removed))
	return removed
}

func (s *TrashCleanupService) expired(m domain.Mail, cutoff time.Time) bool {
	ref := m.Timestamp.Time
	if m.TrashedAt != nil && !m.TrashedAt.IsZero() {
		ref = m.TrashedAt.Time
	}
	if ref.IsZero() {
		return false
	}
	return ref.Before(cutoff)
}
