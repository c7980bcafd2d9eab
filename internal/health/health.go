package health

import (
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"webmail/backend/internal/storage/jsonfile"
)

// HealthChecker 健康检查器
type HealthChecker struct {
	health healthcheck.Handler
	store  *jsonfile.Store
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(store *jsonfile.Store, logger *zap.Logger) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		store:  store,
		logger: logger,
	}

	hc.addChecks()
	return hc
}

// addChecks 添加健康检查
func (hc *HealthChecker) addChecks() {
	// 存储目录可写检查
	hc.health.AddLivenessCheck("storage", func() error {
		return hc.store.Health()
	})

	// 协程数量检查
	hc.health.AddReadinessCheck("goroutines", healthcheck.GoroutineCountCheck(1000))
}

// Handler 返回健康检查处理器（/live 和 /ready）
func (hc *HealthChecker) Handler() http.Handler {
	return hc.health
}
