package scheduler

import (
	"fmt"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/config"
	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/PohSayKeong/fundl/internal/repository"
	"github.com/go-co-op/gocron/v2"
)

// Job 周期任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	config    config.TaskConfig
	jobs      []Job
}

// NewManager 创建新的任务管理器
func NewManager(cfg config.TaskConfig) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Manager{
		scheduler: s,
		config:    cfg,
	}, nil
}

// RegisterJobs 注册配置中启用的任务
func (m *Manager) RegisterJobs(reader *chain.Reader, repo *repository.ProjectRepository) error {
	if !m.config.OwnerSyncEnabled {
		logger.Info("Owner sync job disabled")
		return nil
	}
	return m.Register(NewOwnerSyncJob(reader, repo, m.config.Interval))
}

// Register 注册任务，同名任务运行中时顺延到下一周期
func (m *Manager) Register(job Job) error {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.GetName(), err)
	}
	m.jobs = append(m.jobs, job)
	logger.Info("Registered job %s", job.GetName())
	return nil
}

// Jobs 已注册的任务
func (m *Manager) Jobs() []Job {
	return m.jobs
}

// Start 启动任务管理器
func (m *Manager) Start() {
	m.scheduler.Start()
	logger.Info("Task manager started with %d jobs", len(m.jobs))
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
