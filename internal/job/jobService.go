package job

import (
	"github.com/intigra/ragapi/internal/domain/jobModel"
)

// Service bundles the queue the handlers feed with the registry the workers
// finalize against.
type Service struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	Registry          jobModel.JobRegistry
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	Registry          jobModel.JobRegistry
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		Registry:          cfg.Registry,
	}
}
