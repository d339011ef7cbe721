package job

import (
	"github.com/haulbiz/dispatch/internal/job/repository"
	"github.com/haulbiz/dispatch/internal/job/service"
	"go.uber.org/fx"
)

var Module = fx.Module("job.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
