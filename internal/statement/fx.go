package statement

import (
	"github.com/haulbiz/dispatch/internal/statement/repository"
	"github.com/haulbiz/dispatch/internal/statement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("statement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
