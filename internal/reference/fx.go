package reference

import (
	"github.com/haulbiz/dispatch/internal/reference/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("reference.registry",
	fx.Provide(repository.Provide),
)
