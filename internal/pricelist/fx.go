package pricelist

import (
	"github.com/haulbiz/dispatch/internal/pricelist/repository"
	"github.com/haulbiz/dispatch/internal/pricelist/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricelist.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
