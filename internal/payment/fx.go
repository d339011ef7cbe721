package payment

import (
	"github.com/haulbiz/dispatch/internal/payment/repository"
	"github.com/haulbiz/dispatch/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
