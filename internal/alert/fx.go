package alert

import (
	"context"

	"github.com/haulbiz/dispatch/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert.scanner",
	fx.Provide(service.New),
	fx.Invoke(func(lc fx.Lifecycle, scanner *service.Scanner) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				scanner.Start()
				return nil
			},
			OnStop: scanner.Stop,
		})
	}),
)
