package migration

import (
	alertdomain "github.com/haulbiz/dispatch/internal/alert/domain"
	"github.com/haulbiz/dispatch/internal/config"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	paymentdomain "github.com/haulbiz/dispatch/internal/payment/domain"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// mysql/sqlite development setups migrate from the models directly
		return conn.AutoMigrate(
			&referencedomain.Customer{},
			&referencedomain.Site{},
			&referencedomain.Material{},
			&referencedomain.Truck{},
			&referencedomain.Driver{},
			&referencedomain.Trailer{},
			&jobdomain.Job{},
			&jobdomain.StatusEvent{},
			&pricelistdomain.Entry{},
			&statementdomain.Statement{},
			&statementdomain.Line{},
			&paymentdomain.Payment{},
			&paymentdomain.Allocation{},
			&alertdomain.Alert{},
		)
	}),
)
