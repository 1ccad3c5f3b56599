package migration

import (
	"github.com/clearvia/payops/internal/config"
	customfeedomain "github.com/clearvia/payops/internal/customfee/domain"
	exchangeratedomain "github.com/clearvia/payops/internal/exchangerate/domain"
	feeappdomain "github.com/clearvia/payops/internal/feeapplication/domain"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	merchantdomain "github.com/clearvia/payops/internal/merchant/domain"
	"github.com/clearvia/payops/internal/seed"
	shopdomain "github.com/clearvia/payops/internal/shop/domain"
	transactiondomain "github.com/clearvia/payops/internal/transaction/domain"
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
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres deployments (local sqlite, mysql) rely on gorm's
			// schema derivation instead of the SQL migration set.
			if err := conn.AutoMigrate(
				&feetypedomain.FeeType{},
				&merchantdomain.Merchant{},
				&merchantdomain.Settings{},
				&shopdomain.Shop{},
				&shopdomain.Settings{},
				&customfeedomain.CustomFee{},
				&feeappdomain.FeeApplication{},
				&exchangeratedomain.ExchangeRate{},
				&transactiondomain.Transaction{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureFeeCatalog(conn)
	}),
)
