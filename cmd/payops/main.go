package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/clearvia/payops/internal/clock"
	"github.com/clearvia/payops/internal/config"
	"github.com/clearvia/payops/internal/customfee"
	"github.com/clearvia/payops/internal/exchangerate"
	"github.com/clearvia/payops/internal/feeapplication"
	"github.com/clearvia/payops/internal/feetype"
	"github.com/clearvia/payops/internal/logger"
	"github.com/clearvia/payops/internal/merchant"
	"github.com/clearvia/payops/internal/migration"
	"github.com/clearvia/payops/internal/observability/metrics"
	"github.com/clearvia/payops/internal/scheduler"
	"github.com/clearvia/payops/internal/server"
	"github.com/clearvia/payops/internal/settlement"
	"github.com/clearvia/payops/internal/shop"
	"github.com/clearvia/payops/internal/transaction"
	"github.com/clearvia/payops/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domains
		feetype.Module,
		merchant.Module,
		shop.Module,
		customfee.Module,
		exchangerate.Module,
		feeapplication.Module,
		transaction.Module,
		settlement.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
