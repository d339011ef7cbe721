package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/haulbiz/dispatch/internal/config"
	"github.com/haulbiz/dispatch/internal/logger"
	"github.com/haulbiz/dispatch/internal/migration"
	"github.com/haulbiz/dispatch/internal/server"
	"github.com/haulbiz/dispatch/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
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
