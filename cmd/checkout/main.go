package main

import (
	"go.uber.org/fx"

	"github.com/devroom/checkout/internal/checkout"
	"github.com/devroom/checkout/internal/config"
	"github.com/devroom/checkout/internal/credential"
	"github.com/devroom/checkout/internal/gateway"
	"github.com/devroom/checkout/internal/observability"
	"github.com/devroom/checkout/internal/server"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,

		// Checkout domains
		credential.Module,
		gateway.Module,
		checkout.Module,

		server.Module,
	)
	app.Run()
}
