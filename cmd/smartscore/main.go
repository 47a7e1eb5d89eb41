package main

import (
	"SmartScore/internal/bootstrap"
	pkg "SmartScore/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()

	app := fx.New(
		pkg.EchoModules,
	)

	app.Run()
}
