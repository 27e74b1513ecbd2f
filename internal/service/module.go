package service

import "go.uber.org/fx"

var Module = fx.Module(
	"service",

	fx.Provide(
		fx.Annotate(
			NewGameService,
			fx.As(new(Gamer)),
		),
	),
)
