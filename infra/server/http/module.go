package http

import (
	nethttp "net/http"

	"go.uber.org/fx"
)

var Module = fx.Module("http_server",
	fx.Provide(New),
	// The server is constructed for its lifecycle hooks even when nothing
	// else depends on it.
	fx.Invoke(func(*nethttp.Server) {}),
)
