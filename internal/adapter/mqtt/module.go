package mqtt

import (
	"go.uber.org/fx"
)

var Module = fx.Module(
	"mqtt",

	fx.Provide(NewClient),

	fx.Invoke(func(lc fx.Lifecycle, c *Client) {
		lc.Append(fx.Hook{
			OnStart: c.Start,
			OnStop:  c.Stop,
		})
	}),
)
