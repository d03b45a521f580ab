//go:build tinygo && baremetal

package main

import (
	"context"

	"torch/app"
	"torch/hal"
)

func main() {
	h := hal.New()
	sys, err := app.New(h, app.DefaultConfig())
	if err == nil {
		err = sys.Run(context.Background())
	}
	if err != nil {
		h.Logger().WriteLineString("torch: " + err.Error())
	}
	select {}
}
