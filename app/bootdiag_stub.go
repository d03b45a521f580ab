//go:build !(tinygo && bootdebug)

package app

import "torch/hal"

func bootStep(hal.HAL, string) {}
