// Package math is a sample application: one service and the controller
// that exposes it under /alexlee.
package math

import "github.com/km-arc/go-mvc/framework/stereotype"

func init() {
	stereotype.Component[mathServiceImpl](stereotype.Implements[MathService]())
	stereotype.Controller[MathController](
		stereotype.RequestMapping("/alexlee"),
		stereotype.Handle("/add", "Add", "a", "b"),
	)
}

// MathService adds integers.
type MathService interface {
	Add(a, b int) int
}

type mathServiceImpl struct{}

func (mathServiceImpl) Add(a, b int) int { return a + b }
