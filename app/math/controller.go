package math

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/km-arc/go-mvc/framework/app"
)

// MathController serves /alexlee/add?a=3&b=4 → "3+4=7".
type MathController struct {
	app.Controller

	mathService MathService `inject:""`
}

// Add writes "a+b=sum". Operands that are not integers fail the call
// without a body.
func (c *MathController) Add(a, b string, w http.ResponseWriter) error {
	x, err := strconv.Atoi(a)
	if err != nil {
		return fmt.Errorf("math: operand a: %w", err)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return fmt.Errorf("math: operand b: %w", err)
	}
	return c.Response(w).Text(a + "+" + b + "=" + strconv.Itoa(c.mathService.Add(x, y)))
}
