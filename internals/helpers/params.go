package helper

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ParamID parses a positive numeric route parameter. ok=false covers
// absent, non-numeric and non-positive values alike.
func ParamID(c *fiber.Ctx, name string) (int64, bool) {
	n, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
