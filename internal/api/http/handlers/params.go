package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// param returns a copy of a route parameter; fiber's value is only valid
// until the handler returns.
func param(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.Params(key))
}

func query(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.Query(key))
}
