package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the header carrying the request correlation id.
const HeaderName = "X-Ray-ID"

// New returns a middleware that ensures every request has a ray id. A caller
// supplied id is honored; otherwise one is generated. The id is stored in the
// context locals under "ray_id" and echoed on the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
