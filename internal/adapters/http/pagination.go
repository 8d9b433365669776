package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// PaginatedResponse wraps a page of results.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes an offset/limit page over Total results.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// pageLink is one RFC 8288 relation and the offset it points at.
type pageLink struct {
	rel    string
	offset int
}

// links returns first, prev (when not on the first page), next (when more
// results follow) and last, in that order.
func (p Pagination) links() []pageLink {
	out := []pageLink{{"first", 0}}
	if p.Offset > 0 {
		out = append(out, pageLink{"prev", max(p.Offset-p.Limit, 0)})
	}
	if p.Offset+p.Limit < p.Total {
		out = append(out, pageLink{"next", p.Offset + p.Limit})
	}
	return append(out, pageLink{"last", max(p.Total-p.Limit, 0)})
}

// SetLinkHeaders sets the Link header for a paginated response. Each link
// repeats the request's other query parameters.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	c.Request().URI().QueryArgs().CopyTo(args)
	args.Set("limit", strconv.Itoa(p.Limit))

	parts := make([]string, 0, 4)
	for _, l := range p.links() {
		args.Set("offset", strconv.Itoa(l.offset))
		parts = append(parts, fmt.Sprintf(`<%s?%s>; rel="%s"`, c.Path(), args.String(), l.rel))
	}
	c.Set(fiber.HeaderLink, strings.Join(parts, ", "))
}
