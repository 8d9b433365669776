package http

import (
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// OpenAPIPath is read on every request so the document can be edited
// without a restart.
var OpenAPIPath = "api/openapi.yaml"

const docsTitle = "cityradius API"

var swaggerUIHTML = fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%s</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '%s', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`, docsTitle, "/docs/openapi.json")

// SetupDocs serves Swagger UI at /docs and the OpenAPI document as YAML
// (as written) and JSON (parsed and validated).
func SetupDocs(app *fiber.App) {
	docs := app.Group("/docs")

	docs.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(swaggerUIHTML)
	})

	docs.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		data, err := os.ReadFile(OpenAPIPath)
		if err != nil {
			return errNotFound(c, "openapi document not found")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(data)
	})

	docs.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := loadOpenAPI(c)
		if err != nil {
			if os.IsNotExist(err) {
				return errNotFound(c, "openapi document not found")
			}
			LoggerFromCtx(c.UserContext()).Error("openapi document invalid", "path", OpenAPIPath, "error", err)
			return errInternal(c, "openapi document invalid")
		}
		return c.JSON(doc)
	})
}

func loadOpenAPI(c *fiber.Ctx) (*openapi3.T, error) {
	if _, err := os.Stat(OpenAPIPath); err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(OpenAPIPath)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(c.UserContext()); err != nil {
		return nil, err
	}
	return doc, nil
}
