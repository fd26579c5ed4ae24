package openapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	apiName        = "NeoCare360 Production API"
	apiDescription = "Hospital operations dashboard API"
)

// Endpoint describes one dashboard route for the index and the OpenAPI
// document.
type Endpoint struct {
	URL         string   `json:"url"`
	Method      string   `json:"method"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
	Produces    string   `json:"produces,omitempty"`
}

// Section is a named group of endpoints, such as "resources".
type Section struct {
	Name      string
	Endpoints map[string]Endpoint
	order     []string
}

// Catalog is the ordered set of sections served by the API.
type Catalog struct {
	sections []*Section
	index    map[string]*Section
}

func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]*Section)}
}

// Add registers an endpoint under section with the given key. Adding the same
// key twice replaces the earlier endpoint.
func (c *Catalog) Add(section, key string, ep Endpoint) {
	s, ok := c.index[section]
	if !ok {
		s = &Section{Name: section, Endpoints: make(map[string]Endpoint)}
		c.sections = append(c.sections, s)
		c.index[section] = s
	}
	if _, exists := s.Endpoints[key]; !exists {
		s.order = append(s.order, key)
	}
	if ep.Method == "" {
		ep.Method = http.MethodGet
	}
	if ep.Parameters == nil {
		ep.Parameters = []string{}
	}
	s.Endpoints[key] = ep
}

// Endpoints lists every endpoint in registration order.
func (c *Catalog) Endpoints() []Endpoint {
	var out []Endpoint
	for _, s := range c.sections {
		for _, key := range s.order {
			out = append(out, s.Endpoints[key])
		}
	}
	return out
}

// DefaultCatalog lists the dashboard endpoints under /api.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Add("overview", "dashboard", Endpoint{
		URL:         "/api/overview/dashboard",
		Description: "Complete dashboard overview data",
		Parameters:  []string{"hospital_id", "county_id", "timeframe"},
	})
	c.Add("patients", "monitoring", Endpoint{
		URL:         "/api/patients/monitoring",
		Description: "Active patient monitoring data",
		Parameters:  []string{"hospital_id", "ward", "status", "limit"},
	})
	c.Add("patients", "vitals", Endpoint{
		URL:         "/api/patients/vitals/live",
		Description: "Live patient vital signs",
		Parameters:  []string{"hospital_id", "limit"},
	})
	c.Add("patients", "distribution", Endpoint{
		URL:         "/api/patients/distribution",
		Description: "Patient geographic distribution",
		Parameters:  []string{"hospital_id", "county_id"},
	})
	c.Add("icu", "command-center", Endpoint{
		URL:         "/api/icu/command-center",
		Description: "ICU capacity, patients, and equipment",
		Parameters:  []string{"hospital_id"},
	})
	c.Add("clinical", "kpis", Endpoint{
		URL:         "/api/kpis/clinical",
		Description: "Clinical key performance indicators",
		Parameters:  []string{"hospital_id", "timeframe"},
	})
	c.Add("departments", "performance", Endpoint{
		URL:         "/api/departments/performance",
		Description: "Department performance metrics",
		Parameters:  []string{"hospital_id", "days"},
	})
	c.Add("departments", "export", Endpoint{
		URL:         "/api/departments/performance/export",
		Description: "Department performance workbook",
		Parameters:  []string{"hospital_id", "days"},
		Produces:    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	c.Add("resources", "beds", Endpoint{
		URL:         "/api/resources/beds",
		Description: "Hospital bed resources and occupancy",
		Parameters:  []string{"hospital_id"},
	})
	c.Add("resources", "staff", Endpoint{
		URL:         "/api/resources/staff",
		Description: "Staff resources and nurse-patient ratios",
		Parameters:  []string{"hospital_id"},
	})
	c.Add("resources", "supplies", Endpoint{
		URL:         "/api/resources/supplies",
		Description: "Medical supply inventory status",
		Parameters:  []string{"hospital_id"},
	})
	c.Add("alerts", "critical", Endpoint{
		URL:         "/api/alerts/critical",
		Description: "Critical hospital alerts",
		Parameters:  []string{"hospital_id", "limit"},
	})
	c.Add("alerts", "clinical", Endpoint{
		URL:         "/api/alerts/clinical",
		Description: "Clinical patient alerts by category",
		Parameters:  []string{"hospital_id"},
	})
	c.Add("laboratory", "metrics", Endpoint{
		URL:         "/api/laboratory/metrics",
		Description: "Laboratory testing metrics and turnaround times",
		Parameters:  []string{"hospital_id", "timeframe"},
	})
	return c
}

// RateLimit is advertised by the index.
type RateLimit struct {
	RequestsPerSecond float64  `json:"requestsPerSecond"`
	Burst             int      `json:"burst"`
	Headers           []string `json:"headers"`
}

// Generator serves the endpoint index and an OpenAPI 3.0 document built from
// the same catalog.
type Generator struct {
	catalog   *Catalog
	version   string
	baseURL   string
	rateLimit RateLimit
	now       func() time.Time
}

func NewGenerator(catalog *Catalog, version, baseURL string, rl RateLimit) *Generator {
	if rl.Headers == nil {
		rl.Headers = []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	}
	return &Generator{catalog: catalog, version: version, baseURL: baseURL, rateLimit: rl, now: time.Now}
}

// Index is the machine-readable description served at /api.
func (g *Generator) Index() map[string]interface{} {
	endpoints := make(map[string]interface{}, len(g.catalog.sections))
	for _, s := range g.catalog.sections {
		endpoints[s.Name] = s.Endpoints
	}
	return map[string]interface{}{
		"name":          apiName,
		"version":       g.version,
		"description":   apiDescription,
		"documentation": "/api/docs",
		"status":        "operational",
		"timestamp":     g.now().UTC(),
		"endpoints":     endpoints,
		"authentication": map[string]string{
			"type":   "Bearer Token",
			"header": "Authorization: Bearer <token>",
		},
		"rateLimit": g.rateLimit,
	}
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := make(map[string]interface{})
	var tags []map[string]string
	for _, s := range g.catalog.sections {
		tags = append(tags, map[string]string{"name": s.Name})
		for _, key := range s.order {
			ep := s.Endpoints[key]
			op := map[string]interface{}{
				"summary":     ep.Description,
				"operationId": s.Name + "-" + key,
				"tags":        []string{s.Name},
				"parameters":  buildParameters(ep.Parameters),
				"security":    []map[string][]string{{"bearerAuth": {}}},
				"responses":   buildResponses(ep.Produces),
			}
			paths[ep.URL] = map[string]interface{}{
				methodKey(ep.Method): op,
			}
		}
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       apiName,
			"version":     g.version,
			"description": apiDescription,
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"tags":  tags,
		"paths": paths,
		"components": map[string]interface{}{
			"securitySchemes": map[string]interface{}{
				"bearerAuth": map[string]string{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"message": map[string]string{"type": "string"},
					},
				},
			},
		},
	}
}

func methodKey(method string) string {
	switch method {
	case http.MethodPost:
		return "post"
	case http.MethodPut:
		return "put"
	case http.MethodDelete:
		return "delete"
	default:
		return "get"
	}
}

// Query parameter schemas, keyed by name. Unknown names are plain strings.
var parameterSchemas = map[string]map[string]interface{}{
	"hospital_id": {"type": "string", "format": "uuid"},
	"county_id":   {"type": "string", "format": "uuid"},
	"limit":       {"type": "integer", "minimum": 1},
	"days":        {"type": "integer", "minimum": 1, "default": 30},
	"timeframe":   {"type": "string", "example": "24h"},
}

func buildParameters(names []string) []map[string]interface{} {
	params := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		schema, ok := parameterSchemas[name]
		if !ok {
			schema = map[string]interface{}{"type": "string"}
		}
		params = append(params, map[string]interface{}{
			"name":     name,
			"in":       "query",
			"required": false,
			"schema":   schema,
		})
	}
	return params
}

func buildResponses(produces string) map[string]interface{} {
	ok := map[string]interface{}{
		"description": "Success. X-Degraded lists sections served from fallback values.",
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]string{"type": "object"},
			},
		},
	}
	if produces != "" {
		ok["content"] = map[string]interface{}{
			produces: map[string]interface{}{
				"schema": map[string]string{"type": "string", "format": "binary"},
			},
		}
	}
	errorResponse := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"description": description,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": map[string]string{"$ref": "#/components/schemas/Error"},
				},
			},
		}
	}
	return map[string]interface{}{
		"200": ok,
		"400": errorResponse("Invalid query parameter"),
		"401": errorResponse("Missing or invalid token"),
		"403": errorResponse("Role not permitted"),
		"429": errorResponse("Rate limit exceeded"),
	}
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>NeoCare360 API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/api/openapi.json",
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [
        SwaggerUIBundle.presets.apis,
        SwaggerUIBundle.SwaggerUIStandalonePreset
      ],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`

// RegisterRoutes mounts the index, the OpenAPI document and the Swagger UI
// on the /api group.
func (g *Generator) RegisterRoutes(apiGroup *echo.Group) {
	apiGroup.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.Index())
	})
	apiGroup.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
	apiGroup.GET("/docs", func(c echo.Context) error {
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}
