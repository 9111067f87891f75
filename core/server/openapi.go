package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// openAPISpec documents the HTTP surface. Served statically; the document is
// not generated from the handlers.
var openAPISpec = gin.H{
	"openapi": "3.1.0",
	"info":    gin.H{"title": "SmartPark API", "version": "1.0.0"},
	"paths": gin.H{
		"/healthz": gin.H{
			"get": gin.H{"summary": "Process liveness", "responses": gin.H{"200": gin.H{"description": "ok"}}},
		},
		"/healthzdb": gin.H{
			"get": gin.H{
				"summary": "Store readiness",
				"responses": gin.H{
					"200": gin.H{"description": "ok"},
					"503": gin.H{"description": "db error"},
				},
			},
		},
		"/sensor_event": gin.H{
			"post": gin.H{
				"summary": "Ingest one sensor event",
				"requestBody": gin.H{
					"required": true,
					"content": gin.H{
						"application/json": gin.H{
							"schema": gin.H{
								"type": "object",
								"properties": gin.H{
									"sensor_id":          gin.H{"type": "integer"},
									"estacionamiento_id": gin.H{"type": "string"},
									"estado":             gin.H{"type": "string", "enum": []string{"ocupado", "libre"}},
									"ts":                 gin.H{"type": "string", "format": "date-time"},
									"payload":            gin.H{"type": "object"},
								},
								"required": []string{"sensor_id", "estacionamiento_id", "estado"},
							},
						},
					},
				},
				"responses": gin.H{
					"201": gin.H{"description": "event accepted"},
					"400": gin.H{"description": "invalid payload"},
					"502": gin.H{"description": "store write failed"},
				},
			},
		},
		"/status_overview": gin.H{
			"get": gin.H{"summary": "Recent events and records", "responses": gin.H{"200": gin.H{"description": "ok"}}},
		},
		"/registro_data": gin.H{
			"get": gin.H{
				"summary": "List normalized records",
				"parameters": []gin.H{
					{"name": "limit", "in": "query", "schema": gin.H{"type": "integer", "default": 50}},
					{"name": "estacionamiento_id", "in": "query", "schema": gin.H{"type": "string"}},
					{"name": "sensor_id", "in": "query", "schema": gin.H{"type": "string"}},
				},
				"responses": gin.H{"200": gin.H{"description": "ok"}},
			},
		},
	},
}

const docsHTML = `<!DOCTYPE html>
<html>
  <head>
    <title>SmartPark API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: "/openapi.json",
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>
`

func (s *Server) handleOpenAPI(c *gin.Context) {
	c.JSON(http.StatusOK, openAPISpec)
}

func (s *Server) handleDocs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(docsHTML))
}
