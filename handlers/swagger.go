package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>academy-cms — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the CMS endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "academy-cms", "version": "v0.1.0" },
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Exchange an OIDC ID token for an access token",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"idToken":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "403": { "description": "not an admin" } }
      }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/cms/sections/{name}": {
      "get": { "summary": "Load a content section with its save baseline", "responses": { "200": { "description": "payload and baseline" } } },
      "put": {
        "summary": "Save a content section (optimistic concurrency)",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"payload":{"type":"object"},"baseline":{"type":"string","format":"date-time"},"force":{"type":"boolean"},"dependents":{"type":"array","items":{"type":"string"}}}}}}},
        "responses": {
          "200": { "description": "saved; new baseline returned" },
          "409": { "description": "someone saved since the baseline; lastEditor and lastEditedAt returned" },
          "422": { "description": "validation failed" },
          "423": { "description": "a save for this section is already in flight" }
        }
      }
    },
    "/api/v1/cms/sections/{name}/items/{key}": {
      "delete": { "summary": "Delete one keyed item from a section", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/v1/cms/sections/{name}/audit": {
      "get": { "summary": "Recent save attempts for a section", "responses": { "200": { "description": "audit entries" } } }
    },
    "/api/v1/admins": {
      "get": { "summary": "List admins", "responses": { "200": { "description": "admin list" } } },
      "post": { "summary": "Add an admin (super-admin only)", "responses": { "201": { "description": "created" } } }
    },
    "/api/v1/media/upload": {
      "post": { "summary": "Upload a media asset", "responses": { "201": { "description": "stored; object key returned" } } }
    },
    "/healthz": { "get": { "summary": "Liveness probe", "responses": { "200": { "description": "ok" } } } },
    "/readyz": { "get": { "summary": "Readiness probe with dependency status", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
