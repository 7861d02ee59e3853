package api

import (
	"log"
	"net/http"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

// SwaggerInfo describes the API for the /swagger endpoints. Host is filled
// in by StartServer.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "sdbuf REST API",
	Description:      "Encode JSON to sdbuf buffers, decode buffers and keep encoded records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	<title>sdbuf API Documentation</title>
	<link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	<div id="swagger-ui"></div>
	<script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	<script>
	  window.onload = function() {
	    SwaggerUIBundle({
	      url: '/swagger/swagger.json',
	      dom_id: '#swagger-ui',
	      presets: [
	        SwaggerUIBundle.presets.apis,
	        SwaggerUIBundle.presets.standalone
	      ]
	    });
	  };
	</script>
</body>
</html>`

// handleSwagger serves the UI page and the API document as JSON or YAML.
func handleSwagger(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/swagger/", "/swagger/index.html":
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerUI))

	case "/swagger/swagger.json":
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			log.Printf("Error generating swagger doc: %v", err)
			http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		_, _ = w.Write([]byte(doc))

	case "/swagger/swagger.yaml":
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err == nil {
			var out []byte
			if out, err = swaggerYAML(doc); err == nil {
				w.Header().Set("Content-Type", "application/yaml")
				_, _ = w.Write(out)
				return
			}
		}
		log.Printf("Error generating swagger doc: %v", err)
		http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)

	default:
		http.NotFound(w, r)
	}
}

// swaggerYAML converts the JSON document to YAML. JSON is valid YAML, so
// a plain decode and re-encode is enough.
func swaggerYAML(doc string) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal([]byte(doc), &v); err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/encode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["codec"],
                "summary": "Encode a JSON record",
                "consumes": ["application/json"],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "record", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Encoded buffer", "schema": {"type": "string", "format": "binary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/decode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["codec"],
                "summary": "Decode a buffer",
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "buffer", "in": "body", "required": true, "schema": {"type": "string", "format": "binary"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DecodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/records": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["records"],
                "summary": "List record IDs",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["records"],
                "summary": "Store a record",
                "description": "Accepts a JSON record or an encoded buffer (application/octet-stream)",
                "consumes": ["application/json", "application/octet-stream"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "record", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.RecordResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/records/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["records"],
                "summary": "Get a record",
                "description": "Returns the decoded views, or the raw buffer with Accept: application/octet-stream",
                "produces": ["application/json", "application/octet-stream"],
                "parameters": [
                    {"type": "string", "description": "Record ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.RecordResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["records"],
                "summary": "Replace a record",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Record ID", "name": "id", "in": "path", "required": true},
                    {"name": "record", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.RecordResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["records"],
                "summary": "Delete a record",
                "parameters": [
                    {"type": "string", "description": "Record ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"}
            }
        },
        "api.DecodeResponse": {
            "type": "object",
            "properties": {
                "values": {"type": "object"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/codec.EntryView"}}
            }
        },
        "api.RecordResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "size": {"type": "integer"},
                "values": {"type": "object"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/codec.EntryView"}}
            }
        },
        "codec.EntryView": {
            "type": "object",
            "properties": {
                "key": {"type": "integer"},
                "type": {"type": "string"},
                "count": {"type": "integer"},
                "elem_size": {"type": "integer"},
                "value": {}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`
