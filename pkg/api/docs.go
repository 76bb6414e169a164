package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/layouts": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["layouts"],
                "summary": "List layouts",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/decode/{layout}": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["codec"],
                "summary": "Decode a payload",
                "parameters": [
                    {"type": "string", "description": "Layout name", "name": "layout", "in": "path", "required": true},
                    {"type": "boolean", "description": "Decode records until the body is exhausted", "name": "all", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DecodeResponse"}},
                    "404": {"description": "Unknown layout", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "422": {"description": "Truncated or malformed payload", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/encode/{layout}": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/octet-stream"],
                "tags": ["codec"],
                "summary": "Encode a record",
                "parameters": [
                    {"type": "string", "description": "Layout name", "name": "layout", "in": "path", "required": true},
                    {"description": "Field values", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Encoded bytes", "schema": {"type": "file"}},
                    "400": {"description": "Invalid field value", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Unknown layout", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/archive": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["archive"],
                "summary": "List archived payloads",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of entries", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/archive/{layout}": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["archive"],
                "summary": "Archive a payload",
                "parameters": [
                    {"type": "string", "description": "Layout name", "name": "layout", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.ArchiveEntryResponse"}},
                    "422": {"description": "Payload does not match the layout", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/archive/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/octet-stream"],
                "tags": ["archive"],
                "summary": "Fetch an archived payload",
                "parameters": [
                    {"type": "string", "description": "Entry id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Raw bytes", "schema": {"type": "file"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["archive"],
                "summary": "Delete an archived payload",
                "parameters": [
                    {"type": "string", "description": "Entry id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/archive/{id}/decoded": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["archive"],
                "summary": "Decode an archived payload",
                "parameters": [
                    {"type": "string", "description": "Entry id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
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
        "api.ArchiveEntryResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "layout": {"type": "string"},
                "captured": {"type": "string", "format": "date-time"},
                "size": {"type": "integer"}
            }
        },
        "api.DecodeResponse": {
            "type": "object",
            "properties": {
                "layout": {"type": "string"},
                "consumed": {"type": "integer"},
                "remaining": {"type": "integer"},
                "records": {"type": "array", "items": {"type": "object"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "osubuf REST API",
	Description:      "Decode, encode and archive little-endian game records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
