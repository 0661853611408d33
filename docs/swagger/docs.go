// Package swagger holds the OpenAPI document served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/api/main.go -o docs/swagger
package swagger

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
        "/tags": {
            "post": {
                "description": "Detect labels for a public image URL and return five normalized tags plus every label with its confidence.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tags"],
                "summary": "Tag an image",
                "parameters": [
                    {
                        "description": "Image to tag",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/vision.TagRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/vision.TagResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/upload": {
            "post": {
                "description": "Store the first file part of a multipart/form-data body under a unique key and return its public URL.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["upload"],
                "summary": "Upload a file",
                "parameters": [
                    {
                        "type": "file",
                        "description": "File to store",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/upload.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "response.ErrorBody": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "upload.Response": {
            "type": "object",
            "properties": {
                "url": {"type": "string", "example": "https://res.cloudinary.com/demo/image/upload/1718000000000000000-cat.png"}
            }
        },
        "vision.PossibleObject": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number", "example": 0.97},
                "name": {"type": "string", "example": "cat"}
            }
        },
        "vision.TagRequest": {
            "type": "object",
            "properties": {
                "imageUrl": {"type": "string", "example": "https://example.com/cat.jpg"}
            }
        },
        "vision.TagResponse": {
            "type": "object",
            "properties": {
                "possibleObjects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/vision.PossibleObject"}
                },
                "tags": {"type": "string", "example": "cat, animal, pet, feline, whiskers"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pixtag API",
	Description:      "Image tagging and file upload service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
