// Package docs registers the OpenAPI description of the video catalog API
// with swag, so that http-swagger can serve it under /docs.
package docs

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
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/models.User"}}
                    }
                }
            },
            "post": {
                "consumes": ["application/json"],
                "tags": ["users"],
                "summary": "Create new user",
                "parameters": [
                    {
                        "description": "New user",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.CreateUserRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/videos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["videos"],
                "summary": "List all videos",
                "parameters": [
                    {"type": "integer", "default": 10, "minimum": 1, "maximum": 100, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "minimum": 0, "description": "Items to skip", "name": "offset", "in": "query"},
                    {"type": "string", "format": "uuid", "description": "Owner filter", "name": "userId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.VideoPage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/videos/upload": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["videos"],
                "summary": "Upload a new video",
                "parameters": [
                    {
                        "description": "Video metadata",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.UploadVideoRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.UploadVideoResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/videos/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["videos"],
                "summary": "Get video by ID",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Video id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Video"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["videos"],
                "summary": "Update video metadata",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Video id", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Fields to change",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.UpdateVideoRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Video"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"}
            }
        },
        "models.CreateUserRequest": {
            "type": "object",
            "required": ["name", "email"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"}
            }
        },
        "models.Video": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "filename": {"type": "string"},
                "url": {"type": "string", "format": "uri"},
                "thumbnail": {"type": "string", "format": "uri"},
                "duration": {"type": "integer"},
                "fileSize": {"type": "integer"},
                "mimeType": {"type": "string"},
                "uploadedAt": {"type": "string", "format": "date-time"},
                "userId": {"type": "string", "format": "uuid"}
            }
        },
        "models.VideoPage": {
            "type": "object",
            "properties": {
                "videos": {"type": "array", "items": {"$ref": "#/definitions/models.Video"}},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "models.UploadVideoRequest": {
            "type": "object",
            "required": ["title", "userId"],
            "properties": {
                "title": {"type": "string", "minLength": 1, "maxLength": 100},
                "userId": {"type": "string", "format": "uuid"}
            }
        },
        "models.UploadVideoResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "message": {"type": "string"},
                "uploadUrl": {"type": "string"}
            }
        },
        "models.UpdateVideoRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "minLength": 1, "maxLength": 100}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Video catalog API",
	Description:      "In-memory registry of users and their (mock) uploaded videos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
