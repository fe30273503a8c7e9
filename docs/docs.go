// Package docs is regenerated by swag init; the template below is the
// checked-in baseline served at /docs.
package docs

import "github.com/swaggo/swag"

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
        "/notes": {
            "get": {"security": [{"Bearer": []}], "tags": ["notes"], "summary": "List notes",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "tag", "in": "query"},
                    {"type": "string", "name": "view", "in": "query", "enum": ["all", "favorites"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/notes.ListNotesResponse"}}}},
            "post": {"security": [{"Bearer": []}], "tags": ["notes"], "summary": "Create a blank note",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/notes.Note"}}}}
        },
        "/notes/{id}": {
            "get": {"security": [{"Bearer": []}], "tags": ["notes"], "summary": "Get a note",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/notes.Note"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httperr.E"}}}},
            "put": {"security": [{"Bearer": []}], "tags": ["notes"], "summary": "Replace a note",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/notes.Note"}}}},
            "delete": {"security": [{"Bearer": []}], "tags": ["notes"], "summary": "Delete a note",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/notes/{id}/favorite": {
            "post": {"security": [{"Bearer": []}], "tags": ["notes"], "summary": "Toggle favorite",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/notes.Note"}}}}
        },
        "/notes/{id}/pin": {
            "post": {"security": [{"Bearer": []}], "tags": ["notes"], "summary": "Toggle pin",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/notes.Note"}}}}
        },
        "/palette": {
            "get": {"security": [{"Bearer": []}], "tags": ["notes"], "summary": "Accent palette",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.E"}}}}
        },
        "/editor": {
            "get": {"security": [{"Bearer": []}], "tags": ["editor"], "summary": "Current editor state",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httperr.E"}}}},
            "patch": {"security": [{"Bearer": []}], "tags": ["editor"], "summary": "Edit the open buffer",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httperr.E"}}}},
            "delete": {"security": [{"Bearer": []}], "tags": ["editor"], "summary": "Close the editor",
                "responses": {"204": {"description": "No Content"}}}
        },
        "/editor/{id}": {
            "post": {"security": [{"Bearer": []}], "tags": ["editor"], "summary": "Open a note in the editor",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httperr.E"}}}}
        },
        "/editor/ai/{task}": {
            "post": {"security": [{"Bearer": []}], "tags": ["editor"], "summary": "Run an AI task on the open buffer",
                "parameters": [{"type": "string", "name": "task", "in": "path", "required": true, "enum": ["summarize", "refine", "continue", "tags"]}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}}}
        },
        "/editor/ai/ocr": {
            "post": {"security": [{"Bearer": []}], "tags": ["editor"], "summary": "Transcribe an image into the open buffer",
                "consumes": ["multipart/form-data", "application/json"],
                "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/httperr.E"}}}}
        },
        "/export": {
            "get": {"security": [{"Bearer": []}], "tags": ["export"], "summary": "Export all notes",
                "parameters": [{"type": "string", "name": "format", "in": "query", "enum": ["json", "yaml"]}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/export/s3": {
            "post": {"security": [{"Bearer": []}], "tags": ["export"], "summary": "Upload an export to S3",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/httperr.E"}}}}
        }
    },
    "definitions": {
        "httperr.E": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "Bad Request"}}
        },
        "notes.Note": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "color": {"type": "string", "example": "#4F46E5"},
                "isFavorite": {"type": "boolean"},
                "isPinned": {"type": "boolean"},
                "updatedAt": {"type": "integer"}
            }
        },
        "notes.ListNotesResponse": {
            "type": "object",
            "properties": {
                "pinned": {"type": "array", "items": {"$ref": "#/definitions/notes.Note"}},
                "regular": {"type": "array", "items": {"$ref": "#/definitions/notes.Note"}},
                "tags": {"type": "array", "items": {"type": "string"}},
                "heading": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Lumina API",
	Description:      "Personal notes with an autosaving editor, AI assistance and dictation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
