// Package docs holds the OpenAPI description served under /swagger/.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/users/me/events": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "List my events",
                "parameters": [
                    {"type": "integer", "default": 0, "name": "from", "in": "query"},
                    {"type": "integer", "default": 10, "maximum": 100, "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "400": {"description": "bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "401": {"description": "unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Create an event",
                "parameters": [{"name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateEventRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "400": {"description": "bad_request | date_constraint", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "404": {"description": "not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/users/me/events/{eventID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Get one of my events",
                "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "404": {"description": "not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Edit one of my events",
                "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.UpdateEventUserRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "409": {"description": "validation_failed | invalid_state | conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/users/me/events/{eventID}/requests": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "List requests for my event",
                "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "404": {"description": "not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "Confirm or reject pending requests",
                "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.ResolveRequestsRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "409": {"description": "validation_failed | capacity_exceeded | invalid_state | conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/users/me/requests": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "List my participation requests",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "Request to participate in an event",
                "parameters": [{"type": "integer", "name": "eventId", "in": "query", "required": true}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "409": {"description": "validation_failed | capacity_exceeded | conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/users/me/requests/{requestID}/cancel": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "Cancel my request",
                "parameters": [{"type": "integer", "name": "requestID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "404": {"description": "not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/admin/events": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Search events",
                "parameters": [
                    {"type": "array", "items": {"type": "integer"}, "collectionFormat": "csv", "name": "users", "in": "query"},
                    {"type": "array", "items": {"type": "string", "enum": ["PENDING", "PUBLISHED", "CANCELED"]}, "collectionFormat": "csv", "name": "states", "in": "query"},
                    {"type": "array", "items": {"type": "integer"}, "collectionFormat": "csv", "name": "categories", "in": "query"},
                    {"type": "string", "description": "RFC 3339 or 2006-01-02 15:04:05 (UTC), defaults to now", "name": "rangeStart", "in": "query"},
                    {"type": "string", "description": "RFC 3339 or 2006-01-02 15:04:05 (UTC), exclusive", "name": "rangeEnd", "in": "query"},
                    {"type": "integer", "default": 0, "name": "from", "in": "query"},
                    {"type": "integer", "default": 10, "maximum": 100, "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "400": {"description": "bad_request | date_constraint", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/admin/events/{eventID}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Edit, publish or reject an event",
                "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.UpdateEventAdminRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "409": {"description": "invalid_state | conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/admin/events/{eventID}/publish": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Publish a pending event",
                "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "409": {"description": "invalid_state", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/admin/events/{eventID}/reject": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Reject a pending event",
                "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "409": {"description": "invalid_state", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events/{eventID}": {
            "get": {"tags": ["public"], "summary": "Get a published event",
                "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}, "404": {"description": "not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        }
    },
    "definitions": {
        "helpers.APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "helpers.APIResponse": {"type": "object", "properties": {"data": {}, "error": {"$ref": "#/definitions/helpers.APIError"}}},
        "controllers.LocationDTO": {"type": "object", "properties": {"lat": {"type": "number"}, "lon": {"type": "number"}}},
        "controllers.CreateEventRequest": {"type": "object", "properties": {
            "title": {"type": "string"}, "annotation": {"type": "string"}, "description": {"type": "string"},
            "category_id": {"type": "integer"}, "event_date": {"type": "string", "format": "date-time"},
            "location": {"$ref": "#/definitions/controllers.LocationDTO"}, "paid": {"type": "boolean"},
            "participant_limit": {"type": "integer"}, "request_moderation": {"type": "boolean"}}},
        "controllers.UpdateEventUserRequest": {"type": "object", "properties": {
            "title": {"type": "string"}, "annotation": {"type": "string"}, "description": {"type": "string"},
            "category_id": {"type": "integer"}, "event_date": {"type": "string", "format": "date-time"},
            "location": {"$ref": "#/definitions/controllers.LocationDTO"}, "paid": {"type": "boolean"},
            "participant_limit": {"type": "integer"}, "request_moderation": {"type": "boolean"},
            "state_action": {"type": "string", "enum": ["SEND_TO_REVIEW", "CANCEL_REVIEW"]}}},
        "controllers.UpdateEventAdminRequest": {"type": "object", "properties": {
            "title": {"type": "string"}, "annotation": {"type": "string"}, "description": {"type": "string"},
            "category_id": {"type": "integer"}, "event_date": {"type": "string", "format": "date-time"},
            "location": {"$ref": "#/definitions/controllers.LocationDTO"}, "paid": {"type": "boolean"},
            "participant_limit": {"type": "integer"}, "request_moderation": {"type": "boolean"},
            "state_action": {"type": "string", "enum": ["PUBLISH_EVENT", "REJECT_EVENT"]}}},
        "controllers.ResolveRequestsRequest": {"type": "object", "properties": {
            "request_ids": {"type": "array", "items": {"type": "integer"}},
            "status": {"type": "string", "enum": ["CONFIRMED", "REJECTED"]}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and the JWT.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Explore With Me API",
	Description:      "Event publication and participation requests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
