// Package docs registers the OpenAPI description served under /swagger/.
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
        "/mobile/v1/tasks/status": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["mobile"],
                "summary": "Update task status",
                "parameters": [
                    {
                        "description": "Status update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.UpdateTaskStatusRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SimpleProcessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/mobile/v1/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["mobile"],
                "summary": "List my tasks",
                "parameters": [
                    {"type": "string", "description": "Comma-separated statuses", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Page size (1-200, default 50)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Page offset (default 0)", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TasksListResponse"}}
                }
            }
        },
        "/v1/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "List tasks",
                "parameters": [
                    {"type": "string", "description": "Comma-separated statuses", "name": "status", "in": "query"},
                    {"type": "string", "description": "Filter by assignee UUID", "name": "user_id", "in": "query"},
                    {"type": "string", "description": "Filter by configuration UUID", "name": "configuration_id", "in": "query"},
                    {"type": "string", "description": "Filter by hotel", "name": "hotel_id", "in": "query"},
                    {"type": "integer", "description": "Page size (1-200, default 50)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Page offset (default 0)", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TasksListResponse"}}
                }
            }
        },
        "/v1/tasks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Get task details",
                "parameters": [{"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TaskDetailResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/v1/tasks/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Cancel task",
                "parameters": [{"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProcessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/v1/task-configurations/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["task-configurations"],
                "summary": "Cancel configuration tasks",
                "parameters": [{"type": "string", "description": "Configuration ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProcessResponse"}}
                }
            }
        },
        "/v1/task-configurations/{id}/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["task-configurations"],
                "summary": "Configuration summary",
                "parameters": [{"type": "string", "description": "Configuration ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ConfigurationSummaryResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/v1/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/event-stream"],
                "tags": ["events"],
                "summary": "Stream task changes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/notify.TasksChanged"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/dto.ErrorDetail"}}
        },
        "dto.UpdateTaskStatusRequest": {
            "type": "object",
            "properties": {"hotelId": {"type": "string"}, "taskId": {"type": "string"}, "status": {"type": "string"}}
        },
        "dto.SimpleProcessResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "dto.ProcessResponse": {
            "type": "object",
            "properties": {
                "hasError": {"type": "boolean"},
                "isSuccess": {"type": "boolean"},
                "message": {"type": "string"},
                "affected": {"type": "integer"}
            }
        },
        "dto.TaskActionInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "actionName": {"type": "string"},
                "assetId": {"type": "string"},
                "assetName": {"type": "string"},
                "assetQuantity": {"type": "integer"}
            }
        },
        "dto.TaskDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "configurationId": {"type": "string"},
                "hotelId": {"type": "string"},
                "warehouseId": {"type": "string"},
                "roomId": {"type": "string"},
                "reservationId": {"type": "string"},
                "userId": {"type": "string"},
                "status": {"type": "string"},
                "mustBeFinishedByAllWhos": {"type": "boolean"},
                "actions": {"type": "array", "items": {"$ref": "#/definitions/dto.TaskActionInfo"}},
                "createdAt": {"type": "string"},
                "modifiedAt": {"type": "string"},
                "modifiedById": {"type": "string"}
            }
        },
        "dto.TaskHistoryInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "note": {"type": "string"},
                "oldValue": {"type": "object"},
                "newValue": {"type": "object"},
                "createdById": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "dto.TaskDetailResponse": {
            "type": "object",
            "properties": {
                "task": {"$ref": "#/definitions/dto.TaskDetail"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/dto.TaskHistoryInfo"}}
            }
        },
        "dto.TasksListResponse": {
            "type": "object",
            "properties": {
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/dto.TaskDetail"}},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "dto.ConfigurationSummaryResponse": {
            "type": "object",
            "properties": {
                "configurationId": {"type": "string"},
                "total": {"type": "integer"},
                "open": {"type": "integer"},
                "tasksByStatus": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "notify.TasksChanged": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "hotelGroupId": {"type": "string"},
                "userIds": {"type": "array", "items": {"type": "string"}},
                "taskIds": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"},
                "occurredAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Planner API",
	Description:      "Hotel housekeeping task status coordination.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
