package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Timetable API",
        "description": "Catalog management, automatic timetable generation, manual edits and exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login, registration and profile"},
        {"name": "Generator", "description": "Whole-timetable generation runs"},
        {"name": "Timetable", "description": "Grid reads, manual edits and exports"},
        {"name": "Tasks", "description": "Personal task board"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/generate": {
            "post": {
                "tags": ["Generator"],
                "summary": "Regenerate the whole timetable",
                "description": "Replaces every stored entry in one transaction. A failed run leaves the existing timetable untouched.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Committed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another run holds the lock", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Configuration incomplete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Placement infeasible or validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/validate": {
            "get": {
                "tags": ["Generator"],
                "summary": "Check generation preconditions without running",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetable/runs/latest": {
            "get": {
                "tags": ["Generator"],
                "summary": "Most recent generation run",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No runs yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List timetable entries",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "streamId", "type": "string"},
                    {"in": "query", "name": "day", "type": "string", "description": "Day code or name, e.g. mon or Monday"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetable/entries": {
            "put": {
                "tags": ["Timetable"],
                "summary": "Set the lecture in a grid cell",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SaveEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Professor or location already booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetable"],
                "summary": "Clear a grid cell",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "streamId", "type": "string", "required": true},
                    {"in": "query", "name": "day", "type": "string", "required": true},
                    {"in": "query", "name": "timeSlotId", "type": "string", "required": true}
                ],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/timetable/export/csv": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download a stream timetable as CSV",
                "produces": ["text/csv"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "streamId", "type": "string", "required": true}],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/timetable/export/pdf": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download a stream timetable as PDF",
                "produces": ["application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "streamId", "type": "string", "required": true}],
                "responses": {"200": {"description": "PDF file"}}
            }
        },
        "/tasks/reschedule": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Fill the available minutes with pending tasks by priority",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RescheduleRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "skipValidation": {"type": "boolean"}
            }
        },
        "SaveEntryRequest": {
            "type": "object",
            "required": ["streamId", "dayOfWeek", "timeSlotId", "subjectId"],
            "properties": {
                "streamId": {"type": "string"},
                "dayOfWeek": {"type": "string", "description": "Day code or name, e.g. mon or Monday"},
                "timeSlotId": {"type": "string"},
                "subjectId": {"type": "string"},
                "professorId": {"type": "string"},
                "locationId": {"type": "string"}
            }
        },
        "RescheduleRequest": {
            "type": "object",
            "properties": {
                "availableMinutes": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
