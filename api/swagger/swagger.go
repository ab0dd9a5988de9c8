package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SchedulifyX API",
        "description": "Admin accounts, subjects, rooms and automatic timetable generation.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Admin", "description": "Administrator accounts"},
        {"name": "Catalogue", "description": "Subjects and rooms fed into the generator"},
        {"name": "Timetable", "description": "Timetable generation and retrieval"},
        {"name": "Ops", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/register": {
            "post": {
                "tags": ["Admin"],
                "summary": "Register an administrator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Admin registered successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or weak password", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Internal Server Error during registration.", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Admin"],
                "summary": "Sign in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Internal Server Error during login.", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Admin"],
                "summary": "Sign out",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/LogoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "Logged out successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or revoked token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Internal Server Error during login.", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/add-subject": {
            "post": {
                "tags": ["Catalogue"],
                "summary": "Add a subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Subject added successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Subject already exists for the section", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Internal Server Error while adding subject.", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/add-room-venue": {
            "post": {
                "tags": ["Catalogue"],
                "summary": "Add a room",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoomRequest"}}
                ],
                "responses": {
                    "201": {"description": "Room added successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Room name already used", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Internal Server Error while adding room.", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/generate-time-table": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate a timetable",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Timetable generated successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No subjects or rooms recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Internal Server Error while generating timetable.", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/result-time-table": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Latest timetable",
                "produces": ["application/json", "text/csv", "application/pdf", "text/calendar"],
                "parameters": [
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf", "ics"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No timetable generated yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Internal Server Error while fetching timetable.", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/ws/time-table": {
            "get": {
                "tags": ["Timetable"],
                "summary": "WebSocket feed of generation events",
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LogoutRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "CreateSubjectRequest": {
            "type": "object",
            "required": ["code", "name", "teacher", "section", "weekly_periods"],
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "teacher": {"type": "string"},
                "section": {"type": "string"},
                "weekly_periods": {"type": "integer", "minimum": 1, "maximum": 20},
                "room_type": {"type": "string", "enum": ["lecture", "lab"]}
            }
        },
        "CreateRoomRequest": {
            "type": "object",
            "required": ["name", "capacity"],
            "properties": {
                "name": {"type": "string"},
                "capacity": {"type": "integer", "minimum": 1},
                "room_type": {"type": "string", "enum": ["lecture", "lab"]}
            }
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"type": "integer", "minimum": 1, "maximum": 7}},
                "periods_per_day": {"type": "integer", "minimum": 1, "maximum": 16},
                "sections": {"type": "array", "items": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "FailureBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
