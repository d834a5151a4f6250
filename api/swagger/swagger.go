package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Lesson Planner API",
        "description": "Lesson planning backend: calendars, class generation, holiday rescheduling and document search.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Levels", "description": "Levels, groups and plan generation"},
        {"name": "Classes", "description": "Class sessions and the weekly agenda"},
        {"name": "Calendar", "description": "Blackout dates and academic years"},
        {"name": "Holidays", "description": "Holidays and rescheduling suggestions"},
        {"name": "Documents", "description": "Document ingestion and search"},
        {"name": "Reports", "description": "Asynchronous agenda exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/levels": {
            "post": {
                "tags": ["Levels"],
                "summary": "Create level",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLevelRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/levels/{id}": {
            "get": {
                "tags": ["Levels"],
                "summary": "Get level with groups and schedules",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/levels/{id}/groups": {
            "post": {
                "tags": ["Levels"],
                "summary": "Create group with weekly schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGroupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/levels/{id}/generate-classes": {
            "post": {
                "tags": ["Levels"],
                "summary": "Generate class sessions from a weekly plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or scheduler error"}
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get class detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            },
            "patch": {
                "tags": ["Classes"],
                "summary": "Apply a manual edit to a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty patch"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/agenda": {
            "get": {
                "tags": ["Classes"],
                "summary": "Weekly agenda for a level",
                "parameters": [
                    {"name": "level_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid week"},
                    "404": {"description": "Level not found"}
                }
            }
        },
        "/no-class-days": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List blackout dates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Calendar"],
                "summary": "Register blackout date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NoClassDayRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/no-class-days/{id}": {
            "delete": {
                "tags": ["Calendar"],
                "summary": "Delete blackout date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/academic-years": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List academic years",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Calendar"],
                "summary": "Create academic year",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AcademicYearRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays": {
            "get": {
                "tags": ["Holidays"],
                "summary": "List holidays of an academic year",
                "parameters": [
                    {"name": "academic_year_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Holidays"],
                "summary": "Create holiday and compute suggestions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/HolidayRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays/{id}": {
            "put": {
                "tags": ["Holidays"],
                "summary": "Update holiday and recompute suggestions",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/HolidayRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["Holidays"],
                "summary": "Delete holiday",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/ingest": {
            "post": {
                "tags": ["Documents"],
                "summary": "Ingest documents into the search index",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "files", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/query": {
            "post": {
                "tags": ["Documents"],
                "summary": "Search ingested documents",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Vector store unavailable"}
                }
            }
        },
        "/reports/agenda": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an agenda export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AgendaReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a rendered report",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateLevelRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string"},
                "academic_year_id": {"type": "integer"}
            },
            "required": ["name", "start_date"]
        },
        "CreateGroupRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "schedule": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ScheduleSlotRequest"}
                }
            },
            "required": ["name"]
        },
        "ScheduleSlotRequest": {
            "type": "object",
            "properties": {
                "weekday": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            },
            "required": ["weekday", "start_time"]
        },
        "PlanPayload": {
            "type": "object",
            "properties": {
                "level_id": {"type": "integer"},
                "weeks": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PlanWeek"}
                }
            },
            "required": ["level_id"]
        },
        "PlanWeek": {
            "type": "object",
            "properties": {
                "week_number": {"type": "integer"},
                "topics": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PlanTopic"}
                }
            },
            "required": ["week_number"]
        },
        "PlanTopic": {
            "type": "object",
            "properties": {
                "group_id": {"type": "integer"},
                "topic": {"type": "string"},
                "trimester_color": {"type": "string"}
            },
            "required": ["group_id", "topic"]
        },
        "ClassUpdate": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "week_number": {"type": "integer"},
                "topic": {"type": "string"},
                "trimester_color": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "NoClassDayRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["date"]
        },
        "AcademicYearRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"}
            },
            "required": ["name", "start_date", "end_date"]
        },
        "HolidayRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "academic_year_id": {"type": "integer"}
            },
            "required": ["name", "start_date", "end_date", "academic_year_id"]
        },
        "QueryRequest": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "n_results": {"type": "integer"}
            },
            "required": ["query"]
        },
        "AgendaReportRequest": {
            "type": "object",
            "properties": {
                "level_id": {"type": "integer"},
                "week": {"type": "integer"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["level_id", "week", "format"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
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
