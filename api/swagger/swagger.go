package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Event Attendance API",
        "description": "Event lifecycle, location conflict checks and attendance finalization",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Events", "description": "Event scheduling and lifecycle"},
        {"name": "Attendance", "description": "Finalization and attendance sheets"},
        {"name": "Locations", "description": "Geofence checks for the check-in gate"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness probe covering Postgres and Redis",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "Metrics in exposition format"}}
            }
        },
        "/api/v1/events": {
            "post": {
                "tags": ["Events"],
                "summary": "Create an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/EventEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Location or eligibility target not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Location conflict", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/v1/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get an event",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EventEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Events"],
                "summary": "Update an event that has not started",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EventEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Location conflict, invalid state or concurrent modification", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/v1/events/{id}/status": {
            "get": {
                "tags": ["Events"],
                "summary": "Stored and time-derived status of an event",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/events/{id}/cancel": {
            "post": {
                "tags": ["Events"],
                "summary": "Cancel an event",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EventEnvelope"}},
                    "409": {"description": "Event already cancelled or finalized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/v1/events/{id}/finalize": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Finalize attendance for a concluded event",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FinalizationEnvelope"}},
                    "409": {"description": "Event not concluded or finalization already running", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/v1/events/{id}/attendance/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download the attendance sheet of a finalized event",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Attendance sheet", "schema": {"type": "file"}},
                    "409": {"description": "Event not finalized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/v1/locations/{id}/geofence-check": {
            "post": {
                "tags": ["Locations"],
                "summary": "Check whether a coordinate is inside a location",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/GeofenceCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Location not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "EligibilitySpec": {
            "type": "object",
            "properties": {
                "all_students": {"type": "boolean"},
                "cluster_ids": {"type": "array", "items": {"type": "string"}},
                "course_ids": {"type": "array", "items": {"type": "string"}},
                "section_ids": {"type": "array", "items": {"type": "string"}},
                "year_levels": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "EventRequest": {
            "type": "object",
            "required": ["name", "registration_start", "start_time", "end_time", "venue_location_id"],
            "properties": {
                "name": {"type": "string"},
                "registration_start": {"type": "string", "format": "date-time"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "eligibility": {"$ref": "#/definitions/EligibilitySpec"},
                "facial_verification_enabled": {"type": "boolean"},
                "location_monitoring_enabled": {"type": "boolean"},
                "registration_location_id": {"type": "string"},
                "venue_location_id": {"type": "string"}
            }
        },
        "Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "registration_start": {"type": "string", "format": "date-time"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["UPCOMING", "REGISTRATION", "ONGOING", "CONCLUDED", "CANCELLED", "FINALIZED"]},
                "eligibility": {"$ref": "#/definitions/EligibilitySpec"},
                "facial_verification_enabled": {"type": "boolean"},
                "location_monitoring_enabled": {"type": "boolean"},
                "registration_location_id": {"type": "string"},
                "venue_location_id": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "FinalizationSummary": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"},
                "finalized_at": {"type": "string", "format": "date-time"},
                "updated": {"type": "integer"},
                "created": {"type": "integer"},
                "verdicts": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "GeofenceCheckRequest": {
            "type": "object",
            "required": ["latitude", "longitude"],
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
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
                "meta": {"type": "object"}
            }
        },
        "EventEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Event"}
            }
        },
        "FinalizationEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/FinalizationSummary"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/APIError"}
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
