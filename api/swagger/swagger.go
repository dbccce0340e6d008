package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Appointment Booking",
        "description": "Session-backed views and store actions over the hosted booking data service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Auth", "description": "Sign in and sign out"},
        {"name": "Views", "description": "Page view models"},
        {"name": "Appointments", "description": "Booking and cancellation"},
        {"name": "Admin", "description": "Time slot management"},
        {"name": "Store", "description": "Live store snapshots"},
        {"name": "Observability", "description": "Health and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "A dependency is unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Observability"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/login": {
            "get": {
                "tags": ["Auth"],
                "summary": "Login view",
                "parameters": [
                    {"name": "redirect", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in with email and password",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignInRequest"}}
                ],
                "responses": {
                    "200": {"description": "Signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign out and clear the session cookie",
                "responses": {
                    "200": {"description": "Signed out", "schema": {"$ref": "#/definitions/MutationResponse"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Views"],
                "summary": "Dashboard with upcoming appointments and totals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "302": {"description": "Redirect to login"}
                }
            }
        },
        "/calendar": {
            "get": {
                "tags": ["Views"],
                "summary": "Week calendar of bookable slots",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "302": {"description": "Redirect to login"}
                }
            }
        },
        "/appointments": {
            "get": {
                "tags": ["Views"],
                "summary": "The signed in user's appointments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "302": {"description": "Redirect to login"}
                }
            }
        },
        "/admin": {
            "get": {
                "tags": ["Views", "Admin"],
                "summary": "Time slot manager",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "filter", "in": "query", "type": "string", "enum": ["all", "available", "booked"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "302": {"description": "Redirect to login or dashboard"}
                }
            }
        },
        "/api/v1/store/events": {
            "get": {
                "tags": ["Store"],
                "summary": "Server-sent store snapshots",
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "Event stream"},
                    "401": {"description": "No session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/appointments": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Book a time slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookAppointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Booked", "schema": {"$ref": "#/definitions/MutationResponse"}},
                    "401": {"description": "No session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/appointments/{id}/cancel": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Cancel an appointment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/MutationResponse"}},
                    "409": {"description": "Already cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/slots/refresh": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Re-fetch time slots into the store",
                "responses": {
                    "200": {"description": "Refreshed", "schema": {"$ref": "#/definitions/MutationResponse"}}
                }
            }
        },
        "/api/v1/admin/slots/generate": {
            "post": {
                "tags": ["Admin"],
                "summary": "Generate one week of hourly slots",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateSlotsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Generated", "schema": {"$ref": "#/definitions/GenerateSlotsResponse"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/slots/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a time slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/MutationResponse"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/slots/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download time slots as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "filter", "in": "query", "type": "string", "enum": ["all", "available", "booked"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Attachment"},
                    "422": {"description": "Unknown filter or format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SignInRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string"}
            }
        },
        "BookAppointmentRequest": {
            "type": "object",
            "required": ["slotId"],
            "properties": {
                "slotId": {"type": "string", "format": "uuid"},
                "notes": {"type": "string", "maxLength": 500}
            }
        },
        "GenerateSlotsRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string", "format": "date"}
            }
        },
        "MutationResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"},
                "version": {"type": "integer"},
                "redirect": {"type": "string"}
            }
        },
        "GenerateSlotsResponse": {
            "type": "object",
            "properties": {
                "created": {"type": "integer"},
                "from": {"type": "string", "format": "date"},
                "to": {"type": "string", "format": "date"},
                "error": {"type": "string"},
                "days": {"type": "array", "items": {"type": "string"}}
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
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
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
