package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Repaso API",
        "description": "Flashcard backend: cards, per-user archive state, teacher class rosters",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Registration and login"},
        {"name": "Cards", "description": "Card visibility and per-user state"},
        {"name": "Roster", "description": "Teacher class roster management"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/cards": {
            "get": {
                "tags": ["Cards"],
                "summary": "List cards visible to the caller with their activation state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Cards"],
                "summary": "Create a card and activate it for the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/cards/{id}": {
            "put": {
                "tags": ["Cards"],
                "summary": "Overwrite a card's question and answer",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Updated"},
                    "404": {"description": "Card not found"}
                }
            }
        },
        "/cards/{id}/archive": {
            "put": {
                "tags": ["Cards"],
                "summary": "Archive or activate one card for the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Applied"}
                }
            }
        },
        "/cards/archive": {
            "put": {
                "tags": ["Cards"],
                "summary": "Apply several archive toggles atomically",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Applied"},
                    "400": {"description": "Empty or malformed batch"}
                }
            }
        },
        "/cards/export": {
            "get": {
                "tags": ["Cards"],
                "summary": "Export the calling teacher's deck as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Document"}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Roster"],
                "summary": "List the calling teacher's classes",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{name}/students": {
            "get": {
                "tags": ["Roster"],
                "summary": "List students in one class",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Roster"],
                "summary": "Assign students to a class",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Assignment result"}
                }
            }
        },
        "/classes/students/{id}": {
            "delete": {
                "tags": ["Roster"],
                "summary": "Remove a student from the calling teacher's class",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Removed"},
                    "404": {"description": "Student not assigned to this teacher"}
                }
            }
        },
        "/students/search": {
            "get": {
                "tags": ["Roster"],
                "summary": "Search students by email or name",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "At most 10 matches"}
                }
            }
        }
    },
    "definitions": {
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
