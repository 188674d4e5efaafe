// Package docs holds the generated OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new account",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/v1/invoices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "List invoices",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Register a new invoice",
                "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/v1/invoices/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Get an invoice by id",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Update a pending invoice",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Delete an invoice",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/v1/invoices/{id}/validate": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Validate or reject a pending invoice",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/v1/invoices/{id}/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Download an invoice attachment",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/invoices/export/excel": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Export invoices to Excel",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "List users",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Create a user",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/v1/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get a user by id",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Update a user",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Delete a user and their invoices",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/v1/ocr/process": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["ocr"],
                "summary": "Extract invoice fields from a document",
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/v1/ocr/process-and-create": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["ocr"],
                "summary": "Create an invoice from a scanned document",
                "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/v1/ocr/supported-formats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ocr"],
                "summary": "List supported intake file formats",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/ocr/invoice/{id}/ocr-data": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ocr"],
                "summary": "Get the stored OCR extraction of an invoice",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/gmail/auth/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["gmail"],
                "summary": "Mailbox connection status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/gmail/auth/url": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["gmail"],
                "summary": "Get the OAuth consent URL",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/gmail/auth/callback": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["gmail"],
                "summary": "Complete the OAuth flow with an authorization code",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/v1/gmail/process-invoices": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["gmail"],
                "summary": "Queue a mailbox scan for new invoices",
                "responses": {"202": {"description": "Accepted"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/v1/gmail/process-invoices/sync": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["gmail"],
                "summary": "Scan the mailbox for new invoices",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/v1/gmail/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["gmail"],
                "summary": "Recent mailbox statistics",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/dashboard/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dashboard"],
                "summary": "Full dashboard statistics",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "BST Facturas API",
	Description:      "Invoice management backend: registration, validation workflow, OCR intake, Gmail ingestion, and dashboard aggregates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
