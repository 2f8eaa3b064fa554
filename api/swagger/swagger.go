package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DocTrack API",
        "description": "Document receipt, routing and lifecycle tracking",
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
        {
            "name": "Documents",
            "description": "Document registry and history"
        },
        {
            "name": "Forwarding",
            "description": "Eligibility, recipients and movement"
        },
        {
            "name": "Lifecycle",
            "description": "Park, close, archive, payment and reply"
        },
        {
            "name": "Directory",
            "description": "Sections"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/documents": {
            "get": {
                "tags": [
                    "Documents"
                ],
                "summary": "List documents",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "kind",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "holder",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "section",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "mine",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "parked",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            },
            "post": {
                "tags": [
                    "Documents"
                ],
                "summary": "Receive a new document",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReceiveDocumentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": [
                    "Documents"
                ],
                "summary": "Get a document with its movement trail",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            },
            "delete": {
                "tags": [
                    "Documents"
                ],
                "summary": "Delete a document",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/recipients": {
            "get": {
                "tags": [
                    "Forwarding"
                ],
                "summary": "List users the caller may forward to",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/can-forward": {
            "get": {
                "tags": [
                    "Forwarding"
                ],
                "summary": "Check forwarding eligibility",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/forward": {
            "post": {
                "tags": [
                    "Forwarding"
                ],
                "summary": "Forward a document",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ForwardRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "400": {
                        "description": "INVALID_FORWARD_DATE"
                    },
                    "403": {
                        "description": "FORWARD_NOT_PERMITTED"
                    },
                    "409": {
                        "description": "CONCURRENT_MODIFICATION"
                    },
                    "423": {
                        "description": "DOCUMENT_LOCKED"
                    }
                }
            }
        },
        "/documents/{id}/park": {
            "post": {
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Park a document",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ParkRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/unpark": {
            "post": {
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Resume a parked document",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/close": {
            "post": {
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Close a document",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/archive": {
            "post": {
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Archive a closed document",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/mark-paid": {
            "post": {
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Mark a bill as paid",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/mark-replied": {
            "post": {
                "tags": [
                    "Lifecycle"
                ],
                "summary": "Record the reply to a letter",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/MarkRepliedRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/movements": {
            "get": {
                "tags": [
                    "Documents"
                ],
                "summary": "Movement trail, most recent first",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/time-held": {
            "get": {
                "tags": [
                    "Documents"
                ],
                "summary": "Days held by the current holder",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/documents/{id}/routing-slip": {
            "get": {
                "tags": [
                    "Documents"
                ],
                "summary": "Download the routing slip",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF file",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "produces": [
                    "application/pdf"
                ]
            }
        },
        "/sections": {
            "get": {
                "tags": [
                    "Directory"
                ],
                "summary": "List sections",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        }
    },
    "definitions": {
        "ReceiveDocumentRequest": {
            "type": "object",
            "required": [
                "kind",
                "documentNumber",
                "subject",
                "senderName",
                "receivedDate"
            ],
            "properties": {
                "kind": {
                    "type": "string",
                    "enum": [
                        "NOTESHEET",
                        "BILL",
                        "LETTER"
                    ]
                },
                "documentNumber": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "senderName": {
                    "type": "string"
                },
                "senderOrganization": {
                    "type": "string"
                },
                "senderAddress": {
                    "type": "string"
                },
                "referenceNumber": {
                    "type": "string"
                },
                "receivedDate": {
                    "type": "string",
                    "format": "date"
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "LOW",
                        "NORMAL",
                        "HIGH",
                        "URGENT"
                    ]
                },
                "category": {
                    "type": "string"
                },
                "remarks": {
                    "type": "string"
                },
                "bill": {
                    "type": "object",
                    "properties": {
                        "invoiceNumber": {
                            "type": "string"
                        },
                        "vendorName": {
                            "type": "string"
                        },
                        "vendorGstin": {
                            "type": "string"
                        },
                        "vendorPan": {
                            "type": "string"
                        },
                        "billDate": {
                            "type": "string"
                        },
                        "billAmount": {
                            "type": "number"
                        },
                        "netPayableAmount": {
                            "type": "number"
                        }
                    }
                },
                "letter": {
                    "type": "object",
                    "properties": {
                        "letterType": {
                            "type": "string",
                            "enum": [
                                "INCOMING",
                                "OUTGOING",
                                "INTERNAL"
                            ]
                        },
                        "letterDate": {
                            "type": "string"
                        },
                        "replyRequired": {
                            "type": "boolean"
                        },
                        "replyDeadline": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "ForwardRequest": {
            "type": "object",
            "required": [
                "toUserId"
            ],
            "properties": {
                "toUserId": {
                    "type": "string"
                },
                "toSectionId": {
                    "type": "string"
                },
                "action": {
                    "type": "string",
                    "enum": [
                        "FORWARDED",
                        "RETURNED",
                        "APPROVED",
                        "REJECTED",
                        "REVIEWED"
                    ]
                },
                "comments": {
                    "type": "string"
                },
                "forwardDate": {
                    "type": "string",
                    "format": "date"
                }
            }
        },
        "ParkRequest": {
            "type": "object",
            "required": [
                "reason"
            ],
            "properties": {
                "reason": {
                    "type": "string"
                }
            }
        },
        "MarkRepliedRequest": {
            "type": "object",
            "required": [
                "replyReference"
            ],
            "properties": {
                "replyReference": {
                    "type": "string"
                },
                "repliedDate": {
                    "type": "string",
                    "format": "date"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
