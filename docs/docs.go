// Package docs registers the Swagger description of the DBMIS API for gin-swagger.
// Regenerate the paths with `swag init -g cmd/dbmis/main.go` after changing the annotations.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "status, message, version"}}
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"in": "body", "name": "credentials", "required": true, "schema": {"$ref": "#/definitions/api.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "status, token, user"},
                    "400": {"description": "status, message"},
                    "401": {"description": "status, message"},
                    "403": {"description": "status, message"}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ds.User"}},
                    "404": {"description": "status, message"}
                }
            }
        },
        "/api/auth/change-password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Change own password",
                "parameters": [
                    {"in": "body", "name": "passwords", "required": true, "schema": {"$ref": "#/definitions/api.changePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "status, message"},
                    "400": {"description": "status, message"},
                    "401": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"200": {"description": "status, message"}}
            }
        },
        "/api/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ds.User"}}},
                    "403": {"description": "status, message"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create user",
                "parameters": [
                    {"in": "body", "name": "user", "required": true, "schema": {"$ref": "#/definitions/api.createUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "status, message, data: {id}"},
                    "400": {"description": "status, message"},
                    "409": {"description": "status, message"}
                }
            }
        },
        "/api/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get user",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ds.User"}},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update user",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "user", "required": true, "schema": {"$ref": "#/definitions/api.updateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ds.User"}},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"},
                    "409": {"description": "status, message"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete user",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "status, message"},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            }
        },
        "/api/users/{id}/reset-password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Reset password",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "password", "required": true, "schema": {"$ref": "#/definitions/api.resetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "status, message"},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            }
        },
        "/api/data/categories": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "List data categories",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ds.DataCategory"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Create data category",
                "parameters": [
                    {"in": "body", "name": "category", "required": true, "schema": {"$ref": "#/definitions/api.categoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ds.DataCategory"}},
                    "400": {"description": "status, message"}
                }
            }
        },
        "/api/data/categories/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Get data category",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ds.DataCategory"}},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Update data category",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "category", "required": true, "schema": {"$ref": "#/definitions/api.categoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ds.DataCategory"}},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Delete data category",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "status, message"},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            }
        },
        "/api/data/items": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "List data items",
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "name": "limit", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "category_id", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"}
                ],
                "responses": {"200": {"description": "status, data, pagination"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Create data item",
                "parameters": [
                    {"in": "body", "name": "item", "required": true, "schema": {"$ref": "#/definitions/api.itemRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ds.DataItem"}},
                    "400": {"description": "status, message"}
                }
            }
        },
        "/api/data/items/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Get data item",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ds.DataItem"}},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Update data item",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "item", "required": true, "schema": {"$ref": "#/definitions/api.itemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ds.DataItem"}},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Delete data item",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "status, message"},
                    "404": {"description": "status, message"}
                }
            }
        },
        "/api/data/items/{id}/attachment": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Attachment download link",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "status, data: {url}"},
                    "404": {"description": "status, message"},
                    "503": {"description": "status, message"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Upload attachment",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ds.DataItem"}},
                    "400": {"description": "status, message"},
                    "404": {"description": "status, message"},
                    "413": {"description": "status, message"},
                    "503": {"description": "status, message"}
                }
            }
        },
        "/api/business/categories": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["business"],
                "summary": "Business categories",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ds.BusinessCategory"}}}}
            }
        },
        "/api/business/regions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["business"],
                "summary": "Regions",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ds.Region"}}}}
            }
        },
        "/api/business/services": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["business"],
                "summary": "Business services",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ds.ServiceRow"}}}}
            }
        },
        "/api/business/data": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["business"],
                "summary": "Business data",
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "name": "limit", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "category_id", "in": "query"},
                    {"type": "integer", "name": "region_id", "in": "query"},
                    {"type": "integer", "name": "year", "in": "query"},
                    {"type": "integer", "name": "month", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"}
                ],
                "responses": {"200": {"description": "status, data, pagination"}}
            }
        }
    },
    "definitions": {
        "api.loginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "api.changePasswordRequest": {
            "type": "object",
            "required": ["oldPassword", "newPassword"],
            "properties": {"oldPassword": {"type": "string"}, "newPassword": {"type": "string"}}
        },
        "api.resetPasswordRequest": {
            "type": "object",
            "required": ["newPassword"],
            "properties": {"newPassword": {"type": "string"}}
        },
        "api.createUserRequest": {
            "type": "object",
            "required": ["username", "password", "name"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "department": {"type": "string"},
                "role": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "api.updateUserRequest": {
            "type": "object",
            "required": ["username", "name"],
            "properties": {
                "username": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "department": {"type": "string"},
                "role": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "api.categoryRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "description": {"type": "string"}, "status": {"type": "string"}}
        },
        "api.itemRequest": {
            "type": "object",
            "required": ["name", "category_id"],
            "properties": {
                "name": {"type": "string"},
                "category_id": {"type": "integer"},
                "content": {"type": "string"},
                "data_type": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "ds.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "department": {"type": "string"},
                "email": {"type": "string"},
                "last_login": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "ds.DataCategory": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "created_by": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_by": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        },
        "ds.DataItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "category_id": {"type": "integer"},
                "category_name": {"type": "string"},
                "content": {"type": "string"},
                "data_type": {"type": "string"},
                "status": {"type": "string"},
                "attachment": {"type": "string"},
                "created_by": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_by": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        },
        "ds.BusinessCategory": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "description": {"type": "string"}, "status": {"type": "string"}}
        },
        "ds.Region": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "code": {"type": "string"}, "status": {"type": "string"}}
        },
        "ds.ServiceRow": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DBMIS API",
	Description:      "Data management backend: users, data categories and items, business statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
