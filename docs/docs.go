// Package docs holds the OpenAPI 2 document served at /swagger. It is kept by hand in
// swag's template format; the handlers are generic over both resources, so it is not
// produced by swag init.
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
		"/experiences/": {
			"get": {
				"tags": [
					"experiences"
				],
				"summary": "List experiences",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/model.Experience"
							}
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/experiences/{id}/": {
			"get": {
				"tags": [
					"experiences"
				],
				"summary": "Get experience by ID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Experience ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Experience"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/experiences/create/": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"experiences"
				],
				"summary": "Create experience",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Experience",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.ExperienceInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/model.Experience"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/experiences/update/{id}/": {
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"experiences"
				],
				"summary": "Replace experience",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Experience ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Experience",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.ExperienceInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Experience"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"patch": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"experiences"
				],
				"summary": "Partially update experience",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Experience ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Fields to change",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.ExperiencePatch"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Experience"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/experiences/delete/{id}/": {
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"experiences"
				],
				"summary": "Delete experience",
				"parameters": [
					{
						"type": "string",
						"description": "Experience ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/projects/": {
			"get": {
				"tags": [
					"projects"
				],
				"summary": "List projects",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/model.Project"
							}
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/projects/{id}/": {
			"get": {
				"tags": [
					"projects"
				],
				"summary": "Get project by ID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Project ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Project"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/projects/create/": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"projects"
				],
				"summary": "Create project",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Project",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.ProjectInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/model.Project"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/projects/update/{id}/": {
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"projects"
				],
				"summary": "Replace project",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Project ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Project",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.ProjectInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Project"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"patch": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"projects"
				],
				"summary": "Partially update project",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Project ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Fields to change",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.ProjectPatch"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Project"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/projects/delete/{id}/": {
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"projects"
				],
				"summary": "Delete project",
				"parameters": [
					{
						"type": "string",
						"description": "Project ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/images/": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"images"
				],
				"summary": "Upload image",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "file",
						"description": "Image file",
						"name": "file",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/model.Image"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"415": {
						"description": "Unsupported Media Type",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/images/{name}": {
			"get": {
				"tags": [
					"images"
				],
				"summary": "Download image",
				"produces": [
					"image/*"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Image name",
						"name": "name",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "file"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"images"
				],
				"summary": "Delete image",
				"parameters": [
					{
						"type": "string",
						"description": "Image name",
						"name": "name",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/images/{name}/url": {
			"get": {
				"tags": [
					"images"
				],
				"summary": "Presigned image URL",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Image name",
						"name": "name",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handler.errorPayload": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"code": {
					"type": "string"
				},
				"request_id": {
					"type": "string"
				},
				"fields": {
					"type": "object",
					"additionalProperties": {
						"type": "string"
					}
				}
			}
		},
		"model.Experience": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"company": {
					"type": "string"
				},
				"duration": {
					"type": "string"
				},
				"description": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"technologies": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"image": {
					"type": "string"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"model.ExperienceInput": {
			"type": "object",
			"required": [
				"company",
				"description",
				"duration",
				"image",
				"technologies",
				"title"
			],
			"properties": {
				"title": {
					"type": "string",
					"maxLength": 200
				},
				"company": {
					"type": "string",
					"maxLength": 200
				},
				"duration": {
					"type": "string",
					"maxLength": 100
				},
				"description": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"technologies": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"image": {
					"type": "string",
					"maxLength": 255
				}
			}
		},
		"model.ExperiencePatch": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string",
					"maxLength": 200,
					"minLength": 1
				},
				"company": {
					"type": "string",
					"maxLength": 200,
					"minLength": 1
				},
				"duration": {
					"type": "string",
					"maxLength": 100,
					"minLength": 1
				},
				"description": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"technologies": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"image": {
					"type": "string",
					"maxLength": 255,
					"minLength": 1
				}
			}
		},
		"model.Project": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"image": {
					"type": "string"
				},
				"technologies": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"category": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"model.ProjectInput": {
			"type": "object",
			"required": [
				"category",
				"description",
				"image",
				"technologies",
				"title"
			],
			"properties": {
				"title": {
					"type": "string",
					"maxLength": 200
				},
				"description": {
					"type": "string"
				},
				"image": {
					"type": "string",
					"maxLength": 255
				},
				"technologies": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"category": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"model.ProjectPatch": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string",
					"maxLength": 200,
					"minLength": 1
				},
				"description": {
					"type": "string",
					"minLength": 1
				},
				"image": {
					"type": "string",
					"maxLength": 255,
					"minLength": 1
				},
				"technologies": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"category": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"model.Image": {
			"type": "object",
			"properties": {
				"key": {
					"type": "string"
				},
				"url": {
					"type": "string"
				},
				"size": {
					"type": "integer"
				},
				"content_type": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Firebase ID token as \"Bearer <token>\"",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Portfolio API",
	Description:      "Experiences and projects for a personal portfolio site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
