// Package docs holds the swagger document served by the REST API.
// Regenerate with: swag init -g server.go -d restapi --parseDependency -o restapi/docs
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/session": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Returns the verified caller",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/restapi.Session"}}}
            }
        },
        "/analyses": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Admins see every report, other callers their own.",
                "produces": ["application/json"],
                "tags": ["Analyses"],
                "summary": "Lists stored analyses",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/premortem.ReportSummary"}}}}
            },
            "post": {
                "security": [{"Bearer": []}],
                "description": "Generates failure scenarios for the project, screens each through the admission gate and stores the report.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Analyses"],
                "summary": "Runs a pre-mortem analysis",
                "parameters": [{"description": "Project description", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/premortem.AnalysisRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/restapi.AnalysisResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/restapi.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/restapi.ErrorResponse"}}
                }
            }
        },
        "/analyses/{id}": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["Analyses"],
                "summary": "Returns one analysis",
                "parameters": [{"type": "string", "description": "Analysis id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/restapi.AnalysisResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/restapi.ErrorResponse"}}
                }
            }
        },
        "/analyses/{id}/share": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["Analyses"],
                "summary": "Returns the plain-text share summary of an analysis",
                "parameters": [{"type": "string", "description": "Analysis id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/restapi.ShareResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/restapi.ErrorResponse"}}
                }
            }
        },
        "/scenarios/admit": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Accepts a full analysis document or a bare array of scenarios. Every scenario gets a reference lookup; policy failures are vetoed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Scenarios"],
                "summary": "Screens scenarios through the admission gate",
                "parameters": [{"description": "Analysis document or scenario array", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/restapi.AdmitResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/restapi.ErrorResponse"}}
                }
            }
        },
        "/scenarios/explain": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Scenarios"],
                "summary": "Produces a forensic briefing for one scenario",
                "parameters": [{"description": "Scenario inline, or analysis and scenario ids", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/restapi.ExplainRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/restapi.ExplainResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/restapi.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/restapi.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/restapi.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "premortem.AnalysisRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "mission": {"type": "string"},
                "description": {"type": "string"},
                "stack": {"type": "string"},
                "mode": {"type": "string", "enum": ["Standard", "Adversarial", "Systemic-Collapse"]},
                "tier": {"type": "string", "enum": ["FLASH", "PRO"]}
            }
        },
        "premortem.ReportSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "createdAt": {"type": "string"},
                "title": {"type": "string"},
                "owner": {"type": "string"},
                "overallRiskScore": {"type": "number"},
                "decisionStatus": {"type": "string"},
                "scenarios": {"type": "integer"},
                "vetoed": {"type": "integer"}
            }
        },
        "restapi.Session": {
            "type": "object",
            "properties": {
                "agentId": {"type": "string"},
                "accessLevel": {"type": "string", "enum": ["L4_FORENSIC", "L5_ADMIN"]}
            }
        },
        "restapi.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "restapi.AnalysisResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "createdAt": {"type": "string"},
                "owner": {"type": "string"},
                "request": {"$ref": "#/definitions/premortem.AnalysisRequest"},
                "generator": {"type": "string"},
                "analysis": {"type": "object"},
                "decisions": {"type": "array", "items": {"type": "object"}},
                "shareLink": {"type": "string"},
                "lookupError": {"type": "string"}
            }
        },
        "restapi.ShareResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "text": {"type": "string"},
                "shareLink": {"type": "string"},
                "dossierFileName": {"type": "string"}
            }
        },
        "restapi.AdmitResponse": {
            "type": "object",
            "properties": {
                "analysis": {"type": "object"},
                "scenarios": {"type": "array", "items": {"type": "object"}},
                "decisions": {"type": "array", "items": {"type": "object"}},
                "lookupError": {"type": "string"}
            }
        },
        "restapi.ExplainRequest": {
            "type": "object",
            "properties": {
                "analysisId": {"type": "string"},
                "scenarioId": {"type": "string"},
                "scenario": {"type": "object"},
                "stack": {"type": "string"}
            }
        },
        "restapi.ExplainResponse": {
            "type": "object",
            "properties": {"briefing": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pre-Mortem Admission Gate API",
	Description:      "Runs pre-mortem analyses and screens generated failure scenarios through reference lookup and policy validation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
