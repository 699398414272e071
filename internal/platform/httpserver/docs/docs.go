// Package docs holds the OpenAPI document served under /swagger/.
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/votees/{kind}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Create a votee with zeroed tallies",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/CreateVoteeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/VoteeResponse"}},
                    "404": {"description": "Unknown kind or parent", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Votee exists", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/votees/{kind}/{votee_id}/votes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Cast, change or repeat a vote",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "votee_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CastVoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "Resolved", "schema": {"$ref": "#/definitions/VoteResponse"}},
                    "400": {"description": "Invalid vote", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Votee not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Stale state", "schema": {"$ref": "#/definitions/VoteResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "summary": "Remove the caller's vote",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "votee_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header"},
                    {"type": "string", "name": "voting_field", "in": "query"},
                    {"type": "string", "name": "previous", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Resolved", "schema": {"$ref": "#/definitions/VoteResponse"}},
                    "409": {"description": "Nothing to remove", "schema": {"$ref": "#/definitions/VoteResponse"}}
                }
            }
        },
        "/v1/votees/{kind}/{votee_id}/tally": {
            "get": {
                "produces": ["application/json"],
                "summary": "Read one voting field's aggregates",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "votee_id", "in": "path", "required": true},
                    {"type": "string", "name": "voting_field", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TallyResponse"}},
                    "404": {"description": "Votee not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/votees/{kind}/{votee_id}/votes/{voter_id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Report how a voter voted",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "votee_id", "in": "path", "required": true},
                    {"type": "string", "name": "voter_id", "in": "path", "required": true},
                    {"type": "string", "name": "voting_field", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoterStatusResponse"}}
                }
            }
        },
        "/v1/voters/{voter_id}/votees/{kind}": {
            "get": {
                "produces": ["application/json"],
                "summary": "List the votees a voter has voted on",
                "parameters": [
                    {"type": "string", "name": "voter_id", "in": "path", "required": true},
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "voting_field", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoterVoteesResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "VoterVoteesResponse": {
            "type": "object",
            "properties": {
                "voter_id": {"type": "string"},
                "kind": {"type": "string"},
                "voting_field": {"type": "string"},
                "votees": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"votee_id": {"type": "string"}, "value": {"type": "string"}}
                    }
                }
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "CreateVoteeRequest": {
            "type": "object",
            "properties": {"votee_id": {"type": "string"}, "parent_id": {"type": "string"}}
        },
        "VoteeResponse": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "votee_id": {"type": "string"},
                "parent_id": {"type": "string"},
                "voting_fields": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CastVoteRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "string", "enum": ["up", "down"]},
                "mode": {"type": "string", "enum": ["vote", "new", "revote"]},
                "voting_field": {"type": "string"},
                "previous": {"type": "string"},
                "anonymous": {"type": "boolean"}
            }
        },
        "TallyResponse": {
            "type": "object",
            "properties": {
                "votee_id": {"type": "string"},
                "voting_field": {"type": "string"},
                "up": {"type": "array", "items": {"type": "string"}},
                "down": {"type": "array", "items": {"type": "string"}},
                "up_count": {"type": "integer"},
                "down_count": {"type": "integer"},
                "faceless_up_count": {"type": "integer"},
                "faceless_down_count": {"type": "integer"},
                "total_up_count": {"type": "integer"},
                "total_down_count": {"type": "integer"},
                "count": {"type": "integer"},
                "point": {"type": "number"},
                "ratio": {"type": "number"}
            }
        },
        "VoteResponse": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "votee_id": {"type": "string"},
                "transition": {"type": "string"},
                "outcome": {"type": "string"},
                "applied": {"type": "boolean"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "tally": {"$ref": "#/definitions/TallyResponse"}
            }
        },
        "VoterStatusResponse": {
            "type": "object",
            "properties": {
                "votee_id": {"type": "string"},
                "voting_field": {"type": "string"},
                "voter_id": {"type": "string"},
                "voted": {"type": "boolean"},
                "value": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Votable API",
	Description:      "Up/down voting on document-store entities.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
