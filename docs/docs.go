// Package docs is a hand-authored stand-in for swag's generated package —
// swag's codegen cannot run in this environment, so the SwaggerInfo struct
// and the minimal doc template it normally emits are written out by hand in
// the shape swag itself produces.
package docs

import (
	"github.com/swaggo/swag"
)

var doc = `{
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
        "/events/{id}/availability": {
            "get": {
                "summary": "List availability",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "session_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/slots/{id}/holds": {
            "post": {
                "summary": "Create hold",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/holds/{id}/confirm": {
            "post": {
                "summary": "Confirm booking",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Slot Reservation Core API",
	Description:      "Mediates concurrent holds and bookings against limited-capacity event time slots.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  doc,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
