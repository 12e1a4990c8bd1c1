// Package api carries the OpenAPI document of the escrow HTTP surface.
// The same bytes drive request validation and the swagger UI.
package api

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed openapi.json
var OpenAPI []byte

type document struct{}

func (document) ReadDoc() string {
	return string(OpenAPI)
}

func init() {
	swag.Register(swag.Name, document{})
}
