// Package api carries the embedded OpenAPI description of the record
// server.
package api

import _ "embed"

//go:embed openapi.yaml
var Spec []byte
