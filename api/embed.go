// Package api 内嵌 OpenAPI 文档
package api

import _ "embed"

//go:embed openapi/openapi.yaml
var OpenAPISpec []byte
