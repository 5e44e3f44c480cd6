// Package docs embeds the OpenAPI document served next to the Swagger UI.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed swagger.json
var swaggerJSON []byte

// DocPath is where the UI loads the document from.
const DocPath = "/swagger/doc.json"

func ServeDoc(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(swaggerJSON)
}
