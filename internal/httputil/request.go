package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxRequestBody caps request bodies; pasted documents can be large but
// a full transfer payload should still fit comfortably under 10MB.
const maxRequestBody = 10 << 20

// ParseJSON decodes the request body into dest. Unknown fields pass
// through; validation happens downstream in the domain validators.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
