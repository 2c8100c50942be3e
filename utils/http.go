// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound collaborator calls (profile sync). Every
// external call is bounded; a hung collaborator must not stall a request.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
