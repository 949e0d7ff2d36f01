package httpx

import (
	"io"
	"net/http"
)

// healthHandler answers liveness probes. It deliberately checks nothing
// downstream: a portal instance with a degraded database still serves
// cached reads, so the probe only reflects process health.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	// A write failure means the client is gone; nothing to do.
	_, _ = io.WriteString(w, `{"status":"ok","service":"jobhub-ui-api"}`)
}
