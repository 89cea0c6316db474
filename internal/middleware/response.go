package middleware

import (
	"net/http"

	"github.com/fieldpilot/portal-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}
