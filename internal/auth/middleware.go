package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Middleware admits or rejects each request before next runs. Rejected
// requests get a JSON {"detail": ...} body and never reach next.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Authenticate(r)
		if err != nil {
			writeRejection(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func writeRejection(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	detail := "Unauthorized"

	var authErr *Error
	if errors.As(err, &authErr) {
		status = authErr.Status
		detail = authErr.Detail
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
