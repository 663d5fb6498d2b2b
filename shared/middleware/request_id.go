package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type requestIdKey struct{}

const RequestIdHeader = "X-Request-ID"

var requestIdPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestId propagates a sane incoming X-Request-ID or generates a new one.
func RequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIdHeader)
		if !requestIdPattern.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIdHeader, id)
		ctx := context.WithValue(r.Context(), requestIdKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestId returns the id set by RequestId, or "".
func GetRequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}
