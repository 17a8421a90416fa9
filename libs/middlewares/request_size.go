package middlewares

import (
	"fmt"
	"mime"
	"net/http"
)

// RequestSizeLimitMiddleware caps request bodies. Multipart uploads may use up
// to maxUploadSize bytes, every other body is held to maxBodySize.
func RequestSizeLimitMiddleware(maxUploadSize, maxBodySize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := maxBodySize
			if isMultipart(r) {
				limit = maxUploadSize
			}

			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				fmt.Fprintf(w, `{"error":"request body too large: maximum size is %s"}`, formatSize(limit))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// formatSize renders whole megabytes as "N MB" and anything else in bytes
func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
