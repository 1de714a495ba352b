package middleware

import (
	"net/http"

	"github.com/kavinmuthu/scamlure/pkg/utils"
)

// APIKey rejects requests whose x-api-key header does not match the
// configured key. An empty configured key disables the check.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" && r.Header.Get("x-api-key") != key {
				utils.RespondError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
