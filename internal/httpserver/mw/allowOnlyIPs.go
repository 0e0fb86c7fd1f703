package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/utils"
)

// AllowOnlyCIDRS restricts a route to the listed IPs/CIDRs. An empty list lets everything through.
// trustProxy should be true when running behind a trusted reverse proxy/tunnel (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: initialized with %d rules, trustProxy=%v", len(allowed), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Debugf("AllowOnlyCIDRS: IP %s REJECTED (path=%s)", ip, r.URL.Path)
				respond.Fail(w, http.StatusForbidden, "ACC_4031", "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
