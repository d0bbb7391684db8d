package server

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Non-browser clients refused by RequestGate.
var botUserAgent = regexp.MustCompile(`(?i)(curl|wget|python|go-http-client|httpie|postman|insomnia|axios|node-fetch|java/|okhttp|libwww|scrapy|bot|spider|crawler|headless)`)

// RequestLogger logs one line per request with status and latency.
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

// RequestGate rejects requests from origins outside allowed and from
// clients that do not identify as a browser.
func RequestGate(allowed []string) gin.HandlerFunc {
	origins := newOriginSet(allowed)

	return func(c *gin.Context) {
		if origin := requestOrigin(c.Request); origin != "" && !origins.allows(origin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden origin"})
			return
		}

		ua := c.Request.UserAgent()
		if strings.TrimSpace(ua) == "" || botUserAgent.MatchString(ua) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden client"})
			return
		}

		c.Next()
	}
}

// requestOrigin returns the Origin header, or the origin part of Referer
// when Origin is absent. Empty when neither is usable.
func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	ref := r.Header.Get("Referer")
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// An unparseable referer cannot match any allowed origin
		return ref
	}
	return u.Scheme + "://" + u.Host
}

type originSet struct {
	any     bool
	origins map[string]bool
}

func newOriginSet(allowed []string) originSet {
	s := originSet{origins: make(map[string]bool, len(allowed))}
	for _, o := range allowed {
		o = normalizeOrigin(o)
		if o == "*" {
			s.any = true
		}
		if o != "" {
			s.origins[o] = true
		}
	}
	return s
}

func (s originSet) allows(origin string) bool {
	return s.any || s.origins[normalizeOrigin(origin)]
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
}
