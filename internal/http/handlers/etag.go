package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag renders payload with a strong ETag and answers a
// matching If-None-Match on GET or HEAD with 304. Responses to bearer-token
// requests are marked private so shared caches never keep one user's view.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	etag := etagFor(body)
	ctx.Header("ETag", etag)

	if ctx.GetHeader("Authorization") != "" {
		ctx.Header("Cache-Control", "private, no-cache")
	} else {
		ctx.Header("Cache-Control", "public, no-cache")
	}

	method := ctx.Request.Method
	if (method == http.MethodGet || method == http.MethodHead) && etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

// etagFor keeps the first half of a SHA-256 digest, plenty to tell two
// renderings of one record apart.
func etagFor(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagMatches applies If-None-Match's weak comparison: W/ prefixes are
// ignored and "*" matches anything.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
