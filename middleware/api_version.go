package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"mediafolder/utils"
)

const codeUnsupportedVersion = "FRAMEWORK__API_VERSION_NOT_SUPPORTED"

// APIVersion accepts the :version path segment in the form "v<n>" when n is
// one of the supported versions.
func APIVersion(supported []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("version")
		version, ok := strings.CutPrefix(raw, "v")
		if !ok || version == "" || !slices.Contains(supported, version) {
			utils.NotFoundResponse(c, codeUnsupportedVersion, "API version "+raw+" is not supported")
			c.Abort()
			return
		}

		c.Next()
	}
}
