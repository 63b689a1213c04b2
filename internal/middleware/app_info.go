package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/fast-note-ai-service/pkg/app"
)

func AppInfo(name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Set("access_host", app.GetAccessHost(c))

		c.Next()
	}
}
