package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler builds the gin engine with all routes.
func (s *HTTPServer) Handler() http.Handler {
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	router.Use(s.accessLog)
	router.Use(s.recovery())
	router.Use(corsMiddleware())

	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "route not found")
	})

	router.GET("/health", s.health)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
	}

	protected := api.Group("")
	protected.Use(s.requireAuth)
	{
		user := protected.Group("/auth")
		{
			user.GET("/userinfo", s.getUserInfo)
			user.PUT("/userinfo", s.updateUserInfo)
			user.POST("/change-password", s.changePassword)
		}

		diary := protected.Group("/diary")
		{
			diary.POST("/save", s.saveDiary)
			diary.GET("", s.listDiaries)
			diary.GET("/stats/all", s.stats)
			diary.GET("/search/keyword", s.searchDiaries)
			diary.GET("/:date", s.getDiary)
			diary.DELETE("/:date", s.deleteDiary)
		}

		upload := protected.Group("/upload")
		{
			upload.POST("/single", s.uploadSingle)
			upload.POST("/multiple", s.uploadMultiple)
		}
	}

	return router
}
