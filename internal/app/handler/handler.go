package handler

import (
	"net/http"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/handler/api"
	"dbmis/internal/app/handler/middleware"
	"dbmis/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const Version = "1.0.0"

type Handler struct {
	Repository         *repository.Repository
	AuthAPIHandler     *api.AuthHandler
	UserAPIHandler     *api.UserHandler
	DataAPIHandler     *api.DataHandler
	BusinessAPIHandler *api.BusinessHandler
	// StaticDir - каталог собранного SPA; пустой отключает раздачу
	StaticDir string
}

func NewHandler(rep *repository.Repository, staticDir string) *Handler {
	return &Handler{
		Repository:         rep,
		AuthAPIHandler:     &api.AuthHandler{Repository: rep},
		UserAPIHandler:     &api.UserHandler{Repository: rep},
		DataAPIHandler:     &api.DataHandler{Repository: rep},
		BusinessAPIHandler: &api.BusinessHandler{Repository: rep},
		StaticDir:          staticDir,
	}
}

func (h *Handler) SetupRoutes(router *gin.Engine) {
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("", h.Health)

		// Аутентификация
		apiGroup.POST("/auth/login", h.AuthAPIHandler.LoginAPI)
		authGroup := apiGroup.Group("/", middleware.AuthMiddleware(h.Repository))
		{
			authGroup.GET("/auth/me", h.AuthAPIHandler.MeAPI)
			authGroup.POST("/auth/change-password", h.AuthAPIHandler.ChangePasswordAPI)
			authGroup.POST("/auth/logout", h.AuthAPIHandler.LogoutAPI)

			// Пользователи, только администратор
			users := authGroup.Group("/users", middleware.RequireRole(ds.RoleAdmin))
			{
				users.GET("", h.UserAPIHandler.GetUsersAPI)
				users.GET("/:id", h.UserAPIHandler.GetUserAPI)
				users.POST("", h.UserAPIHandler.CreateUserAPI)
				users.PUT("/:id", h.UserAPIHandler.UpdateUserAPI)
				users.POST("/:id/reset-password", h.UserAPIHandler.ResetPasswordAPI)
				users.DELETE("/:id", h.UserAPIHandler.DeleteUserAPI)
			}

			// Домен данных
			authGroup.GET("/data/categories", h.DataAPIHandler.GetCategoriesAPI)
			authGroup.GET("/data/categories/:id", h.DataAPIHandler.GetCategoryAPI)
			authGroup.POST("/data/categories", h.DataAPIHandler.CreateCategoryAPI)
			authGroup.PUT("/data/categories/:id", h.DataAPIHandler.UpdateCategoryAPI)
			authGroup.DELETE("/data/categories/:id", h.DataAPIHandler.DeleteCategoryAPI)

			authGroup.GET("/data/items", h.DataAPIHandler.GetItemsAPI)
			authGroup.GET("/data/items/:id", h.DataAPIHandler.GetItemAPI)
			authGroup.POST("/data/items", h.DataAPIHandler.CreateItemAPI)
			authGroup.PUT("/data/items/:id", h.DataAPIHandler.UpdateItemAPI)
			authGroup.DELETE("/data/items/:id", h.DataAPIHandler.DeleteItemAPI)
			authGroup.POST("/data/items/:id/attachment", h.DataAPIHandler.UploadAttachmentAPI)
			authGroup.GET("/data/items/:id/attachment", h.DataAPIHandler.GetAttachmentAPI)

			// Бизнес-справочники и статистика, только чтение
			authGroup.GET("/business/categories", h.BusinessAPIHandler.GetCategoriesAPI)
			authGroup.GET("/business/regions", h.BusinessAPIHandler.GetRegionsAPI)
			authGroup.GET("/business/services", h.BusinessAPIHandler.GetServicesAPI)
			authGroup.GET("/business/data", h.BusinessAPIHandler.GetBusinessDataAPI)
		}
	}
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} object "status, message, version"
// @Router /api [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "DBMIS API is running",
		"version": Version,
	})
}

func (h *Handler) errorHandler(c *gin.Context, code int, err error) {
	logrus.Error(err.Error())
	c.JSON(code, gin.H{
		"status":  "error",
		"message": http.StatusText(code),
	})
}
