package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/primedclinic/intake-service/internal/utils"
)

type HandlerManager struct {
	questionnaireHandler *QuestionnaireHandler
	intakeHandler        *IntakeHandler
	contactHandler       *ContactHandler
	exportHandler        *ExportHandler
	authHandler          *AuthHandler
}

func NewHandlerManager(
	questionnaireHandler *QuestionnaireHandler,
	intakeHandler *IntakeHandler,
	contactHandler *ContactHandler,
	exportHandler *ExportHandler,
	authHandler *AuthHandler,
) *HandlerManager {
	return &HandlerManager{
		questionnaireHandler: questionnaireHandler,
		intakeHandler:        intakeHandler,
		contactHandler:       contactHandler,
		exportHandler:        exportHandler,
		authHandler:          authHandler,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, logger utils.Logger) {
	router.Use(utils.LoggerMiddleware(logger))

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.questionnaireHandler.StartSession)
			sessions.GET("/:token", hm.questionnaireHandler.GetSession)
			sessions.GET("/:token/screen", hm.questionnaireHandler.GetScreen)
			sessions.POST("/:token/answers", hm.questionnaireHandler.Answer)
			sessions.POST("/:token/next", hm.questionnaireHandler.Next)
			sessions.POST("/:token/previous", hm.questionnaireHandler.Previous)
			sessions.POST("/:token/register", hm.intakeHandler.Register)
			sessions.POST("/:token/save", hm.questionnaireHandler.Save)
			sessions.POST("/:token/submit", hm.questionnaireHandler.Submit)
		}

		v1.GET("/questions", hm.questionnaireHandler.GetQuestions)

		address := v1.Group("/address")
		{
			address.GET("/suggest", hm.intakeHandler.SuggestAddresses)
			address.POST("/resolve", hm.intakeHandler.ResolveAddress)
		}

		v1.POST("/contact", hm.contactHandler.Submit)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/logout", hm.authHandler.Logout)
			auth.GET("/state", hm.authHandler.State)
		}

		exports := v1.Group("/export")
		{
			exports.GET("/leads.xlsx", hm.exportHandler.Leads)
			exports.GET("/submissions.xlsx", hm.exportHandler.Submissions)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "intake-service",
		})
	})
}
