package http

import (
	"github.com/gin-gonic/gin"

	"syllabusgpt/internal/bootstrap"
	"syllabusgpt/internal/repository"
	"syllabusgpt/internal/transport/http/handler"
	"syllabusgpt/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	docRepo := repository.NewSourceDocumentRepository(app.MySQL)

	authHandler := handler.NewAuthHandler(app.AuthService)
	uploadHandler := handler.NewUploadHandler(app.OCR)
	retrieveHandler := handler.NewRetrieveHandler(app.Retriever)
	notesHandler := handler.NewNotesHandler(app.NotesService)
	knowledgeHandler := handler.NewKnowledgeHandler(app.IngestService, app.IngestPublisher, docRepo)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	authed := v1.Group("")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))

	authed.POST("/upload", uploadHandler.Upload)
	authed.POST("/parse-topics", notesHandler.ParseTopics)
	authed.POST("/hyde/generate", notesHandler.Hyde)

	authed.POST("/retrieve/query", retrieveHandler.Query)
	authed.POST("/retrieve/context", retrieveHandler.Context)

	authed.POST("/notes/generate", notesHandler.Generate)
	authed.POST("/notes/generate-and-export", notesHandler.GenerateAndExport)

	kb := authed.Group("/knowledge")
	kb.POST("/ingest", knowledgeHandler.Ingest)
	kb.GET("/documents", knowledgeHandler.Documents)
	kb.POST("/repair-metadata", knowledgeHandler.RepairMetadata)

	return router
}
