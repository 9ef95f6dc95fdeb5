package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openheritage/heritage-backend/internal/handler"
	"github.com/openheritage/heritage-backend/internal/middleware"
	"github.com/openheritage/heritage-backend/pkg/jwt"
)

// Handlers bundles everything the router needs
type Handlers struct {
	Auth       *handler.AuthHandler
	Content    *handler.ContentHandler
	Submission *handler.SubmissionHandler
	Amendment  *handler.AmendmentHandler
	Admin      *handler.AdminHandler
	Reference  *handler.ReferenceHandler
	Upload     *handler.UploadHandler
	Collab     *handler.CollaborationHandler
	JWT        *jwt.Manager
}

// Register wires all routes onto the engine
func Register(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// Public
	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.GET("/reference/taxonomy", h.Reference.Taxonomy)
	v1.GET("/reference/villages", h.Reference.Villages)
	v1.GET("/content", h.Content.List)
	v1.GET("/content/search", h.Content.Search)
	v1.GET("/content/:id", h.Content.Get)
	v1.GET("/content/:id/download", h.Content.Download)
	v1.GET("/collab/contributors", h.Collab.Contributors)

	// Authenticated contributors
	auth := v1.Group("", middleware.JWTAuth(h.JWT))
	{
		auth.POST("/submissions", h.Submission.Create)
		auth.GET("/submissions/my", h.Submission.ListMine)
		auth.GET("/submissions/:id", h.Submission.Get)
		auth.PUT("/submissions/:id/resubmit", h.Submission.Resubmit)
		auth.GET("/submissions/:id/versions", h.Amendment.History)
		auth.GET("/submissions/:id/versions/:version", h.Amendment.GetVersion)

		auth.POST("/uploads", h.Upload.Upload)
		auth.DELETE("/uploads", h.Upload.Delete)

		auth.POST("/collab/requests", h.Collab.Request)
		auth.GET("/collab/requests", h.Collab.ListMine)
		auth.PATCH("/collab/requests/:id", h.Collab.Respond)
		auth.GET("/collab/can-chat/:user_id", h.Collab.CanChat)

		auth.POST("/amendments", h.Amendment.Submit)
		auth.GET("/amendments/my", h.Amendment.ListMine)
		auth.GET("/amendments/:id", h.Amendment.Get)
		auth.DELETE("/amendments/:id", h.Amendment.Cancel)
	}

	// Admin
	admin := v1.Group("/admin", middleware.JWTAuth(h.JWT), middleware.RequireAdmin())
	{
		admin.GET("/stats", h.Admin.Stats)

		admin.GET("/submissions", h.Admin.ListSubmissions)
		admin.GET("/submissions/:id", h.Admin.GetSubmission)
		admin.POST("/submissions/:id/review", h.Admin.ReviewSubmission)
		admin.DELETE("/submissions/:id", h.Admin.DeleteSubmission)

		admin.GET("/amendments", h.Amendment.ListAll)
		admin.GET("/amendments/:id", h.Amendment.Get)
		admin.POST("/amendments/:id/review", h.Amendment.Review)
	}
}
