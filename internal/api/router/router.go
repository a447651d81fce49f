package router

import (
	"github.com/cuongbtq/bid-service/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware())

	r.GET("/health", handler.NewHealthHandler(deps).Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jobHandler := handler.NewJobHandler(deps)
	bidHandler := handler.NewBidHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)

	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.CreateJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/:job_id", jobHandler.GetJob)
			jobs.POST("/:job_id/cancel", jobHandler.CancelJob)
			jobs.POST("/:job_id/complete", jobHandler.CompleteJob)

			jobs.POST("/:job_id/bids", bidHandler.SubmitBid)
			jobs.GET("/:job_id/bids", bidHandler.ListJobBids)
		}

		bids := v1.Group("/bids")
		{
			bids.GET("/:bid_id", bidHandler.GetBid)
			bids.PATCH("/:bid_id", bidHandler.UpdateBid)
			bids.POST("/:bid_id/accept", bidHandler.AcceptBid)
			bids.POST("/:bid_id/reject", bidHandler.RejectBid)
			bids.POST("/:bid_id/withdraw", bidHandler.WithdrawBid)
		}

		v1.GET("/contractors/:contractor_id/bids", bidHandler.ListContractorBids)

		v1.GET("/users/:user_id/notifications", notificationHandler.ListNotifications)
		v1.POST("/notifications/:notification_id/read", notificationHandler.MarkRead)
	}

	return r
}
