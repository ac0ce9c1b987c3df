package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/audit"
	"github.com/motmatch/mot-marketplace/internal/billing"
	"github.com/motmatch/mot-marketplace/internal/cache"
	"github.com/motmatch/mot-marketplace/internal/config"
	"github.com/motmatch/mot-marketplace/internal/geocode"
	"github.com/motmatch/mot-marketplace/internal/handlers"
	infraRepo "github.com/motmatch/mot-marketplace/internal/infra/repository"
	"github.com/motmatch/mot-marketplace/internal/jobs"
	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	"github.com/motmatch/mot-marketplace/internal/storage"
	ucBooking "github.com/motmatch/mot-marketplace/internal/usecase/booking"
	ucSchedule "github.com/motmatch/mot-marketplace/internal/usecase/schedule"
	ucSubscription "github.com/motmatch/mot-marketplace/internal/usecase/subscription"
	"github.com/motmatch/mot-marketplace/internal/vehiclelookup"
)

// RegisterRoutes wires the whole API surface and returns the job manager so
// main controls the scheduler lifecycle.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) *jobs.JobManager {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	redisCache := cache.New(cfg)
	geocoder := geocode.NewClient(cfg, redisCache)
	vesClient := vehiclelookup.NewClient(cfg, redisCache)
	photoStore := storage.NewPhotoStore(cfg)

	provider, err := billing.NewMercadoPagoProvider(cfg)
	if err != nil {
		log.Fatalf("failed to init payment provider: %v", err)
	}

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	mailer := notify.NewSMTPMailer(cfg)
	notifier := notify.NewDispatcher(db, mailer)

	bookingRepo := infraRepo.NewBookingGormRepository(db)

	// ======================================================
	// USE CASES — BOOKINGS
	// ======================================================
	createBookingUC := ucBooking.NewCreateBooking(bookingRepo, auditDispatcher, notifier)
	cancelBookingUC := ucBooking.NewCancelBooking(bookingRepo, auditDispatcher, notifier)
	updateBookingStatusUC := ucBooking.NewUpdateBookingStatus(bookingRepo, auditDispatcher, notifier)
	availabilityUC := ucBooking.NewGetAvailability(bookingRepo)
	listDriverBookingsUC := ucBooking.NewListDriverBookings(bookingRepo)
	listGarageBookingsUC := ucBooking.NewListGarageBookings(bookingRepo)

	// ======================================================
	// USE CASES — BILLING
	// ======================================================
	subscribeUC := ucSubscription.NewSubscribe(db, provider, auditDispatcher)
	cancelSubscriptionUC := ucSubscription.NewCancel(db, provider, auditDispatcher)
	applyWebhookUC := ucSubscription.NewApplyWebhook(db, provider, notifier)
	reconcileUC := ucSubscription.NewReconcile(db, provider, notifier)

	generateSlotsUC := ucSchedule.NewGenerateSlots(db)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	publicHandler := handlers.NewPublicHandler(db, geocoder, availabilityUC)

	vehicleHandler := handlers.NewVehicleHandler(db, vesClient)
	bookingHandler := handlers.NewBookingHandler(createBookingUC, cancelBookingUC, listDriverBookingsUC)

	garageHandler := handlers.NewGarageHandler(db, geocoder, photoStore)
	garageServiceHandler := handlers.NewGarageServiceHandler(db)
	scheduleHandler := handlers.NewScheduleHandler(db)
	garageBookingHandler := handlers.NewGarageBookingHandler(
		listGarageBookingsUC,
		updateBookingStatusUC,
		cancelBookingUC,
	)
	subscriptionHandler := handlers.NewSubscriptionHandler(db, subscribeUC, cancelSubscriptionUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	adminHandler := handlers.NewAdminHandler(db, provider, auditDispatcher, notifier)
	notificationHandler := handlers.NewNotificationHandler(db)

	webhookHandler := handlers.NewWebhookHandler(cfg, applyWebhookUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/garages", publicHandler.Search)
			publicAPI.GET("/garages/:slug", publicHandler.GetGarage)
			publicAPI.GET("/garages/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/garages/:slug/availability", publicHandler.GetAvailability)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register/driver", authHandler.RegisterDriver)
		api.POST("/auth/register/garage", authHandler.RegisterGarage)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// WEBHOOKS
		// ------------------------------
		api.POST("/webhooks/mercadopago", webhookHandler.HandleMercadoPago)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/notifications", notificationHandler.List)
			secured.PATCH("/me/notifications", notificationHandler.MarkAllRead)
			secured.PATCH("/me/notifications/:id/read", notificationHandler.MarkRead)

			// ------------------------------
			// DRIVER
			// ------------------------------
			driver := secured.Group("/driver")
			driver.Use(middleware.RequireRoles(models.RoleDriver))
			{
				driver.GET("/vehicles", vehicleHandler.List)
				driver.POST("/vehicles", vehicleHandler.Create)
				driver.PATCH("/vehicles/:id", vehicleHandler.Update)
				driver.POST("/vehicles/:id/refresh", vehicleHandler.Refresh)
				driver.DELETE("/vehicles/:id", vehicleHandler.Delete)

				driver.POST("/bookings", bookingHandler.Create)
				driver.GET("/bookings", bookingHandler.List)
				driver.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)
			}

			// ------------------------------
			// GARAGE STAFF
			// ------------------------------
			garage := secured.Group("/garage")
			garage.Use(middleware.RequireRoles(models.RoleGarage))
			{
				garage.GET("/profile", garageHandler.GetMyGarage)
				garage.PATCH("/profile", garageHandler.UpdateMyGarage)
				garage.POST("/profile/photo", garageHandler.UploadPhoto)

				garage.GET("/services", garageServiceHandler.List)
				garage.POST("/services", garageServiceHandler.Create)
				garage.PATCH("/services/:id", garageServiceHandler.Update)

				garage.GET("/schedule", scheduleHandler.GetPatterns)
				garage.PUT("/schedule", scheduleHandler.UpdatePatterns)
				garage.GET("/schedule/exceptions", scheduleHandler.ListExceptions)
				garage.POST("/schedule/exceptions", scheduleHandler.CreateException)
				garage.DELETE("/schedule/exceptions/:id", scheduleHandler.DeleteException)

				garage.GET("/slots", scheduleHandler.ListSlots)
				garage.PATCH("/slots/:id/block", scheduleHandler.BlockSlot)
				garage.PATCH("/slots/:id/unblock", scheduleHandler.UnblockSlot)

				garage.GET("/bookings", garageBookingHandler.List)
				garage.PATCH("/bookings/:id/confirm", garageBookingHandler.Confirm)
				garage.PATCH("/bookings/:id/complete", garageBookingHandler.Complete)
				garage.PATCH("/bookings/:id/no-show", garageBookingHandler.MarkNoShow)
				garage.PATCH("/bookings/:id/cancel", garageBookingHandler.Cancel)

				garage.GET("/plans", subscriptionHandler.ListPlans)
				garage.POST("/subscription", subscriptionHandler.Subscribe)
				garage.GET("/subscription", subscriptionHandler.GetCurrent)
				garage.DELETE("/subscription", subscriptionHandler.Cancel)
				garage.GET("/invoices", subscriptionHandler.ListInvoices)

				garage.GET("/audit-logs", auditLogsHandler.List)
			}

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRoles(models.RoleAdmin))
			{
				admin.GET("/garages", adminHandler.ListGarages)
				admin.PATCH("/garages/:id/approve", adminHandler.ApproveGarage)
				admin.PATCH("/garages/:id/suspend", adminHandler.SuspendGarage)

				admin.GET("/users", adminHandler.ListUsers)
				admin.GET("/bookings", adminHandler.ListBookings)

				admin.GET("/plans", adminHandler.ListPlans)
				admin.POST("/plans", adminHandler.CreatePlan)
				admin.PATCH("/plans/:id", adminHandler.UpdatePlan)

				admin.GET("/invoices", adminHandler.ListInvoices)
				admin.GET("/audit-logs", auditLogsHandler.ListAll)
			}
		}
	}

	// ======================================================
	// SCHEDULED JOBS
	// ======================================================
	return jobs.NewJobManager(
		jobs.NewBillingJob(reconcileUC),
		jobs.NewSlotsJob(generateSlotsUC),
		jobs.NewReminderJob(db, notifier),
	)
}
