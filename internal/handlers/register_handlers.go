package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/mentorhub/payments-backend/internal/core/ports/services"
	"github.com/mentorhub/payments-backend/internal/middleware"
	"github.com/mentorhub/payments-backend/internal/platform/config"
)

// RegisterRoutes wires every handler into the gin engine. The API group is
// JWT-protected; the webhook ingress is public behind a rate limit because the
// processor signs its deliveries instead of authenticating.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer, webhookEvents portsrepo.WebhookEventRepository) {
	registerValidations()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		registerLedgerRoutes(api.Group("/ledger"), services.Ledger)
		registerPaymentRoutes(api, services.Payment)
	}

	webhookRate, err := limiter.NewRateFromFormatted(cfg.WebhookRateLimit)
	if err != nil {
		log.Printf("Warning: invalid WEBHOOK_RATE_LIMIT %q, falling back to 100-M: %v", cfg.WebhookRateLimit, err)
		webhookRate = limiter.Rate{Period: time.Minute, Limit: 100}
	}
	webhookLimiter := limiter.New(memory.NewStore(), webhookRate)

	wh := newWebhookHandler(services.Payment, webhookEvents, cfg.ProcessorWebhookSecret)
	r.POST("/webhooks/processor", middleware.RateLimit(webhookLimiter), wh.handleProcessorEvent)
}

// registerValidations adds the currencycode binding tag: three ASCII letters,
// any case. Services uppercase before persisting.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) != 3 {
			return false
		}
		for _, r := range code {
			if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
				return false
			}
		}
		return true
	})
}
