package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/cache"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	reportCache *cache.ReportCache
	detector    *compliance.Detector // 共享的解析缓存从不清空，只能传入已经通过格式校验的数据
	publish     func(msg *domain.MailMessage) error

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	h := &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		detector:    compliance.NewDetector(),

		Mux: chi.NewRouter(),
	}

	h.publish = h.publishMail

	// 没有 redis 时每次都重新计算合规报告
	if rdb != nil {
		h.reportCache = cache.NewReportCache(rdb, time.Duration(cfg.Redis.ReportExpiration)*time.Second)
	}

	return h, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	adminOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Post("/time-ranges/check", h.CheckTimeRange)

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", h.GetAllLocations)
			r.With(adminOnly).Post("/", h.CreateLocation)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.location)
				r.Get("/", h.GetLocation)
				r.With(adminOnly).Patch("/", h.UpdateLocation)
				r.With(adminOnly).Delete("/", h.DeleteLocation)

				r.Get("/employees", h.GetLocationEmployees)
				r.Post("/employees", h.CreateEmployee)

				r.Route("/shifts", func(r chi.Router) {
					r.Get("/", h.GetLocationShifts)
					r.Post("/", h.CreateShift)
					r.Post("/batch", h.CreateShiftsBatch)
					r.Post("/check", h.CheckShift)
				})

				r.Get("/compliance", h.GetComplianceReport)
				r.Post("/compliance/notify", h.NotifyCompliance)
				r.Post("/roster/generate", h.GenerateRoster)
			})
		})

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Use(h.employee)
			r.Get("/", h.GetEmployee)
			r.Patch("/", h.UpdateEmployee)
			r.Delete("/", h.DeleteEmployee)
		})

		r.Route("/shifts/{id}", func(r chi.Router) {
			r.Use(h.shift)
			r.Get("/", h.GetShift)
			r.Patch("/", h.UpdateShift)
			r.Delete("/", h.DeleteShift)
		})
	})
}
