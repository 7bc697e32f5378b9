package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/lumina-hr/payroll-backend-go/internal/handler/http/middleware"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	AppName        string
	Env            string
	AllowedOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	jwtService jwt.Service,
	employeeHandler EmployeeHandler,
	attendanceHandler AttendanceHandler,
	biometricHandler BiometricHandler,
	payrollHandler PayrollHandler,
	calendarHandler CalendarHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/auth/login", employeeHandler.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Post("/clock-out", attendanceHandler.ClockOut)
				r.Get("/my", attendanceHandler.GetMyAttendance)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", attendanceHandler.List)
					r.Post("/{id}/approve", attendanceHandler.Approve)
					r.Post("/{id}/reject", attendanceHandler.Reject)
					r.Post("/synthesize-absences", attendanceHandler.SynthesizeAbsences)
				})
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", employeeHandler.List)
					r.Post("/", employeeHandler.Create)
					r.Get("/{id}", employeeHandler.Get)
					r.Put("/{id}", employeeHandler.Update)
					r.Delete("/{id}", employeeHandler.Deactivate)
				})

				r.Route("/imports", func(r chi.Router) {
					r.Post("/", biometricHandler.Import)
					r.Get("/", biometricHandler.ListBatches)
				})

				r.Route("/payroll", func(r chi.Router) {
					r.Get("/compute", payrollHandler.Compute)
					r.Post("/generate", payrollHandler.Generate)
					r.Get("/results", payrollHandler.ListResults)

					r.Route("/rules", func(r chi.Router) {
						r.Get("/", payrollHandler.ListRules)
						r.Post("/", payrollHandler.CreateRule)
						r.Delete("/{id}", payrollHandler.DeleteRule)
						r.Post("/{id}/assign", payrollHandler.AssignRule)
					})

					r.Put("/roles", payrollHandler.UpsertRole)
				})

				r.Route("/holidays", func(r chi.Router) {
					r.Get("/", calendarHandler.ListHolidays)
					r.Post("/", calendarHandler.CreateHoliday)
					r.Delete("/{id}", calendarHandler.DeleteHoliday)
				})
			})
		})
	})
	return r
}
