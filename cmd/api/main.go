package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/config"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	appHTTP "github.com/lumina-hr/payroll-backend-go/internal/handler/http"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/cron"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/jwt"
	"github.com/lumina-hr/payroll-backend-go/internal/repository/postgresql"
	attendanceService "github.com/lumina-hr/payroll-backend-go/internal/service/attendance"
	biometricService "github.com/lumina-hr/payroll-backend-go/internal/service/biometric"
	calendarService "github.com/lumina-hr/payroll-backend-go/internal/service/calendar"
	employeeService "github.com/lumina-hr/payroll-backend-go/internal/service/employee"
	payrollService "github.com/lumina-hr/payroll-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	loc, err := time.LoadLocation(cfg.Engine.Timezone)
	if err != nil {
		log.Fatal("Invalid reference timezone: ", err)
	}

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	punchRepo := postgresql.NewPunchRepository(db, loc)
	recordRepo := postgresql.NewAttendanceRepository(db)
	batchRepo := postgresql.NewImportBatchRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	pol := policy.Default()
	normalizer := attendanceService.NewNormalizer(loc)

	calendarSvc := calendarService.NewCalendarService(holidayRepo, loc)
	attendanceSvc := attendanceService.NewAttendanceService(db, normalizer, pol, punchRepo, recordRepo, employeeRepo, calendarSvc)
	importSvc := biometricService.NewImportService(batchRepo, punchRepo, recordRepo, employeeRepo, calendarSvc, normalizer, pol)
	payrollSvc := payrollService.NewPayrollService(db, payrollRepo, recordRepo, employeeRepo, calendarSvc, pol, loc)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, jwtService)

	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	biometricHandler := appHTTP.NewBiometricHandler(importSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	calendarHandler := appHTTP.NewCalendarHandler(calendarSvc)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(attendanceSvc, loc, cfg.Engine.AbsenceSynthesisHour)
	attendanceJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        cfg.App.Name,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		jwtService,
		employeeHandler,
		attendanceHandler,
		biometricHandler,
		payrollHandler,
		calendarHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
