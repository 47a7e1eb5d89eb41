package pkg

import (
	"context"
	"log"

	"github.com/casbin/casbin/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"SmartScore/internal/academic"
	"SmartScore/internal/auth"
	"SmartScore/internal/config"
	"SmartScore/internal/directory"
	"SmartScore/internal/notification"
	"SmartScore/internal/resultchecker"
	"SmartScore/pkg/middleware"
)

var EchoModules = fx.Module("echo",
	fx.Provide(NewEchoServer),
	fx.Provide(config.NewMongoDBConfig),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewMailConfig),
	fx.Provide(config.NewEmailService),
	fx.Provide(config.NewSMSConfig),
	fx.Provide(config.NewSMSService),

	fx.Provide(auth.NewAuthConfig),
	fx.Provide(auth.NewUserRepository),
	fx.Provide(func(email *config.EmailService) auth.Mailer { return email }),
	fx.Provide(auth.NewAuthService),
	fx.Provide(auth.NewUserService),
	fx.Provide(auth.NewAuthHandler),

	fx.Provide(middleware.NewEnforcer),

	fx.Provide(directory.NewDirectoryRepository),
	fx.Provide(func(repo *directory.DirectoryRepository) directory.IdentifierStore { return repo }),
	fx.Provide(directory.NewIdentifierAllocator),
	fx.Provide(directory.NewDirectoryService),
	fx.Provide(directory.NewDirectoryHandler),

	fx.Provide(academic.NewAcademicRepository),
	fx.Provide(func(repo *academic.AcademicRepository) academic.AcademicStore { return repo }),
	fx.Provide(academic.NewAcademicService),
	fx.Provide(academic.NewAcademicHandler),

	fx.Provide(resultchecker.NewSignerConfig),
	fx.Provide(resultchecker.NewTokenSigner),
	fx.Provide(resultchecker.NewTokenRepository),
	fx.Provide(func(repo *resultchecker.TokenRepository) resultchecker.TokenStore { return repo }),
	fx.Provide(func(repo *directory.DirectoryRepository) resultchecker.StudentDirectory { return repo }),
	fx.Provide(func(svc *academic.AcademicService) resultchecker.ClassRoster { return svc }),
	fx.Provide(func(svc *academic.AcademicService) resultchecker.ResultSource { return svc }),
	fx.Provide(resultchecker.NewResultCheckerService),
	fx.Provide(resultchecker.NewResultCheckerHandler),

	fx.Provide(notification.NewNotificationRepository),
	fx.Provide(func(repo *notification.NotificationRepository) notification.NotificationStore { return repo }),
	fx.Provide(func(repo *directory.DirectoryRepository) notification.StudentDirectory { return repo }),
	fx.Provide(func(email *config.EmailService) notification.EmailSender { return email }),
	fx.Provide(func(sms *config.SMSService) notification.SMSSender { return sms }),
	fx.Provide(notification.NewNotificationService),
	fx.Provide(notification.NewNotificationScheduler),
	fx.Provide(notification.NewNotificationHandler),

	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(lc fx.Lifecycle, scheduler *notification.NotificationScheduler) {
		scheduler.StartScheduler(lc)
	}))

func NewEchoServer(lc fx.Lifecycle) *echo.Echo {
	e := echo.New()
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	port := ":8080"
	log.Println("Server running on http://localhost" + port[1:])
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(port); err != nil {
					log.Fatal("Failed to start the server:", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("shutting down the server ...")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func RegisterRoutes(
	e *echo.Echo,
	authConfig *auth.AuthConfig,
	enforcer *casbin.Enforcer,
	authHandler *auth.AuthHandler,
	directoryHandler *directory.DirectoryHandler,
	academicHandler *academic.AcademicHandler,
	resultCheckerHandler *resultchecker.ResultCheckerHandler,
	notificationHandler *notification.NotificationHandler,
) {
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/forgot-password", authHandler.ForgotPassword)
	e.POST("/verify-email", authHandler.VerifyEmail)
	e.POST("/reset-password", authHandler.ResetPassword)

	// Parents use these with a token instead of a login.
	e.POST("/result-checker/generate-token", resultCheckerHandler.GenerateToken)
	e.POST("/result-checker/check-results", resultCheckerHandler.CheckResults)

	protected := e.Group("/api")
	protected.Use(middleware.JWT(authConfig))
	protected.Use(middleware.RBAC(enforcer))

	protected.GET("/profile", authHandler.Profile)

	protected.POST("/schools", directoryHandler.CreateSchool)
	protected.GET("/schools", directoryHandler.ListSchools)
	protected.GET("/schools/:id", directoryHandler.GetSchool)
	protected.PUT("/schools/:id", directoryHandler.UpdateSchool)
	protected.DELETE("/schools/:id", directoryHandler.DeleteSchool)

	protected.POST("/students", directoryHandler.CreateStudent)
	protected.GET("/students/:id", directoryHandler.GetStudent)
	protected.GET("/students/school/:schoolId", directoryHandler.ListStudents)
	protected.PUT("/students/:id", directoryHandler.UpdateStudent)
	protected.DELETE("/students/:id", directoryHandler.DeleteStudent)

	protected.POST("/classes", academicHandler.CreateClass)
	protected.GET("/classes/:id", academicHandler.GetClass)
	protected.GET("/classes/school/:schoolId", academicHandler.ListClasses)
	protected.POST("/classes/:id/students", academicHandler.AddStudentToClass)
	protected.DELETE("/classes/:id", academicHandler.DeleteClass)

	protected.POST("/subjects", academicHandler.CreateSubject)
	protected.GET("/subjects/school/:schoolId", academicHandler.ListSubjects)
	protected.DELETE("/subjects/:id", academicHandler.DeleteSubject)

	protected.POST("/teachers", academicHandler.CreateTeacher)
	protected.GET("/teachers/school/:schoolId", academicHandler.ListTeachers)
	protected.DELETE("/teachers/:id", academicHandler.DeleteTeacher)

	protected.POST("/scores", academicHandler.RecordScore)
	protected.GET("/results/:studentId/:classId", academicHandler.GetResults)

	protected.POST("/notifications", notificationHandler.Send)
	protected.POST("/notifications/bulk", notificationHandler.SendBulk)
	protected.POST("/notifications/schedule", notificationHandler.Schedule)
	protected.GET("/notifications/student/:studentId", notificationHandler.List)
	protected.GET("/notifications/stats/:schoolId", notificationHandler.Stats)
	protected.DELETE("/notifications/:id", notificationHandler.Delete)

	protected.POST("/result-checker/reset-trials", resultCheckerHandler.ResetTrials)
}
