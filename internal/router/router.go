package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/handler"
	"github.com/noah-isme/madrasah-admin-api/internal/middleware"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/madrasah-admin-api/pkg/middleware/cors"
	"github.com/noah-isme/madrasah-admin-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/madrasah-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

// Handlers groups every HTTP handler the route table mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Students     *handler.StudentHandler
	Staff        *handler.StaffHandler
	Attendance   *handler.AttendanceHandler
	Expenses     *handler.ExpenseHandler
	Transactions *handler.TransactionHandler
	Fees         *handler.FeeHandler
	Salaries     *handler.SalaryHandler
	Exams        *handler.ExamHandler
	Timetable    *handler.TimetableHandler
	Notices      *handler.NoticeHandler
	Documents    *handler.DocumentHandler
	Dashboard    *handler.DashboardHandler
	Reports      *handler.ReportHandler
	Exports      *handler.ExportHandler
	Activity     *handler.ActivityHandler
	Metrics      *handler.MetricsHandler
}

// Options are the deployment knobs of the route table.
type Options struct {
	APIPrefix         string
	AllowedOrigins    []string
	Language          string
	AuthRatePerMinute int
	EnableDocs        bool
}

// Deps are the collaborators New needs.
type Deps struct {
	Logger   *zap.Logger
	Metrics  middleware.RequestObserver
	Tokens   middleware.TokenValidator
	Activity middleware.ActivityRecorder
	Handlers Handlers
	Options  Options
}

// New builds the engine with the full route table.
func New(deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := deps.Handlers
	opts := deps.Options
	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Locale(opts.Language))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(deps.Metrics))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrNotFound)
	})

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)
	api.GET("/files/:token", h.Documents.Download)

	limiter := ratelimit.NewTokenBucket(opts.AuthRatePerMinute, opts.AuthRatePerMinute)
	public := api.Group("/auth", limiter.Middleware())
	public.POST("/sign-up", h.Auth.SignUp)
	public.POST("/sign-in", h.Auth.SignIn)
	public.POST("/refresh", h.Auth.Refresh)

	secured := api.Group("", middleware.JWT(deps.Tokens), middleware.Activity(deps.Activity))
	secured.POST("/auth/sign-out", h.Auth.SignOut)
	secured.GET("/auth/me", h.Auth.Me)

	mountAdmin(secured, h)
	mountPeople(secured, h)
	mountFinance(secured, h)
	mountAcademics(secured, h)
	mountInsights(secured, h)

	return r
}

func mountAdmin(secured *gin.RouterGroup, h Handlers) {
	users := secured.Group("/users", middleware.RequireRoles(middleware.AdminRoles...))
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id/role", h.Users.UpdateRole)
	users.PUT("/:id/status", h.Users.SetStatus)

	secured.GET("/activity", middleware.RequireRoles(middleware.AdminRoles...), h.Activity.List)
}

func mountPeople(secured *gin.RouterGroup, h Handlers) {
	students := secured.Group("/students", middleware.WritesRequire(middleware.StaffRoles...))
	students.GET("", h.Students.List)
	students.GET("/overview", h.Students.Overview)
	students.GET("/:id", h.Students.Get)
	students.POST("", h.Students.Create)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)

	staff := secured.Group("/staff", middleware.WritesRequire(middleware.StaffRoles...))
	staff.GET("", h.Staff.List)
	staff.GET("/suggest-role", h.Staff.SuggestRole)
	staff.GET("/:id", h.Staff.Get)
	staff.POST("", h.Staff.Create)
	staff.PUT("/:id", h.Staff.Update)
	staff.DELETE("/:id", h.Staff.Delete)

	attendance := secured.Group("/attendance", middleware.WritesRequire(middleware.StaffRoles...))
	attendance.GET("", h.Attendance.List)
	attendance.GET("/summary", h.Attendance.Summary)
	attendance.GET("/today", h.Attendance.Today)
	attendance.POST("", h.Attendance.Mark)
	attendance.POST("/bulk", h.Attendance.MarkBulk)
	attendance.DELETE("/:id", h.Attendance.Delete)
}

func mountFinance(secured *gin.RouterGroup, h Handlers) {
	finance := middleware.WritesRequire(middleware.FinanceRoles...)

	expenses := secured.Group("/expenses", finance)
	expenses.GET("", h.Expenses.List)
	expenses.GET("/groups", h.Expenses.Groups)
	expenses.GET("/:id", h.Expenses.Get)
	expenses.POST("", h.Expenses.Create)
	expenses.POST("/batches", h.Expenses.CreateBatch)
	expenses.PUT("/:id", h.Expenses.Update)
	expenses.DELETE("/:id", h.Expenses.Delete)
	expenses.DELETE("/batches/:batchId", h.Expenses.DeleteBatch)

	transactions := secured.Group("/transactions", finance)
	transactions.GET("", h.Transactions.List)
	transactions.GET("/:id", h.Transactions.Get)
	transactions.POST("", h.Transactions.Create)
	transactions.PUT("/:id", h.Transactions.Update)
	transactions.DELETE("/:id", h.Transactions.Delete)

	structures := secured.Group("/fee-structures", finance)
	structures.GET("", h.Fees.ListStructures)
	structures.GET("/:id", h.Fees.GetStructure)
	structures.POST("", h.Fees.CreateStructure)
	structures.PUT("/:id", h.Fees.UpdateStructure)
	structures.DELETE("/:id", h.Fees.DeleteStructure)

	payments := secured.Group("/fee-payments", finance)
	payments.GET("", h.Fees.ListPayments)
	payments.GET("/:id", h.Fees.GetPayment)
	payments.POST("", h.Fees.CollectPayment)
	payments.DELETE("/:id", h.Fees.DeletePayment)

	salaries := secured.Group("/salary-payments", finance)
	salaries.GET("", h.Salaries.List)
	salaries.GET("/unpaid", h.Salaries.Unpaid)
	salaries.GET("/:id", h.Salaries.Get)
	salaries.POST("", h.Salaries.Record)
	salaries.PUT("/:id", h.Salaries.Update)
	salaries.DELETE("/:id", h.Salaries.Delete)
}

func mountAcademics(secured *gin.RouterGroup, h Handlers) {
	staffWrites := middleware.WritesRequire(middleware.StaffRoles...)

	exams := secured.Group("/exams", staffWrites)
	exams.GET("", h.Exams.List)
	exams.GET("/:id", h.Exams.Get)
	exams.POST("", h.Exams.Create)
	exams.PUT("/:id", h.Exams.Update)
	exams.DELETE("/:id", h.Exams.Delete)
	exams.GET("/:id/results", h.Exams.Results)
	exams.POST("/:id/results", h.Exams.SaveResults)
	exams.DELETE("/:id/results/:resultId", h.Exams.DeleteResult)

	timetable := secured.Group("/timetable", staffWrites)
	timetable.GET("", h.Timetable.List)
	timetable.GET("/:id", h.Timetable.Get)
	timetable.POST("", h.Timetable.Create)
	timetable.PUT("/:id", h.Timetable.Update)
	timetable.DELETE("/:id", h.Timetable.Delete)

	notices := secured.Group("/notices", staffWrites)
	notices.GET("", h.Notices.List)
	notices.GET("/recent", h.Notices.Recent)
	notices.GET("/:id", h.Notices.Get)
	notices.POST("", h.Notices.Create)
	notices.PUT("/:id", h.Notices.Update)
	notices.DELETE("/:id", h.Notices.Delete)

	documents := secured.Group("/documents", staffWrites)
	documents.GET("", h.Documents.List)
	documents.GET("/:id", h.Documents.Get)
	documents.POST("", h.Documents.Upload)
	documents.DELETE("/:id", h.Documents.Delete)
}

func mountInsights(secured *gin.RouterGroup, h Handlers) {
	secured.GET("/dashboard", h.Dashboard.Stats)

	reports := secured.Group("/reports")
	reports.GET("/finance", h.Reports.Finance)
	reports.GET("/expenses", h.Reports.Expenses)
	reports.GET("/attendance", h.Reports.Attendance)
	reports.GET("/exams/:id", h.Reports.ExamSheet)

	secured.GET("/exports/:entity", h.Exports.Entity)
}
