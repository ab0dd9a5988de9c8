package router

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/schedulifyx-api/internal/handler"
	"github.com/noah-isme/schedulifyx-api/internal/middleware"
	"github.com/noah-isme/schedulifyx-api/internal/models"
	"github.com/noah-isme/schedulifyx-api/internal/service"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
	"github.com/noah-isme/schedulifyx-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/schedulifyx-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/schedulifyx-api/pkg/middleware/requestid"
	"github.com/noah-isme/schedulifyx-api/pkg/response"
)

// Route level failure bodies.
const (
	MsgRegisterFailed  = "Internal Server Error during registration."
	MsgLoginFailed     = "Internal Server Error during login."
	MsgLogoutFailed    = MsgLoginFailed
	MsgAddSubjectFail  = "Internal Server Error while adding subject."
	MsgAddRoomFail     = "Internal Server Error while adding room."
	MsgGenerateFailed  = "Internal Server Error while generating timetable."
	MsgResultFailed    = "Internal Server Error while fetching timetable."
	MsgDevelopmentMode = "React app is running in development mode via Vite."
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Admin     *handler.AdminHandler
	Subject   *handler.SubjectHandler
	Room      *handler.RoomHandler
	Timetable *handler.TimetableHandler
	Metrics   *handler.MetricsHandler
	Realtime  http.Handler
}

// Options configures the engine.
type Options struct {
	Production     bool
	FrontendDir    string
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Auth           middleware.TokenValidator
	Audit          middleware.AuditWriter
}

// New builds the gin engine with every route mounted.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	log := opts.Logger
	admin := func(controller Controller) Controller {
		return middleware.AdminOnly(opts.Auth, controller)
	}

	r.POST("/register", Guard(log, MsgRegisterFailed, h.Admin.Register))
	r.POST("/login", Guard(log, MsgLoginFailed, h.Admin.Login))
	r.POST("/logout", Guard(log, MsgLogoutFailed, admin(h.Admin.Logout)))
	r.POST("/add-subject",
		middleware.Audit(opts.Audit, log, models.AuditActionSubjectCreate, "subjects"),
		Guard(log, MsgAddSubjectFail, admin(h.Subject.Create)))
	r.POST("/add-room-venue",
		middleware.Audit(opts.Audit, log, models.AuditActionRoomCreate, "rooms"),
		Guard(log, MsgAddRoomFail, admin(h.Room.Create)))
	r.POST("/generate-time-table",
		middleware.Audit(opts.Audit, log, models.AuditActionTimetableGenerate, "timetables"),
		Guard(log, MsgGenerateFailed, admin(h.Timetable.Generate)))
	r.GET("/result-time-table", Guard(log, MsgResultFailed, h.Timetable.Result))

	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if h.Realtime != nil {
		r.GET("/ws/time-table", gin.WrapH(h.Realtime))
	}
	if !opts.Production {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(Frontend(opts.Production, opts.FrontendDir))
	return r
}

// Controller handles a request and reports failure by returning an error.
type Controller func(c *gin.Context) error

// Guard runs controller and turns failures into responses. Client errors go
// out through the response envelope. Anything else, panics included, becomes
// a 500 carrying only the route's fixed message.
func Guard(log *zap.Logger, failure string, controller Controller) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("controller panic",
					zap.String("path", c.FullPath()),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				response.Failure(c, failure)
			}
		}()

		err := controller(c)
		if err == nil {
			return
		}
		_ = c.Error(err)

		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.IsClientError() {
			response.Error(c, appErr)
			return
		}
		log.Error("controller failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Failure(c, failure)
	}
}

// Frontend serves the built single page app in production and a placeholder
// otherwise. Unmatched non-GET requests get a 404 envelope.
func Frontend(production bool, dir string) gin.HandlerFunc {
	notFound := appErrors.Clone(appErrors.ErrNotFound, "route not found")
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.Error(c, notFound)
			return
		}
		if !production {
			c.String(http.StatusOK, MsgDevelopmentMode)
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if serveFile(c, file) {
			return
		}
		if !serveFile(c, index) {
			response.Error(c, notFound)
		}
	}
}

// serveFile writes name if it is a regular file. It goes through
// http.ServeContent because http.ServeFile rejects any request path holding
// "..", even after the path has been cleaned onto index.html.
func serveFile(c *gin.Context, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return true
}
