// Package transport is the HTTP front-end for a Scheduler: it exposes
// scheduling operations over a small JSON API and keeps a handle registry so
// one-shot events can be cancelled by id after they are created.
package transport

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/imtaco/eventsched/internal/activity"
	"github.com/imtaco/eventsched/internal/log"
	"github.com/imtaco/eventsched/internal/validation"
	notifyredis "github.com/imtaco/eventsched/notify/redis"
	"github.com/imtaco/eventsched/scheduler"
)

const metricsServiceName = "eventsched_http"

// Router wires the scheduler, the activity recorder, and an optional
// downstream publisher into a gin engine.
type Router struct {
	scheduler *scheduler.Scheduler
	activity  *activity.Recorder
	publisher notifyredis.Publisher
	engine    *gin.Engine
	logger    *log.Logger

	mu      sync.Mutex
	handles map[string]*scheduler.Event
}

// NewRouter builds a Router. publisher may be nil, in which case fired
// events are recorded but never published downstream.
func NewRouter(sched *scheduler.Scheduler, recorder *activity.Recorder, publisher notifyredis.Publisher, logger *log.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(metricsServiceName))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	r := &Router{
		scheduler: sched,
		activity:  recorder,
		publisher: publisher,
		engine:    engine,
		logger:    logger,
		handles:   make(map[string]*scheduler.Event),
	}

	r.engine.Use(func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("requestID", requestID)
		r.logger.Info("incoming request",
			log.String("requestId", requestID),
			log.String("method", c.Request.Method),
			log.String("url", c.Request.URL.String()))
		c.Next()
	})

	r.setupRoutes()
	return r
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.POST("/api/events", r.scheduleEvent)
	r.engine.DELETE("/api/events/:id", r.cancelEvent)
	r.engine.GET("/api/events", r.listEvents)
	r.engine.DELETE("/api/events", r.cancelAll)

	r.engine.POST("/api/events/recurring", r.scheduleRecurring)
	r.engine.DELETE("/api/events/recurring/:id", r.cancelRecurring)

	r.engine.GET("/api/activity", r.listActivity)
	r.engine.GET("/health", r.healthCheck)
}

func (r *Router) scheduleEvent(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	if (req.DelayMS == nil) == (req.At == nil) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "exactly one of delay_ms or at must be set",
		})
		return
	}

	action := r.fireAction(req.Label)

	var ev *scheduler.Event
	var err error
	if req.At != nil {
		ev, err = r.scheduler.EnterAbs(*req.At, req.Priority, action)
	} else {
		ev, err = r.scheduler.Enter(msToDuration(*req.DelayMS), req.Priority, action)
	}
	if err != nil {
		r.writeSchedulerError(c, err)
		return
	}

	id := uuid.New().String()
	r.mu.Lock()
	r.handles[id] = ev
	r.mu.Unlock()

	r.activity.Record(activity.KindScheduled, req.Label)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      id,
		"event":   toEventView(ev),
	})
}

func (r *Router) cancelEvent(c *gin.Context) {
	var uri EventIDURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	r.mu.Lock()
	ev, ok := r.handles[uri.ID]
	delete(r.handles, uri.ID)
	r.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "unknown event id",
		})
		return
	}

	if err := r.scheduler.Cancel(ev); err != nil {
		r.writeSchedulerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) listEvents(c *gin.Context) {
	snapshot := r.scheduler.Snapshot()
	views := make([]EventView, 0, len(snapshot))
	for _, ev := range snapshot {
		views = append(views, toEventView(&ev))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": views})
}

func (r *Router) cancelAll(c *gin.Context) {
	if err := r.scheduler.CancelAll(); err != nil {
		r.writeSchedulerError(c, err)
		return
	}

	r.mu.Lock()
	r.handles = make(map[string]*scheduler.Event)
	r.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) scheduleRecurring(c *gin.Context) {
	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	action := r.fireAction(req.Label)
	id, err := r.scheduler.EnterRecurring(msToDuration(req.IntervalMS), req.Priority, action)
	if err != nil {
		r.writeSchedulerError(c, err)
		return
	}

	r.activity.Record(activity.KindScheduled, req.Label)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      id,
	})
}

func (r *Router) cancelRecurring(c *gin.Context) {
	var uri RecurringIDURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	if err := r.scheduler.CancelRecurring(uri.ID); err != nil {
		r.writeSchedulerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) listActivity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"transitions": r.activity.Recent(),
	})
}

func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  r.scheduler.State().String(),
	})
}

func (r *Router) fireAction(label string) scheduler.Action {
	var action scheduler.Action = func() error {
		r.activity.Record(activity.KindFired, label)
		return nil
	}
	if r.publisher != nil {
		action = notifyredis.Wrap(r.publisher, label, action)
	}
	return action
}

func (r *Router) writeSchedulerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduler.CodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, scheduler.CodeInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, scheduler.CodeNotRunning):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
	default:
		r.logger.Error("scheduler operation failed", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}
