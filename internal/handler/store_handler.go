package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/service"
	"github.com/noah-isme/appointment-booking/internal/store"
)

const (
	storeEventName = "store"
	keepAliveEvent = "ping"
)

// StoreHandler streams appointment store snapshots over server-sent events.
type StoreHandler struct {
	views     *service.ViewService
	keepAlive time.Duration
	logger    *zap.Logger
}

// NewStoreHandler creates a new handler. keepAlive <= 0 defaults to 15s.
func NewStoreHandler(views *service.ViewService, keepAlive time.Duration, logger *zap.Logger) *StoreHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreHandler{views: views, keepAlive: keepAlive, logger: logger}
}

// Events godoc
// @Summary Store event stream
// @Description Server-sent events carrying the session's store snapshot after every change
// @Tags Store
// @Produce text/event-stream
// @Success 200 {object} dto.StoreView
// @Failure 401 {object} response.Envelope
// @Router /api/v1/store/events [get]
func (h *StoreHandler) Events(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}

	// Only the newest pending snapshot matters; older ones are dropped.
	updates := make(chan store.Snapshot, 1)
	unsubscribe := us.Appointments.Subscribe(func(snap store.Snapshot) {
		for {
			select {
			case updates <- snap:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")

	initial := us.Appointments.Snapshot()
	last := initial.Version
	c.SSEvent(storeEventName, h.views.Store(initial))
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("store stream closed", zap.String("session_id", us.ID))
			return
		case snap := <-updates:
			if snap.Version <= last {
				continue
			}
			last = snap.Version
			c.SSEvent(storeEventName, h.views.Store(snap))
		case <-ticker.C:
			c.SSEvent(keepAliveEvent, gin.H{"version": last})
		}
		c.Writer.Flush()
	}
}
