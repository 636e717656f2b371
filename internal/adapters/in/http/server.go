// Package http exposes the control surface and live feeds over REST.
// It coordinates between echo handlers and application use cases.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tracker/internal/core/application/usecases/commands"
	"tracker/internal/core/application/usecases/queries"
	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/tracking"
	"tracker/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Handler interfaces keep the server testable without real storage or bus.
type (
	// RegisterOrderHandler processes order registration commands.
	RegisterOrderHandler interface {
		Handle(ctx context.Context, cmd commands.RegisterOrderCommand) error
	}

	// StartTrackingHandler processes tracking activation commands.
	StartTrackingHandler interface {
		Handle(ctx context.Context, cmd commands.StartTrackingCommand) error
	}

	// StopTrackingHandler processes tracking deactivation commands.
	StopTrackingHandler interface {
		Handle(ctx context.Context, cmd commands.StopTrackingCommand) error
	}

	// ActiveOrdersHandler serves the active orders listing.
	ActiveOrdersHandler interface {
		Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]queries.GetActiveOrdersQueryResponse, error)
	}

	// TrackOrderHandler serves single order position lookups.
	TrackOrderHandler interface {
		Handle(ctx context.Context, query queries.TrackOrderQuery) (queries.TrackOrderQueryResponse, error)
	}

	// EventWatcher registers live location feeds; an empty order id follows
	// every order.
	EventWatcher interface {
		Watch(orderID string) (<-chan tracking.LocationEvent, func(), error)
	}

	// ActivityReader reports whether an order currently receives ticks.
	ActivityReader interface {
		IsActive(id string) bool
	}
)

// Server wires HTTP routes to application use cases.
type Server struct {
	registerOrderHandler RegisterOrderHandler
	startTrackingHandler StartTrackingHandler
	stopTrackingHandler  StopTrackingHandler

	activeOrdersHandler ActiveOrdersHandler
	trackOrderHandler   TrackOrderHandler

	watcher  EventWatcher
	activity ActivityReader
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	registerOrderHandler RegisterOrderHandler,
	startTrackingHandler StartTrackingHandler,
	stopTrackingHandler StopTrackingHandler,
	activeOrdersHandler ActiveOrdersHandler,
	trackOrderHandler TrackOrderHandler,
	watcher EventWatcher,
	activity ActivityReader,
) *Server {
	return &Server{
		registerOrderHandler: registerOrderHandler,
		startTrackingHandler: startTrackingHandler,
		stopTrackingHandler:  stopTrackingHandler,
		activeOrdersHandler:  activeOrdersHandler,
		trackOrderHandler:    trackOrderHandler,
		watcher:              watcher,
		activity:             activity,
	}
}

// RegisterRoutes attaches all endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/active", s.GetActiveOrders)
	api.GET("/orders/:id/track", s.TrackOrder)
	api.GET("/orders/:id/events", s.StreamOrderEvents)
	api.POST("/orders/:id/tracking", s.StartTracking)
	api.DELETE("/orders/:id/tracking", s.StopTracking)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrder handles POST /api/v1/orders - registers a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body NewOrder
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	source, err := kernel.NewGeoPoint(body.Source.Lat, body.Source.Lon)
	if err != nil {
		return badRequest(ctx, "Invalid source: "+err.Error())
	}
	destination, err := kernel.NewGeoPoint(body.Destination.Lat, body.Destination.Lon)
	if err != nil {
		return badRequest(ctx, "Invalid destination: "+err.Error())
	}

	cmd, err := commands.NewRegisterOrderCommand(body.ID, body.Items, body.TruckID, source, destination)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if err = s.registerOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, OrderCreated{ID: cmd.OrderID()})
}

// StartTracking handles POST /api/v1/orders/:id/tracking - starts movement.
func (s *Server) StartTracking(ctx echo.Context) error {
	var body StartTracking
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewStartTrackingCommand(ctx.Param("id"), body.UseRoute)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err = s.startTrackingHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusAccepted)
}

// StopTracking handles DELETE /api/v1/orders/:id/tracking - pauses movement.
func (s *Server) StopTracking(ctx echo.Context) error {
	cmd, err := commands.NewStopTrackingCommand(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err = s.stopTrackingHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetActiveOrders handles GET /api/v1/orders/active - lists in-flight orders.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	query := queries.NewGetActiveOrdersQuery()

	orders, err := s.activeOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]Order, len(orders))
	for i, o := range orders {
		response[i] = Order{
			ID:          o.ID,
			TruckID:     o.TruckID,
			Source:      toPoint(o.Source),
			Current:     toPoint(o.Current),
			Destination: toPoint(o.Destination),
			Status:      o.Status.String(),
			Tracking:    s.activity.IsActive(o.ID),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// TrackOrder handles GET /api/v1/orders/:id/track - returns the current position.
func (s *Server) TrackOrder(ctx echo.Context) error {
	query, err := queries.NewTrackOrderQuery(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	track, err := s.trackOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, Track{
		ID:                      track.ID,
		Source:                  toPoint(track.Source),
		Current:                 toPoint(track.Current),
		Destination:             toPoint(track.Destination),
		Status:                  track.Status.String(),
		DistanceToDestinationKm: track.DistanceToDestinationKm,
	})
}

// StreamOrderEvents handles GET /api/v1/orders/:id/events - a server-sent
// event stream of location updates. The stream ends when the client goes
// away or the relay shuts down.
func (s *Server) StreamOrderEvents(ctx echo.Context) error {
	events, cancel, err := s.watcher.Watch(ctx.Param("id"))
	if err != nil {
		return writeError(ctx, err)
	}
	defer cancel()

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	clientGone := ctx.Request().Context().Done()
	for {
		select {
		case <-clientGone:
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if _, err = fmt.Fprintf(resp, "data: %s\n\n", event.Encode()); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

func toPoint(p kernel.GeoPoint) Point {
	return Point{Lat: p.Latitude(), Lon: p.Longitude()}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps application errors onto HTTP status codes.
func writeError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrRouteUnavailable):
		code = http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, Error{
		Code:    code,
		Message: err.Error(),
	})
}
