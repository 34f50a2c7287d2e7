// Package gateway exposes the dashboard's single action endpoint:
// POST /api with an {action, data} envelope, answered with
// {success, data} or {success: false, error}.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/observer"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/usecase"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// Services bundles everything the action handlers call into.
type Services struct {
	Contracts *usecase.ContractService
	Chats     *usecase.ChatService
	Crm       *usecase.CrmService
	Ledger    *usecase.LedgerService
	Settings  *usecase.SettingsService
	Routines  *usecase.RoutineService
	Agenda    *usecase.AgendaService
	Broadcast *usecase.BroadcastService
	Logs      storage.WebhookLogRepo
}

// Request is the action envelope every call carries.
type Request struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Response is the uniform reply envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server is the action gateway HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	services   Services
	companyID  string
	baseLogger *zap.Logger
}

// NewServer creates the gateway. companyID is the tenant every request
// runs under; a X-Company-Id header overrides it per request.
func NewServer(port int, companyID string, services Services, baseLogger *zap.Logger) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		services:   services,
		companyID:  companyID,
		baseLogger: baseLogger,
	}

	s.router.HandleFunc("/api", s.handleAction).Methods(http.MethodPost)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Company-Id"},
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      corsHandler.Handler(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener fails or Stop runs.
func (s *Server) Start() error {
	s.baseLogger.Info("Starting action gateway", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the gateway down.
func (s *Server) Stop(ctx context.Context) error {
	s.baseLogger.Info("Stopping action gateway")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", apperrors.ErrBadRequest))
		return
	}
	if req.Action == "" {
		writeError(w, fmt.Errorf("%w: action is required", apperrors.ErrBadRequest))
		return
	}

	companyID := s.companyID
	if header := r.Header.Get("X-Company-Id"); header != "" {
		companyID = header
	}

	ctx := tenant.WithCompanyID(r.Context(), companyID)
	ctx = logger.WithLogger(ctx, s.baseLogger.With(
		zap.String("action", req.Action),
		zap.String("company_id", companyID),
	))

	data, err := s.dispatch(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	observer.IncAction(req.Action, companyID, status)
	observer.ObserveActionDuration(req.Action, companyID, status, time.Since(start))

	if err != nil {
		logger.FromContext(ctx).Warn("Action failed", zap.Error(err))
		writeError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	utils.WriteJSONResponse(w, httpStatus(err), Response{Success: false, Error: err.Error()})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
