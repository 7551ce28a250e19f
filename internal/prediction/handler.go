package prediction

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/shared/auth"
	"github.com/healthsim/diagnosis/internal/shared/config"
	"github.com/healthsim/diagnosis/internal/shared/errors"
	secmiddleware "github.com/healthsim/diagnosis/internal/shared/middleware"
)

// WelcomeMessage is returned by the root endpoint.
const WelcomeMessage = "Welcome to the medical diagnosis prediction API"

// Handler provides HTTP handlers for the prediction module
type Handler struct {
	svc     *Service
	auth    config.AuthConfig
	limiter *secmiddleware.IPRateLimiter
}

// NewHandler creates a new prediction handler. A nil limiter disables rate
// limiting on the prediction endpoint.
func NewHandler(svc *Service, authCfg config.AuthConfig, limiter *secmiddleware.IPRateLimiter) *Handler {
	return &Handler{svc: svc, auth: authCfg, limiter: limiter}
}

// Routes registers the prediction routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Welcome)
	r.Get("/random", h.Random)

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware)
		}
		r.Post("/predictions", h.Predict)
	})

	r.Group(func(r chi.Router) {
		if h.auth.Enabled {
			r.Use(auth.Middleware(h.auth))
			r.Use(auth.RequireRoles(h.auth.ReportRoles...))
		}
		r.Get("/report", h.Report)
	})

	return r
}

// Welcome returns the API greeting
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

// PredictResponse is the body of a successful prediction.
type PredictResponse struct {
	ID        string              `json:"id"`
	Diagnosis classifier.Category `json:"diagnosis"`
}

// Predict classifies the posted observation
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw classifier.RawObservation
	if err := dec.Decode(&raw); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			writeError(w, errors.BadRequest("request body too large"))
			return
		}
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, errors.BadRequest("request body must contain a single JSON object"))
		return
	}

	rec, err := h.svc.Predict(r.Context(), raw)
	if err != nil {
		var vErr *classifier.ValidationError
		if stderrors.As(err, &vErr) {
			writeError(w, errors.Validation(vErr.Error(), map[string]string{"field": vErr.Field}))
			return
		}
		writeError(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{ID: rec.ID.String(), Diagnosis: rec.Diagnosis})
}

// Random returns a random diagnosis for smoke tests
func (h *Handler) Random(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]classifier.Category{"diagnosis": h.svc.Random()})
}

// Report returns prediction statistics
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeError(w, errors.BadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	report, err := h.svc.Report(r.Context(), limit)
	if err != nil {
		if stderrors.Is(err, ErrInvalidLimit) {
			writeError(w, errors.BadRequest(err.Error()))
			return
		}
		writeError(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	appErr := errors.From(err)

	body := map[string]any{
		"error": appErr.Message,
		"code":  appErr.Code,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	if appErr.Err == errors.ErrValidation {
		body["detail"] = appErr.Message
	}

	writeJSON(w, appErr.HTTPStatus, body)
}
