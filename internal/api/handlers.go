package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"foodlog/internal/matcher"
	"foodlog/internal/model"
	"foodlog/internal/tracker"
)

const (
	defaultSearchLimit = 3
	maxBodyBytes       = 1 << 20
)

// Tracker is the subset of tracker operations the API exposes.
// *tracker.Service and *app.App both satisfy it.
type Tracker interface {
	Scan(text string, topK int) ([]matcher.Match, error)
	Log(food model.Food, quantity float64) (*model.Entry, error)
	LogByName(name string, quantity float64) (*model.Entry, error)
	LogText(text string, quantity float64) (*model.Entry, error)
	ListEntries() ([]*model.Entry, error)
	Summary() ([]model.DaySummary, error)
	EntriesForDay(day string) (*tracker.DayReport, error)
	AddFood(food model.Food) (model.Food, error)
	Foods() ([]model.Food, error)
}

// Handler serves the food log over HTTP. Calls into the tracker are
// serialised: the store does a full read-modify-write per call.
type Handler struct {
	mu       sync.Mutex
	tracker  Tracker
	validate *validator.Validate
	metrics  *Metrics
	logger   *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(t Tracker, metrics *Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		tracker:  t,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

type searchResponse struct {
	Matches []matcher.Match `json:"matches"`
	Count   int             `json:"count"`
}

type entriesResponse struct {
	Entries []*model.Entry `json:"entries"`
	Count   int            `json:"count"`
}

type summaryResponse struct {
	Days  []model.DaySummary `json:"days"`
	Count int                `json:"count"`
}

type foodsResponse struct {
	Foods []model.Food `json:"foods"`
	Count int          `json:"count"`
}

// logEntryRequest names the food one of three ways: an exact catalog name,
// free text to scan, or a full food record. Quantity defaults to 1.
type logEntryRequest struct {
	FoodName string      `json:"food_name" validate:"required_without_all=Query Food"`
	Query    string      `json:"query" validate:"max=500"`
	Food     *model.Food `json:"food"`
	Quantity *float64    `json:"quantity"`
}

type addFoodRequest struct {
	Name           string             `json:"name" validate:"required,max=200"`
	ServingSize    string             `json:"serving_size" validate:"max=100"`
	Calories       *float64           `json:"calories" validate:"required,gte=0"`
	Macronutrients map[string]float64 `json:"macronutrients" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
	Aliases        []string           `json:"aliases" validate:"omitempty,dive,required,max=200"`
}

// SearchFoods handles GET /foods/search?query=...&limit=N
func (h *Handler) SearchFoods(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	h.mu.Lock()
	matches, err := h.tracker.Scan(query, limit)
	h.mu.Unlock()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	result := "hit"
	if len(matches) == 0 {
		result = "miss"
	}
	h.metrics.Scans.WithLabelValues(result).Inc()

	if matches == nil {
		matches = []matcher.Match{}
	}
	WriteJSON(w, http.StatusOK, searchResponse{Matches: matches, Count: len(matches)})
}

// LogEntry handles POST /entries
func (h *Handler) LogEntry(w http.ResponseWriter, r *http.Request) {
	var req logEntryRequest
	if !h.decode(w, r, &req) {
		return
	}

	quantity := 1.0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	h.mu.Lock()
	var (
		entry *model.Entry
		err   error
	)
	switch {
	case req.FoodName != "":
		entry, err = h.tracker.LogByName(req.FoodName, quantity)
	case req.Query != "":
		entry, err = h.tracker.LogText(req.Query, quantity)
	default:
		entry, err = h.tracker.Log(*req.Food, quantity)
	}
	h.mu.Unlock()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.metrics.EntriesLogged.Inc()
	h.metrics.CaloriesLogged.Add(entry.Calories)
	WriteJSON(w, http.StatusCreated, entry)
}

// ListEntries handles GET /entries
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	entries, err := h.tracker.ListEntries()
	h.mu.Unlock()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entriesResponse{Entries: entries, Count: len(entries)})
}

// Summary handles GET /summary and GET /summary?day=YYYY-MM-DD
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if day := r.URL.Query().Get("day"); day != "" {
		report, err := h.tracker.EntriesForDay(day)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, report)
		return
	}

	days, err := h.tracker.Summary()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summaryResponse{Days: days, Count: len(days)})
}

// AddFood handles POST /foods
func (h *Handler) AddFood(w http.ResponseWriter, r *http.Request) {
	var req addFoodRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	food, err := h.tracker.AddFood(model.Food{
		Name:           req.Name,
		ServingSize:    req.ServingSize,
		Calories:       *req.Calories,
		Macronutrients: req.Macronutrients,
		Aliases:        req.Aliases,
	})
	h.mu.Unlock()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.metrics.FoodsAdded.Inc()
	WriteJSON(w, http.StatusCreated, food)
}

// ListFoods handles GET /foods
func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	foods, err := h.tracker.Foods()
	h.mu.Unlock()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, foodsResponse{Foods: foods, Count: len(foods)})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// decode reads and validates a JSON body. On failure it writes a 400 and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		WriteBadRequest(w, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// writeServiceError maps tracker error kinds to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalidInput), errors.Is(err, tracker.ErrInvalidQuantity):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, tracker.ErrDuplicateFood):
		WriteConflict(w, err.Error())
	case errors.Is(err, tracker.ErrNoMatch):
		WriteNotFound(w, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		WriteInternalError(w, "internal error")
	}
}
