package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/MayurUbarhande0/recommendations-api/domain"
	"github.com/MayurUbarhande0/recommendations-api/pkg/logger"
	"github.com/MayurUbarhande0/recommendations-api/pkg/metrics"
)

type (
	RecommendationService interface {
		Get(ctx context.Context, userID uint64) (domain.RecommendationResult, domain.CacheTier, error)
		GetMany(ctx context.Context, userIDs []uint64) (domain.BatchResult, error)
		Invalidate(ctx context.Context, userID uint64) error
	}

	RecommendationHandler struct {
		service      RecommendationService
		validate     *validator.Validate
		timeout      time.Duration
		maxBatchSize int
	}

	BatchQuery struct {
		UserIDs string `query:"user_ids" validate:"required"`
	}
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

type RecommendationPayload struct {
	Weightage             float64  `json:"weightage"`
	SearchWeight          float64  `json:"search_weight"`
	PurchaseWeight        float64  `json:"purchase_weight"`
	RecommendedCategories []string `json:"recommended_categories"`
	ExploreCategories     []string `json:"explore_categories"`
}

type MetadataPayload struct {
	SearchCount   int `json:"search_count"`
	PurchaseCount int `json:"purchase_count"`
}

type RecommendResponse struct {
	UserID          uint64                `json:"user_id"`
	Recommendations RecommendationPayload `json:"recommendations"`
	Metadata        MetadataPayload       `json:"metadata"`
}

type BatchEntry struct {
	UserID          uint64                 `json:"user_id"`
	Recommendations *RecommendationPayload `json:"recommendations,omitempty"`
	Metadata        *MetadataPayload       `json:"metadata,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

type BatchResponse struct {
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []BatchEntry `json:"results"`
}

func NewRecommendationHandler(service RecommendationService, maxBatchSize int) *RecommendationHandler {
	if maxBatchSize <= 0 {
		maxBatchSize = 50
	}
	return &RecommendationHandler{
		service:      service,
		validate:     validator.New(),
		timeout:      10 * time.Second,
		maxBatchSize: maxBatchSize,
	}
}

// GET /recommend/:user_id
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	userID, err := parseUserID(c.Param("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	start := time.Now()
	result, tier, err := h.service.Get(ctx, userID)
	metrics.RecommendLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("Failed to get recommendation", "user_id", userID, "error", err)
		status := statusForError(err)
		metrics.RecommendRequests.WithLabelValues(strconv.Itoa(status)).Inc()
		return c.JSON(status, ResponseError{Message: err.Error()})
	}

	metrics.RecommendRequests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	c.Response().Header().Set("X-Cache", cacheHeader(tier))

	return c.JSON(http.StatusOK, buildRecommendResponse(userID, result))
}

// GET /batch-recommend?user_ids=1,2,3
func (h *RecommendationHandler) BatchRecommend(c echo.Context) error {
	var q BatchQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "user_ids is required"})
	}

	userIDs, err := parseUserIDs(q.UserIDs)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user_ids format"})
	}
	if len(userIDs) > h.maxBatchSize {
		return c.JSON(http.StatusBadRequest, ResponseError{
			Message: fmt.Sprintf("maximum %d users per batch request", h.maxBatchSize),
		})
	}

	metrics.BatchSize.Observe(float64(len(userIDs)))

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	batch, err := h.service.GetMany(ctx, userIDs)
	if err != nil {
		logger.Error("Failed to serve batch recommendation", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	results := make([]BatchEntry, 0, len(batch.Items))
	for _, item := range batch.Items {
		entry := BatchEntry{UserID: item.UserID}
		if item.Err != nil {
			entry.Error = errorCode(item.Err)
		} else {
			payload := recommendationPayload(*item.Result)
			meta := metadataPayload(*item.Result)
			entry.Recommendations = &payload
			entry.Metadata = &meta
		}
		results = append(results, entry)
	}

	return c.JSON(http.StatusOK, BatchResponse{
		Successful: batch.Successful,
		Failed:     batch.Failed,
		Results:    results,
	})
}

// POST /invalidate-cache/:user_id
func (h *RecommendationHandler) InvalidateCache(c echo.Context) error {
	userID, err := parseUserID(c.Param("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	metrics.InvalidateRequests.Inc()

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.Invalidate(ctx, userID); err != nil {
		logger.Error("Failed to invalidate cache", "user_id", userID, "error", err)
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Cache invalidated for user %d", userID),
	})
}

func buildRecommendResponse(userID uint64, result domain.RecommendationResult) RecommendResponse {
	return RecommendResponse{
		UserID:          userID,
		Recommendations: recommendationPayload(result),
		Metadata:        metadataPayload(result),
	}
}

func recommendationPayload(result domain.RecommendationResult) RecommendationPayload {
	return RecommendationPayload{
		Weightage:             result.Weightage,
		SearchWeight:          result.SearchWeight,
		PurchaseWeight:        result.PurchaseWeight,
		RecommendedCategories: result.RecommendedCategories,
		ExploreCategories:     result.ExploreCategories,
	}
}

func metadataPayload(result domain.RecommendationResult) MetadataPayload {
	return MetadataPayload{
		SearchCount:   result.SearchCount,
		PurchaseCount: result.PurchaseCount,
	}
}

func cacheHeader(tier domain.CacheTier) string {
	switch tier {
	case domain.TierLocal:
		return "HIT-LOCAL"
	case domain.TierDistributed:
		return "HIT-DISTRIBUTED"
	default:
		return "MISS"
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, domain.ErrResourceExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrResourceExhausted):
		return "resource_exhausted"
	default:
		return "internal"
	}
}

func parseUserID(raw string) (uint64, error) {
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if userID == 0 {
		return 0, errors.New("user id must be positive")
	}
	return userID, nil
}

func parseUserIDs(raw string) ([]uint64, error) {
	parts := strings.Split(raw, ",")
	userIDs := make([]uint64, 0, len(parts))
	for _, part := range parts {
		userID, err := parseUserID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, nil
}
