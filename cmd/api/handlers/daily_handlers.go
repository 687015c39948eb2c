package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vocab-updated/aggregator"
	"vocab-updated/cmd/api/dto"
	"vocab-updated/config"
	"vocab-updated/models"
)

// AggregateDailyContentHandler godoc
// @Summary      Build or fetch the daily content payload
// @Description  Returns the cached payload for the requested day, building it from the configured sources on the first request of the day.
// @Tags         daily
// @Accept       json
// @Produce      json
// @Param        request  body      dto.AggregateDailyContentRequest  false  "Optional target date (YYYY-MM-DD, defaults to today UTC)"
// @Success      200      {object}  models.DailyNews
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /aggregate-daily-content [post]
func AggregateDailyContentHandler(agg *aggregator.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AggregateDailyContentRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request_body"})
				return
			}
		}

		date, ok := resolveDate(req.Date)
		if !ok {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_date"})
			return
		}

		payload, err := agg.GetOrBuild(c.Request.Context(), date)
		if err != nil {
			config.Logger.Errorf("aggregate-daily-content failed (date=%s): %v", date, err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "aggregation_failed"})
			return
		}

		c.JSON(http.StatusOK, payload)
	}
}

// GetDailyContentHandler godoc
// @Summary      Fetch a cached daily payload
// @Description  Returns the stored payload for a day without triggering a rebuild.
// @Tags         daily
// @Produce      json
// @Param        date  query     string  false  "Target date (YYYY-MM-DD, defaults to today UTC)"
// @Success      200   {object}  models.DailyNews
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /daily-content [get]
func GetDailyContentHandler(store aggregator.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := resolveDate(c.Query("date"))
		if !ok {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_date"})
			return
		}

		payload, found, err := store.GetByDate(c.Request.Context(), date)
		if err != nil {
			config.Logger.Errorf("daily-content lookup failed (date=%s): %v", date, err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "lookup_failed"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found"})
			return
		}

		c.JSON(http.StatusOK, payload)
	}
}

// resolveDate validates an optional YYYY-MM-DD string, defaulting to today
// in UTC when empty.
func resolveDate(raw string) (string, bool) {
	if raw == "" {
		return models.DateKey(time.Now().UTC()), true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", false
	}
	return models.DateKey(parsed), true
}
