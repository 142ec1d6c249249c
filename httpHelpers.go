package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/daterange"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/listview"
	"bitbucket.org/rodmar/rodmar_backend/middlewares"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// clock is swapped in tests that depend on relative date filters.
var clock = time.Now

// respondError maps domain errors onto HTTP statuses. Anything unexpected is
// logged with the request's correlation id and returned as 500.
func respondError(c *gin.Context, funcName string, err error) {
	var ve *utils.ValidationError
	var fields validator.ValidationErrors
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &fields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrUserDisabled):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorNotAuthenticated):
		middlewares.Unauthorized(c)
	case errors.Is(err, utils.ErrorLockNotObtained):
		c.JSON(http.StatusConflict, gin.H{"error": "another change on the same records is in progress, retry"})
	default:
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "server", funcName, c.FullPath(), cid, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func intParam(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, utils.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, utils.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

func boolQuery(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

func pageQuery(c *gin.Context) (int, int, error) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := intQuery(c, "limit", listview.DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	page, limit = listview.NormalizePage(page, limit)
	return page, limit, nil
}

// dateRangeQuery resolves filterType/fechaInicio/fechaFin. A filter missing
// its dates yields nil, which means no date filtering.
func dateRangeQuery(c *gin.Context) (*daterange.Range, error) {
	filter, err := daterange.ParseFilter(c.Query("filterType"))
	if err != nil {
		return nil, utils.NewValidationError("filterType", "%v", err)
	}
	r := daterange.Resolve(filter, c.Query("fechaInicio"), c.Query("fechaFin"), clock())
	if r != nil && r.IsUnbounded() {
		return nil, nil
	}
	return r, nil
}

func amountQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := utils.ParseAmount(raw)
	if err != nil {
		return nil, utils.NewValidationError(name, "invalid amount %q", raw)
	}
	return &v, nil
}

// listQuery reads the search, date, amount and sort parameters of a list.
func listQuery(c *gin.Context) (listview.Query, error) {
	r, err := dateRangeQuery(c)
	if err != nil {
		return listview.Query{}, err
	}
	minValor, err := amountQuery(c, "minValor")
	if err != nil {
		return listview.Query{}, err
	}
	maxValor, err := amountQuery(c, "maxValor")
	if err != nil {
		return listview.Query{}, err
	}
	sort, err := listview.ParseSort(c.Query("sortBy"), c.Query("sortDir"))
	if err != nil {
		return listview.Query{}, utils.NewValidationError("sortBy", "%v", err)
	}
	return listview.Query{
		Search:   c.Query("search"),
		Range:    r,
		MinValor: minValor,
		MaxValor: maxValor,
		Sort:     sort,
	}, nil
}

func partyParams(c *gin.Context) (ledger.Party, error) {
	return models.ParsePartyPath(c.Param("tipo"), c.Param("id"))
}

// sessionTemporales returns the temporal entries of the caller's view
// session that touch p.
func sessionTemporales(c *gin.Context, store *ledger.SessionStore, p ledger.Party) []ledger.Entry {
	sid, ok := utils.GetSessionIdFromContext(c.Request.Context())
	if !ok || store == nil {
		return nil
	}
	session, ok := store.Get(sid)
	if !ok {
		return nil
	}
	var out []ledger.Entry
	for _, e := range session.Entries() {
		if p.Includes(e.DeQuien) || p.Includes(e.ParaQuien) {
			out = append(out, e)
		}
	}
	return out
}
