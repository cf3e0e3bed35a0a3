package api

import (
	"errors"
	"net/http"

	models "ShortBasket/internal/domain/models"
	domrepo "ShortBasket/internal/domain/repository"
	"ShortBasket/internal/service/tempcache"
	"ShortBasket/internal/services/marketdata"
	"ShortBasket/internal/usecase"
	xhttp "ShortBasket/pkg/http"
	xlogger "ShortBasket/pkg/logger"
	"ShortBasket/pkg/util"

	"github.com/labstack/echo/v4"
)

// BasketEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type BasketEchoHandler struct {
	logger   *xlogger.Logger
	selector *usecase.BasketSelector
	temps    *tempcache.SeriesCache
}

func NewBasketEchoHandler(logger *xlogger.Logger, selector *usecase.BasketSelector, temps *tempcache.SeriesCache) *BasketEchoHandler {
	return &BasketEchoHandler{logger: logger, selector: selector, temps: temps}
}

func (h *BasketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/selection", h.Selection)
	g.GET("/temperature", h.Temperature)
	g.GET("/cache/status", h.CacheStatus)
	g.POST("/cache/clear", h.CacheClear)
	g.POST("/cache/warm", h.CacheWarm)
}

func (h *BasketEchoHandler) Selection(c echo.Context) error {
	req := &models.SelectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !req.WeightsValid() {
		return xhttp.AppErrorResponse(c,
			xhttp.BadRequestError("weights must all be set together and sum to 1"))
	}

	res, err := h.selector.Select(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("selection usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *BasketEchoHandler) Temperature(c echo.Context) error {
	req := &models.TemperatureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	start, ok := util.ParseTime(req.Start)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid start date %q", req.Start))
	}
	end, ok := util.ParseTime(req.End)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid end date %q", req.End))
	}

	res, err := h.temps.Get(c.Request().Context(), req.Symbol, tf, start, end)
	if err != nil {
		h.logger.Error("temperature cache error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *BasketEchoHandler) CacheStatus(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.temps.Status())
}

func (h *BasketEchoHandler) CacheClear(c echo.Context) error {
	req := &models.CacheClearRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.All {
		cleared := h.temps.ClearAll()
		return xhttp.SuccessResponse(c, map[string]interface{}{"cleared": cleared})
	}
	if req.Symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol required unless all=true"))
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	if !h.temps.Clear(req.Symbol, string(tf)) {
		return xhttp.AppErrorResponse(c,
			xhttp.NotFoundError("no cached series for "+tempcache.CacheKey(req.Symbol, string(tf))))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"cleared": true})
}

func (h *BasketEchoHandler) CacheWarm(c echo.Context) error {
	req := &models.CacheWarmRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	start, ok := util.ParseTime(req.Start)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid start date %q", req.Start))
	}
	end, ok := util.ParseTime(req.End)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid end date %q", req.End))
	}

	if err := h.temps.Warm(c.Request().Context(), req.Symbol, tf, start, end); err != nil {
		h.logger.Error("cache warm error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"warmed": tempcache.CacheKey(req.Symbol, string(tf))})
}

// mapDomainError translates domain sentinels into HTTP app errors. Unknown
// errors become generic 500s.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrNoReference):
		return xhttp.NewAppError("ERR_NO_REFERENCE", "referencePriceChange",
			"no benchmark reference available; pass referencePriceChange explicitly",
			http.StatusBadRequest).WithError(err)
	case errors.Is(err, tempcache.ErrInvalidRange):
		return xhttp.BadRequestError("start must not be after end").WithError(err)
	case errors.Is(err, marketdata.ErrUpstreamUnavailable):
		return xhttp.NewAppError("ERR_UPSTREAM_UNAVAILABLE", "",
			"upstream market data service unavailable", http.StatusBadGateway).WithError(err)
	case errors.Is(err, marketdata.ErrUpstreamDataError):
		return xhttp.NewAppError("ERR_UPSTREAM_DATA", "",
			"upstream returned malformed or failed data", http.StatusBadGateway).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
