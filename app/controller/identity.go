package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	httpdto "github.com/vibast-solutions/ms-go-idmatch/app/dto/http"
	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/service"
	"github.com/vibast-solutions/ms-go-idmatch/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type IdentityController struct {
	lookup service.IdentityLookup
}

func NewIdentityController(lookup service.IdentityLookup) *IdentityController {
	return &IdentityController{lookup: lookup}
}

func (c *IdentityController) Lookup(ctx echo.Context) error {
	req, err := types.NewLookupRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind lookup request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	var found []*entity.Identity
	if strings.TrimSpace(req.GetEmail()) != "" {
		found, err = c.lookup.LookupByEmail(req.GetEmail())
	} else {
		found, err = c.lookup.LookupByName(req.GetName())
	}
	if err != nil {
		return c.lookupError(ctx, err)
	}

	res := httpdto.LookupResponse{Identities: make([]httpdto.IdentityResponse, 0, len(found))}
	for _, identity := range found {
		res.Identities = append(res.Identities, newIdentityResponse(identity))
	}
	return ctx.JSON(http.StatusOK, res)
}

func (c *IdentityController) Get(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 0 {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid identity id"})
	}

	identity, err := c.lookup.Get(id)
	if err != nil {
		return c.lookupError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newIdentityResponse(identity))
}

func (c *IdentityController) Report(ctx echo.Context) error {
	report, err := c.lookup.Report()
	if err != nil {
		return c.lookupError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, httpdto.ReportResponse{
		Precision:         report.Precision,
		Recall:            report.Recall,
		F1:                report.F1,
		WeightedPrecision: report.WeightedPrecision,
		WeightedRecall:    report.WeightedRecall,
		WeightedF1:        report.WeightedF1,
		Samples:           report.Samples,
	})
}

func (c *IdentityController) Stats(ctx echo.Context) error {
	stats, err := c.lookup.Stats()
	if err != nil {
		return c.lookupError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, httpdto.StatsResponse{
		RunID:      stats.RunID,
		Identities: stats.Identities,
		Names:      stats.Names,
		Emails:     stats.Emails,
	})
}

func (c *IdentityController) lookupError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrIdentityNotFound):
		return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "identity not found"})
	case errors.Is(err, service.ErrReportUnavailable):
		return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "evaluation report unavailable"})
	case errors.Is(err, service.ErrIndexNotReady):
		return ctx.JSON(http.StatusServiceUnavailable, httpdto.ErrorResponse{Error: "identities not loaded"})
	}
	logrus.WithError(err).Error("Identity lookup failed")
	return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
}

func newIdentityResponse(identity *entity.Identity) httpdto.IdentityResponse {
	return httpdto.IdentityResponse{
		ID:     identity.ID,
		Names:  identity.Names.Sorted(),
		Emails: identity.Emails.Sorted(),
	}
}
