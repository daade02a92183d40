package api

import (
	"errors"

	"Manifold/internal/domain"
	xhttp "Manifold/pkg/http"
)

// appError maps pipeline and feed errors onto HTTP errors.
func appError(err error) *xhttp.AppError {
	var ae *xhttp.AppError
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, domain.ErrMalformedInput):
		return xhttp.BadRequestError("malformed input").WithError(err)
	case errors.Is(err, domain.ErrInsufficientData):
		return xhttp.UnprocessableError("not enough data for this horizon").WithError(err)
	case errors.Is(err, domain.ErrRateLimited):
		return xhttp.TooManyRequestsError("data feed rate limited").WithError(err)
	case errors.Is(err, domain.ErrNoData):
		return xhttp.NotFoundError("no data for symbol").WithError(err)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return xhttp.UnavailableError("data feed unavailable").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
