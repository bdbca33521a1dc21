package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/switcherd/internal/control"
	apperrors "github.com/jmylchreest/switcherd/internal/errors"
)

// toHTTPError maps session errors onto HTTP status codes.
func toHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsInvalidInput(err):
		return huma.Error400BadRequest(err.Error())
	case apperrors.IsInvalidState(err), apperrors.IsNotConnected(err):
		return huma.Error409Conflict(err.Error())
	case apperrors.IsCapabilityUnsupported(err):
		return huma.Error422UnprocessableEntity(err.Error())
	case apperrors.IsConnectionFailed(err), apperrors.IsLinkLost(err):
		return huma.Error502BadGateway(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout(err.Error())
	case errors.Is(err, control.ErrStopped):
		return huma.Error503ServiceUnavailable(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
