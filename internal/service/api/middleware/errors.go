package middleware

import (
	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/httputil"
)

var (
	ErrAppKeyRequired = httputil.NewBadRequestError(constants.ErrMsgAuthAppKeyRequired)

	ErrInvalidAppKey = httputil.NewUnauthorizedError(constants.ErrMsgAuthInvalidAppKey)

	ErrRateLimitExceeded = httputil.NewTooManyRequestsError(constants.ErrMsgTooManyRequests)

	ErrUnsupportedMediaType = httputil.NewUnsupportedMediaTypeError(constants.ErrMsgUnsupportedMediaType)
)
