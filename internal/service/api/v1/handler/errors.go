package handler

import (
	"fmt"
	"strings"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/httputil"
)

func NewErrInvalidBody() error {
	return httputil.NewBadRequestError(constants.ErrMsgBadRequestInvalidBody)
}

func NewErrValidationFailed(msg string) error {
	return httputil.NewBadRequestError(msg)
}

func NewErrRuleNotFound() error {
	return httputil.NewNotFoundError(constants.ErrMsgRuleNotFound)
}

func NewErrRuleAlreadyExists() error {
	return httputil.NewConflictError(constants.ErrMsgRuleAlreadyExists)
}

func NewErrProductsFileNotFound() error {
	return httputil.NewBadRequestError(constants.ErrMsgProductsFileNotFound)
}

func NewErrProductsFileInUse(rules []string) error {
	return httputil.NewConflictError(fmt.Sprintf("%s (%s)", constants.ErrMsgProductsFileInUse, strings.Join(rules, ", ")))
}
