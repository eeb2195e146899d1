package service

import (
	"errors"
	"fmt"
	"strings"

	"inventory-plus/pkg/validator"
)

var (
	ErrInvalidMovementType = errors.New("invalid movement type")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product is inactive")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrDuplicateSKU        = errors.New("SKU already exists")
	ErrMovementNotFound    = errors.New("stock movement not found")

	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrDuplicateReference     = errors.New("reference number already exists")
	ErrTransactionClosed      = errors.New("transaction no longer accepts movements")
	ErrTransactionCancelled   = errors.New("transaction is cancelled")
	ErrReversalUnderflow      = errors.New("reversal would drive stock below zero")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrTemplateNotFound     = errors.New("notification template not found")
	ErrTemplateInactive     = errors.New("notification template is inactive")
	ErrTemplateRender       = errors.New("notification template failed to render")
	ErrInvalidAlertConfig   = errors.New("invalid alert configuration")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrEmailTaken         = errors.New("email already registered")
	ErrForbidden          = errors.New("forbidden")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")

	ErrValidation = errors.New("validation failed")
)

// ValidationError carries the field failures reported by pkg/validator.
type ValidationError struct {
	Fields []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("field '%s' failed on tag '%s'", f.FailedField, f.Tag))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// validate runs struct validation and wraps failures in a ValidationError.
func validate(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

var reasonCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidMovementType, "INVALID_MOVEMENT_TYPE"},
	{ErrInvalidQuantity, "INVALID_QUANTITY"},
	{ErrProductNotFound, "PRODUCT_NOT_FOUND"},
	{ErrProductInactive, "PRODUCT_INACTIVE"},
	{ErrInsufficientStock, "INSUFFICIENT_STOCK"},
	{ErrDuplicateSKU, "DUPLICATE_SKU"},
	{ErrMovementNotFound, "MOVEMENT_NOT_FOUND"},
	{ErrTransactionNotFound, "TRANSACTION_NOT_FOUND"},
	{ErrInvalidTransactionType, "INVALID_TRANSACTION_TYPE"},
	{ErrDuplicateReference, "DUPLICATE_REFERENCE"},
	{ErrTransactionClosed, "TRANSACTION_CLOSED"},
	{ErrTransactionCancelled, "TRANSACTION_CANCELLED"},
	{ErrReversalUnderflow, "REVERSAL_UNDERFLOW"},
	{ErrNotificationNotFound, "NOTIFICATION_NOT_FOUND"},
	{ErrTemplateNotFound, "TEMPLATE_NOT_FOUND"},
	{ErrTemplateInactive, "TEMPLATE_INACTIVE"},
	{ErrTemplateRender, "TEMPLATE_RENDER_FAILED"},
	{ErrInvalidAlertConfig, "INVALID_ALERT_CONFIG"},
	{ErrInvalidCredentials, "INVALID_CREDENTIALS"},
	{ErrUserNotFound, "USER_NOT_FOUND"},
	{ErrUserInactive, "USER_INACTIVE"},
	{ErrWrongPassword, "WRONG_PASSWORD"},
	{ErrEmailTaken, "EMAIL_TAKEN"},
	{ErrForbidden, "FORBIDDEN"},
	{ErrSessionReplaced, "SESSION_REPLACED"},
	{ErrValidation, "VALIDATION_FAILED"},
}

// ReasonCode maps a service error to a stable machine-readable code.
// Unknown errors map to INTERNAL.
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "INTERNAL"
}
