package billing

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrMethodNotAllowed      = errors.New("method not allowed")
	ErrSignatureVerification = errors.New("signature verification failed")
	ErrInvalidSubscription   = errors.New("invalid subscription payload")
	ErrCustomerLookup        = errors.New("customer lookup failed")
	ErrStorage               = errors.New("subscriber store write failed")
)

// Response bodies sent back to Stripe.
const (
	BodySuccess        = "Success"
	BodyUnhandledEvent = "Unhandled event type"
	BodyStorageError   = "Supabase insert error"
	BodyCustomerError  = "Customer lookup error"
	webhookErrorPrefix = "Webhook Error: "
)

// StatusFor maps an error returned by the webhook flow to the HTTP status and
// body sent to the caller. 5xx bodies never carry the underlying cause.
func StatusFor(err error) (int, string) {
	switch {
	case err == nil:
		return fiber.StatusOK, BodySuccess
	case errors.Is(err, ErrMethodNotAllowed):
		return fiber.StatusMethodNotAllowed, ""
	case errors.Is(err, ErrSignatureVerification), errors.Is(err, ErrInvalidSubscription):
		return fiber.StatusBadRequest, webhookErrorPrefix + causeOf(err)
	case errors.Is(err, ErrCustomerLookup):
		return fiber.StatusInternalServerError, BodyCustomerError
	case errors.Is(err, ErrStorage):
		return fiber.StatusInternalServerError, BodyStorageError
	default:
		return fiber.StatusInternalServerError, fiber.ErrInternalServerError.Message
	}
}

// causeOf returns the message of the error wrapped under a sentinel, falling
// back to the full message.
func causeOf(err error) string {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := u.Unwrap(); len(errs) > 1 {
			return errs[len(errs)-1].Error()
		}
	}
	return err.Error()
}
