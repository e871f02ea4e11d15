package checkout

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrClientNotValidated = errors.New("client has not been validated")
	ErrOrderNotSubmitted  = errors.New("order has not been submitted")
	ErrInvalidTransition  = errors.New("invalid checkout transition")
	ErrRequestInFlight    = errors.New("request already in progress")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrClientLookupFailed = errors.New("client lookup failed")
	ErrSubmissionFailed   = errors.New("order submission failed")
)

// User-facing messages kept on the wizard after a recoverable error.
const (
	MsgEnterClientNumber = "Por favor ingresa tu número de cliente"
	MsgClientNotFound    = "Número de cliente no encontrado. Verifica que sea correcto o contacta a nuestro equipo de ventas."
	MsgLookupFailed      = "Error al validar el número de cliente. Por favor intenta de nuevo."
	MsgSubmissionFailed  = "Error al enviar el pedido. Por favor intenta de nuevo."
)

var (
	ErrAlreadySubmitted = errors.New("order already submitted for this checkout")
	ErrCartLocked       = errors.New("cart cannot change while confirming the order")
)
