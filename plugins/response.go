package plugins

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/linht/adrv-manager/adrv903x"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SendSuccess sends a successful response
func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error response
func SendError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// SendErrorMessage sends an error response with a custom message
func SendErrorMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// SendDeviceError sends a device error with the status matching its kind
func SendDeviceError(c *fiber.Ctx, err error) error {
	status, kind := errorStatus(err)
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   err.Error(),
		Kind:    kind,
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, adrv903x.ErrInvalidParam):
		return fiber.StatusBadRequest, "invalid_param"
	case errors.Is(err, adrv903x.ErrInvalidChannel):
		return fiber.StatusBadRequest, "invalid_channel"
	case errors.Is(err, adrv903x.ErrNullPointer):
		return fiber.StatusBadRequest, "null_pointer"
	case errors.Is(err, adrv903x.ErrConfigInconsistent):
		return fiber.StatusBadRequest, "config_inconsistent"
	case errors.Is(err, adrv903x.ErrNotImplemented):
		return fiber.StatusNotImplemented, "not_implemented"
	case errors.Is(err, adrv903x.ErrRegisterIO):
		return fiber.StatusBadGateway, "register_io"
	}
	return fiber.StatusInternalServerError, ""
}
