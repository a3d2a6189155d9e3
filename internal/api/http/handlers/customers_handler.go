package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/customer-service/internal/api/dto"
	"github.com/spec-kit/customer-service/internal/service"
	apperrors "github.com/spec-kit/customer-service/pkg/util/errorutil"
)

// CustomersHandler exposes the /customers endpoints.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// List GET /customers, optionally filtered by ?email= or ?name=.
// A non-empty email wins over name.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if email := c.Query("email"); email != "" {
		view, err := h.service.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		return c.JSON(dto.NewCustomerView(*view))
	}

	if name := c.Query("name"); name != "" {
		views, err := h.service.ListByName(ctx, name)
		if err != nil {
			return err
		}
		return c.JSON(dto.NewCustomerViews(views))
	}

	views, err := h.service.ListAll(ctx)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerViews(views))
}

// Get GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return err
	}
	view, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerView(*view))
}

// Create POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	req, err := parseCustomerRequest(c)
	if err != nil {
		return err
	}
	customer, err := h.service.Create(c.UserContext(), req.ToDraft())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCustomerResponse(customer))
}

// Update PUT /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return err
	}
	req, err := parseCustomerRequest(c)
	if err != nil {
		return err
	}
	customer, err := h.service.Update(c.UserContext(), id, req.ToDraft())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerResponse(customer))
}

// Delete DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Tier GET /customers/:id/tier, answered as plain text.
func (h *CustomersHandler) Tier(c *fiber.Ctx) error {
	id, err := customerID(c)
	if err != nil {
		return err
	}
	tier, err := h.service.Tier(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.SendString(tier.String())
}

func customerID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid customer id", map[string]any{"id": raw})
	}
	return id, nil
}

func parseCustomerRequest(c *fiber.Ctx) (*dto.CustomerRequest, error) {
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return &req, nil
}
