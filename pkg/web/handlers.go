package web

import (
	"encoding/json"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/emeraldhq/pulse/pkg/integrations/whatsapp"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/registry"
	"github.com/emeraldhq/pulse/pkg/services"
)

const defaultRunsLimit = 50

// EventFirer is the fire-and-forget entry point handlers use to report
// business events. Firing never blocks the request and never fails it.
type EventFirer interface {
	FireEvent(organizationID string, trigger models.Trigger, data map[string]any)
}

// APIHandlers implements the HTTP endpoints over the automation service, the
// action registry and the event bus.
type APIHandlers struct {
	automationService *services.AutomationService
	firer             EventFirer
	registry          *registry.Registry
	validator         *validator.Validate

	// whatsAppVerifyToken is the token Meta echoes during webhook
	// verification.
	whatsAppVerifyToken string
}

func NewAPIHandlers(
	automationService *services.AutomationService,
	firer EventFirer,
	reg *registry.Registry,
	whatsAppVerifyToken string,
) *APIHandlers {
	return &APIHandlers{
		automationService:   automationService,
		firer:               firer,
		registry:            reg,
		validator:           validator.New(validator.WithRequiredStructEnabled()),
		whatsAppVerifyToken: whatsAppVerifyToken,
	}
}

func (h *APIHandlers) ListAutomations(c fiber.Ctx) error {
	organizationID := c.Params("orgID")

	automations, err := h.automationService.List(c.Context(), organizationID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"automations": automations})
}

func (h *APIHandlers) GetAutomation(c fiber.Ctx) error {
	automation, err := h.automationService.Get(c.Context(), c.Params("orgID"), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(automation)
}

func (h *APIHandlers) CreateAutomation(c fiber.Ctx) error {
	req := new(CreateAutomationRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	automation := &models.Automation{
		OrganizationID: c.Params("orgID"),
		Name:           req.Name,
		Trigger:        models.Trigger(req.Trigger),
		Actions:        toActionItems(req.Actions),
	}

	created, err := h.automationService.Create(c.Context(), h.plan(c), automation)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateAutomation(c fiber.Ctx) error {
	req := new(UpdateAutomationRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	automation := &models.Automation{
		Name:    req.Name,
		Trigger: models.Trigger(req.Trigger),
		Actions: toActionItems(req.Actions),
	}

	updated, err := h.automationService.Update(c.Context(), c.Params("orgID"), c.Params("id"), automation)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) SetAutomationActive(c fiber.Ctx) error {
	req := new(SetActiveRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.automationService.SetActive(c.Context(), c.Params("orgID"), c.Params("id"), *req.IsActive)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteAutomation(c fiber.Ctx) error {
	if err := h.automationService.Delete(c.Context(), c.Params("orgID"), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ListRuns(c fiber.Ctx) error {
	limit := defaultRunsLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return badRequest(c, "limit must be a positive integer")
		}

		limit = parsed
	}

	runs, err := h.automationService.ListRuns(c.Context(), c.Params("orgID"), limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"runs": runs})
}

// FireEvent accepts a business event and returns 202 immediately. Dispatch
// runs in the background, so a failing automation never fails this request.
func (h *APIHandlers) FireEvent(c fiber.Ctx) error {
	req := new(FireEventRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	trigger := models.Trigger(req.Trigger)
	if !trigger.IsValid() {
		return badRequest(c, "unknown trigger: "+req.Trigger)
	}

	h.firer.FireEvent(c.Params("orgID"), trigger, req.Data)

	return c.SendStatus(fiber.StatusAccepted)
}

// ListActionKinds exposes the registered action catalog so clients can build
// automation editors against it.
func (h *APIHandlers) ListActionKinds(c fiber.Ctx) error {
	kinds := h.registry.Kinds()

	catalog := make([]ActionKindResponse, 0, len(kinds))

	for _, kind := range kinds {
		factory, ok := h.registry.Factory(kind)
		if !ok {
			continue
		}

		catalog = append(catalog, ActionKindResponse{
			Kind:        string(kind),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	return c.JSON(fiber.Map{"actions": catalog})
}

// VerifyWhatsAppWebhook answers Meta's subscription handshake.
func (h *APIHandlers) VerifyWhatsAppWebhook(c fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.whatsAppVerifyToken {
		return c.SendStatus(fiber.StatusForbidden)
	}

	return c.SendString(challenge)
}

// ReceiveWhatsAppWebhook fires a NEW_MESSAGE event for every inbound text
// message in the payload. Meta retries on non-2xx, so a malformed payload is
// acknowledged and dropped rather than rejected.
func (h *APIHandlers) ReceiveWhatsAppWebhook(c fiber.Ctx) error {
	payload := new(whatsapp.WebhookPayload)
	if err := json.Unmarshal(c.Body(), payload); err != nil {
		return c.SendStatus(fiber.StatusOK)
	}

	organizationID := c.Params("orgID")

	for _, msg := range payload.InboundMessages() {
		h.firer.FireEvent(organizationID, models.TriggerNewMessage, map[string]any{
			"message_id": msg.MessageID,
			"phone":      msg.From,
			"name":       msg.ProfileName,
			"body":       msg.Body,
			"timestamp":  msg.Timestamp,
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *APIHandlers) plan(c fiber.Ctx) models.SubscriptionPlan {
	plan := c.Get(PlanHeader)
	if plan == "" {
		return models.PlanStarter
	}

	return models.SubscriptionPlan(plan)
}
