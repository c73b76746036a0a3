package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"quoting-service/internal/models"
	"quoting-service/internal/services"
	"quoting-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type UnderwritingHandler struct {
	underwritingService *services.UnderwritingService
}

func NewUnderwritingHandler(underwritingService *services.UnderwritingService) *UnderwritingHandler {
	return &UnderwritingHandler{
		underwritingService: underwritingService,
	}
}

func (h *UnderwritingHandler) Register(app *fiber.App) {
	protectedGr := app.Group("quoting/protected/api/v1")

	caseGroup := protectedGr.Group("/underwriting-cases")

	// Underwriter routes
	reviewGroup := caseGroup.Group("/review")
	reviewGroup.Get("/queue", h.GetReviewQueue)              // GET /underwriting-cases/review/queue
	reviewGroup.Get("/:case_id", h.GetCase)                  // GET /underwriting-cases/review/:case_id
	reviewGroup.Post("/:case_id/decision", h.RecordDecision) // POST /underwriting-cases/review/:case_id/decision

	// Customer routes
	ownGroup := caseGroup.Group("/own")
	ownGroup.Post("/:case_id/response", h.SubmitResponse) // POST /underwriting-cases/own/:case_id/response
	ownGroup.Get("/by-quote/:quote_id", h.GetCaseByQuote) // GET /underwriting-cases/own/by-quote/:quote_id
}

// mapCaseError translates case workflow violations into API error envelopes.
func mapCaseError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrCaseNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", "Underwriting case not found"))
	case errors.Is(err, models.ErrQuoteNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", "Quote not found"))
	case errors.Is(err, models.ErrNotQuoteOwner):
		return c.Status(http.StatusForbidden).JSON(
			utils.CreateErrorResponse("FORBIDDEN", "You do not have access to this case"))
	case errors.Is(err, models.ErrAlreadyDecided):
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("ALREADY_DECIDED", "Case has already been decided"))
	case errors.Is(err, models.ErrNoPendingRequest):
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("NO_PENDING_REQUEST", "Case has no pending information request"))
	case errors.Is(err, models.ErrInvalidTransition):
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("INVALID_STATE", err.Error()))
	default:
		return nil
	}
}

func (h *UnderwritingHandler) GetReviewQueue(c fiber.Ctx) error {
	userID := actingUserID(c)
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	cases, err := h.underwritingService.GetReviewQueue(c.Context())
	if err != nil {
		slog.Error("Failed to get review queue", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve review queue"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"cases": cases,
		"count": len(cases),
	}))
}

func (h *UnderwritingHandler) GetCase(c fiber.Ctx) error {
	userID := actingUserID(c)
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid case ID format"))
	}

	uwCase, notes, err := h.underwritingService.GetCase(c.Context(), caseID)
	if err != nil {
		if resp := mapCaseError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to get case", "case_id", caseID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve case"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"underwriting_case": uwCase,
		"notes":             notes,
	}))
}

func (h *UnderwritingHandler) GetCaseByQuote(c fiber.Ctx) error {
	userID := actingUserID(c)
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	quoteID, err := uuid.Parse(c.Params("quote_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid quote ID format"))
	}

	uwCase, err := h.underwritingService.GetCaseByQuote(c.Context(), quoteID)
	if err != nil {
		if resp := mapCaseError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to get case by quote", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve case"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(uwCase))
}

// RecordDecision applies an underwriter decision. approve and reject are
// final; needs_info parks the case until the customer responds.
func (h *UnderwritingHandler) RecordDecision(c fiber.Ctx) error {
	underwriterID := actingUserID(c)
	if underwriterID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid case ID format"))
	}

	var req models.RecordDecisionRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	req = utils.TrimAllStringFields(req).(models.RecordDecisionRequest)
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	uwCase, err := h.underwritingService.RecordDecision(c.Context(), caseID, underwriterID, req)
	if err != nil {
		if resp := mapCaseError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to record decision", "case_id", caseID, "underwriter_id", underwriterID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("DECISION_FAILED", "Failed to record decision"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(uwCase))
}

func (h *UnderwritingHandler) SubmitResponse(c fiber.Ctx) error {
	customerID := actingUserID(c)
	if customerID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid case ID format"))
	}

	var req models.SubmitCustomerResponseRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	req = utils.TrimAllStringFields(req).(models.SubmitCustomerResponseRequest)
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	uwCase, err := h.underwritingService.SubmitCustomerResponse(c.Context(), caseID, customerID, req)
	if err != nil {
		if resp := mapCaseError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to submit customer response", "case_id", caseID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RESPONSE_FAILED", "Failed to submit response"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(uwCase))
}
