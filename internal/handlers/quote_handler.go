package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"quoting-service/internal/models"
	"quoting-service/internal/services"
	"quoting-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type QuoteHandler struct {
	quoteService  *services.QuoteService
	policyService *services.PolicyService
}

func NewQuoteHandler(quoteService *services.QuoteService, policyService *services.PolicyService) *QuoteHandler {
	return &QuoteHandler{
		quoteService:  quoteService,
		policyService: policyService,
	}
}

func (h *QuoteHandler) Register(app *fiber.App) {
	protectedGr := app.Group("quoting/protected/api/v1")

	quoteGroup := protectedGr.Group("/quotes")

	// Customer routes - own quotes only
	ownGroup := quoteGroup.Group("/own")
	ownGroup.Post("/", h.CreateQuote)                             // POST /quotes/own
	ownGroup.Get("/", h.GetOwnQuotes)                             // GET /quotes/own
	ownGroup.Get("/:quote_id", h.GetOwnQuote)                     // GET /quotes/own/:quote_id
	ownGroup.Put("/:quote_id/company-step", h.SaveCompanyStep)    // PUT /quotes/own/:quote_id/company-step
	ownGroup.Put("/:quote_id/risk-profile-step", h.SaveRiskStep)  // PUT /quotes/own/:quote_id/risk-profile-step
	ownGroup.Put("/:quote_id/security-step", h.SubmitSecurity)    // PUT /quotes/own/:quote_id/security-step
	ownGroup.Get("/:quote_id/assessment", h.GetAssessment)        // GET /quotes/own/:quote_id/assessment
	ownGroup.Post("/:quote_id/bind", h.BindQuote)                 // POST /quotes/own/:quote_id/bind
	ownGroup.Get("/:quote_id/policy", h.GetPolicyForQuote)        // GET /quotes/own/:quote_id/policy
	ownGroup.Post("/:quote_id/policy/cancel", h.CancelPolicy)     // POST /quotes/own/:quote_id/policy/cancel

	// Broker/underwriter routes - full read plus case creation and binding
	allGroup := quoteGroup.Group("/read-all")
	allGroup.Get("/", h.GetAllQuotes)                                   // GET /quotes/read-all
	allGroup.Get("/:quote_id", h.GetQuote)                              // GET /quotes/read-all/:quote_id
	allGroup.Post("/:quote_id/underwriting-case", h.CreateCaseIfAbsent) // POST /quotes/read-all/:quote_id/underwriting-case
}

func actingUserID(c fiber.Ctx) string {
	return c.Get("X-User-ID")
}

// mapQuoteError translates business rule violations into API error envelopes.
func mapQuoteError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrQuoteNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", "Quote not found"))
	case errors.Is(err, models.ErrCaseNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", "Underwriting case not found"))
	case errors.Is(err, models.ErrPolicyNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", "Policy not found"))
	case errors.Is(err, models.ErrNotQuoteOwner):
		return c.Status(http.StatusForbidden).JSON(
			utils.CreateErrorResponse("FORBIDDEN", "You do not have access to this quote"))
	case errors.Is(err, models.ErrAlreadyBound):
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("ALREADY_BOUND", "Quote is already policied"))
	case errors.Is(err, models.ErrNotEligibleToBind):
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("NOT_ELIGIBLE", "Quote is not eligible to bind"))
	case errors.Is(err, models.ErrInvalidTransition):
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("INVALID_STATE", err.Error()))
	case errors.Is(err, models.ErrInvalidAnswer):
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_ANSWER", err.Error()))
	default:
		return nil
	}
}

func (h *QuoteHandler) CreateQuote(c fiber.Ctx) error {
	userID := actingUserID(c)
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	var req models.CreateQuoteRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	quote, err := h.quoteService.CreateQuote(c.Context(), userID, req)
	if err != nil {
		slog.Error("Failed to create quote", "user_id", userID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("CREATE_FAILED", "Failed to create quote"))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(quote))
}

func (h *QuoteHandler) GetOwnQuotes(c fiber.Ctx) error {
	userID := actingUserID(c)
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	quotes, err := h.quoteService.GetQuotesByCustomer(c.Context(), userID)
	if err != nil {
		slog.Error("Failed to get quotes", "user_id", userID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve quotes"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	}))
}

func (h *QuoteHandler) GetOwnQuote(c fiber.Ctx) error {
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

	quote, err := h.quoteService.GetQuoteOwned(c.Context(), quoteID, userID)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to get quote", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve quote"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(quote))
}

func (h *QuoteHandler) GetQuote(c fiber.Ctx) error {
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

	quote, err := h.quoteService.GetQuote(c.Context(), quoteID)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to get quote", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve quote"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(quote))
}

func (h *QuoteHandler) GetAllQuotes(c fiber.Ctx) error {
	userID := actingUserID(c)
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	limit, err := utils.GetQueryParamAsInt(c, "limit", 50)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_PARAM", err.Error()))
	}

	var quotes []models.Quote
	if statusParam := c.Query("status"); statusParam != "" {
		status := models.QuoteStatus(statusParam)
		if !models.IsValidQuoteStatus(status) {
			return c.Status(http.StatusBadRequest).JSON(
				utils.CreateErrorResponse("INVALID_PARAM", "invalid status"))
		}
		quotes, err = h.quoteService.GetQuotesByStatus(c.Context(), status)
	} else {
		quotes, err = h.quoteService.GetAllQuotes(c.Context())
	}
	if err != nil {
		slog.Error("Failed to get all quotes", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve quotes"))
	}
	if len(quotes) > limit {
		quotes = quotes[:limit]
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	}))
}

func (h *QuoteHandler) SaveCompanyStep(c fiber.Ctx) error {
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

	var req models.SaveCompanyStepRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	quote, err := h.quoteService.SaveCompanyStep(c.Context(), quoteID, userID, req)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to save company step", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("SAVE_FAILED", "Failed to save company step"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(quote))
}

func (h *QuoteHandler) SaveRiskStep(c fiber.Ctx) error {
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

	var req models.SaveRiskProfileStepRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	quote, err := h.quoteService.SaveRiskProfileStep(c.Context(), quoteID, userID, req)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to save risk profile step", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("SAVE_FAILED", "Failed to save risk profile step"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(quote))
}

// SubmitSecurity runs the risk scoring engine over the submitted security
// questionnaire and returns the fresh assessment.
func (h *QuoteHandler) SubmitSecurity(c fiber.Ctx) error {
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

	var req models.SubmitSecurityStepRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	assessment, err := h.quoteService.SubmitSecurityStep(c.Context(), quoteID, userID, req)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to submit security step", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("SCORING_FAILED", "Failed to score security questionnaire"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(assessment))
}

func (h *QuoteHandler) GetAssessment(c fiber.Ctx) error {
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

	if _, err := h.quoteService.GetQuoteOwned(c.Context(), quoteID, userID); err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to get quote for assessment", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve assessment"))
	}

	assessment, err := h.quoteService.GetAssessment(c.Context(), quoteID)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", "Quote has not been scored yet"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(assessment))
}

// CreateCaseIfAbsent opens an underwriting case for a quote that cannot bind
// directly. Idempotent: repeated calls return the existing case.
func (h *QuoteHandler) CreateCaseIfAbsent(c fiber.Ctx) error {
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

	uwCase, alreadyExists, err := h.quoteService.CreateUnderwritingCaseIfAbsent(c.Context(), quoteID)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to create underwriting case", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("CREATE_FAILED", "Failed to create underwriting case"))
	}

	status := http.StatusCreated
	if alreadyExists {
		status = http.StatusOK
	}

	return c.Status(status).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"underwriting_case": uwCase,
		"already_exists":    alreadyExists,
	}))
}

func (h *QuoteHandler) BindQuote(c fiber.Ctx) error {
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

	var req models.BindQuoteRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	if _, err := h.quoteService.GetQuoteOwned(c.Context(), quoteID, userID); err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to load quote for binding", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("BIND_FAILED", "Failed to bind quote"))
	}

	policy, err := h.policyService.Bind(c.Context(), quoteID, time.Unix(req.StartDate, 0).UTC())
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to bind quote", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("BIND_FAILED", "Failed to bind quote"))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(policy))
}

func (h *QuoteHandler) GetPolicyForQuote(c fiber.Ctx) error {
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

	if _, err := h.quoteService.GetQuoteOwned(c.Context(), quoteID, userID); err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to load quote for policy lookup", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve policy"))
	}

	policy, err := h.policyService.GetPolicyByQuote(c.Context(), quoteID)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to get policy by quote", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve policy"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(policy))
}

func (h *QuoteHandler) CancelPolicy(c fiber.Ctx) error {
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

	if _, err := h.quoteService.GetQuoteOwned(c.Context(), quoteID, userID); err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to load quote for policy cancellation", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("CANCEL_FAILED", "Failed to cancel policy"))
	}

	policy, err := h.policyService.CancelPolicy(c.Context(), quoteID)
	if err != nil {
		if resp := mapQuoteError(c, err); resp != nil {
			return resp
		}
		slog.Error("Failed to cancel policy", "quote_id", quoteID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("CANCEL_FAILED", "Failed to cancel policy"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(policy))
}
