package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/dtos"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/services"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

type VerificationController struct {
	verificationService services.VerificationService
	userService         services.UserService
}

func NewVerificationController(
	verificationService services.VerificationService,
	userService services.UserService,
) *VerificationController {
	return &VerificationController{
		verificationService: verificationService,
		userService:         userService,
	}
}

var validate = validator.New()

// ---------------------------------------------------------------------
// RequestCode
// ---------------------------------------------------------------------
func (c *VerificationController) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req dtos.RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid destination or channel", err,
		)
		return
	}

	err := c.verificationService.Issue(r.Context(), req.Destination, models.Channel(req.Channel), clientIP(r))
	if err != nil {
		respondIssueError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.RequestCodeResponse{Message: "Verification code sent"})
}

// ---------------------------------------------------------------------
// VerifyCode
// ---------------------------------------------------------------------
func (c *VerificationController) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req dtos.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid destination or code format", err,
		)
		return
	}

	if err := c.verificationService.Check(r.Context(), req.Destination, req.Code); err != nil {
		respondCheckError(w, err)
		return
	}

	// The core reports Verified; flagging the user record is a boundary
	// concern. Verification before registration is allowed, so a missing
	// user is not an error here.
	if err := c.userService.MarkVerified(r.Context(), req.Destination); err != nil {
		if !errors.Is(err, utils.ErrUserNotFound) {
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to mark user verified", err,
			)
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.VerifyCodeResponse{Message: "Destination verified", Verified: true})
}

// ---------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------
func respondIssueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrInvalidDestination):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Destination failed validation", err,
		)
	case errors.Is(err, utils.ErrTooManyRequests):
		utils.RespondErrorWithCode(
			w, http.StatusTooManyRequests, utils.ErrCodeTooManyRequests, "A code was sent recently. Please wait before requesting another.",
		)
	case errors.Is(err, utils.ErrRateLimitExceeded):
		utils.RespondErrorWithCode(
			w, http.StatusTooManyRequests, utils.ErrCodeRateLimitExceeded, "Too many requests. Please try again later.",
		)
	case errors.Is(err, utils.ErrDeliveryFailure):
		utils.RespondErrorWithCode(
			w, http.StatusBadGateway, utils.ErrCodeDeliveryFailure, "Could not deliver the verification code", err,
		)
	case errors.Is(err, utils.ErrStoreUnavailable):
		utils.RespondErrorWithCode(
			w, http.StatusServiceUnavailable, utils.ErrCodeStoreUnavailable, "Verification store unavailable", err,
		)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to issue verification code", err,
		)
	}
}

func respondCheckError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrCodeExpired):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeExpiredCode, "Code expired or not issued. Please request a new one.",
		)
	case errors.Is(err, utils.ErrCodeExhausted):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeExhaustedCode, "Too many failed attempts. Please request a new code.",
		)
	case errors.Is(err, utils.ErrCodeInvalid):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidCode, "Invalid code",
		)
	case errors.Is(err, utils.ErrStoreUnavailable):
		utils.RespondErrorWithCode(
			w, http.StatusServiceUnavailable, utils.ErrCodeStoreUnavailable, "Verification store unavailable", err,
		)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Verification failed", err,
		)
	}
}
