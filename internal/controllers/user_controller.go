package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/dtos"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/services"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

type UserController struct {
	userService         services.UserService
	verificationService services.VerificationService
}

func NewUserController(
	userService services.UserService,
	verificationService services.VerificationService,
) *UserController {
	return &UserController{
		userService:         userService,
		verificationService: verificationService,
	}
}

// Register creates the user and immediately triggers SMS code issuance for
// their phone number, mirroring a register-then-verify signup flow.
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid registration details", err,
		)
		return
	}

	user, err := c.userService.Register(r.Context(), req.Name, req.PhoneNumber, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrUserAlreadyExists) {
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict, "A user with this phone number already exists",
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to register user", err,
		)
		return
	}

	if err := c.verificationService.Issue(r.Context(), req.PhoneNumber, models.ChannelSMS, clientIP(r)); err != nil {
		// The user record exists either way; surface the issuance problem
		// so the client can retry via /request_code.
		respondIssueError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.RegisterUserResponse{
		ID:      user.ID.String(),
		Message: "User created, verification code sent",
	})
}
