package handler

import (
	"log/slog"
	"net/http"

	"github.com/technix/fittrack/internal/ctxkeys"
	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/service"
)

type authHandler struct {
	authService         *service.AuthService
	userService         *service.UserService
	notificationService *service.NotificationService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, notificationService *service.NotificationService) *authHandler {
	return &authHandler{
		authService:         authService,
		userService:         userService,
		notificationService: notificationService,
	}
}

// authUser is the user payload returned by signup/login, with the session
// credential attached for clients that mirror it to a bearer header.
type authUser struct {
	*model.User
	Token string `json:"token,omitempty"`
}

type userEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	User    authUser `json:"user"`
}

func (h *authHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := h.authService.Signup(body.Email, body.Password, body.Name, body.Role)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := h.authService.MintSession(user)
	if err != nil {
		respondError(w, err)
		return
	}
	h.authService.SetSessionCookie(w, token)

	writeJSON(w, http.StatusCreated, userEnvelope{
		Success: true,
		Message: "User created successfully",
		User:    authUser{User: user, Token: token},
	})

	// Fire-and-forget relative to the response: a failed send is logged and
	// retried by the user via the resend path, never rolled back.
	go func() {
		sendErr := h.authService.SendVerificationEmail(user)
		if sendErr != nil {
			slog.Error("verification email send failed", "error", sendErr, "user_id", user.ID)
		}
	}()

	h.notificationService.Record(user.ID, "New User Signed Up", "New user signed up: "+user.Email, model.NotificationTypeSignup)
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := h.authService.Login(body.Email, body.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := h.authService.MintSession(user)
	if err != nil {
		respondError(w, err)
		return
	}
	h.authService.SetSessionCookie(w, token)

	writeJSON(w, http.StatusOK, userEnvelope{
		Success: true,
		Message: "Logged in successfully",
		User:    authUser{User: user, Token: token},
	})

	h.notificationService.Record(user.ID, "User Logged In", "User logged in: "+user.Email, model.NotificationTypeLogin)
}

// Logout clears the session cookie. Sessions are stateless, so this always
// succeeds; the client clears its own state regardless.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearSessionCookie(w)
	respondSuccess(w, http.StatusOK, "Logged out successfully")
}

func (h *authHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := h.authService.VerifyEmail(body.Code)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{
		Success: true,
		Message: "Email verified successfully",
		User:    authUser{User: user},
	})
}

func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	err = h.authService.ForgotPassword(body.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Password reset link sent to your email")
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var body struct {
		Password string `json:"password"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	_, err = h.authService.ResetPassword(token, body.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Password reset successful")
}

func (h *authHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	user, err := h.userService.ByID(principal.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{
		Success: true,
		User:    authUser{User: user},
	})
}

func (h *authHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	user, err := h.userService.ByID(principal.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{
		Success: true,
		User:    authUser{User: user},
	})
}

func (h *authHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	var body struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		ProfilePicture string `json:"profilePicture"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := h.userService.UpdateProfile(principal.UserID, service.ProfileUpdate{
		Name:           body.Name,
		Email:          body.Email,
		Password:       body.Password,
		ProfilePicture: body.ProfilePicture,
	})
	if err != nil {
		respondError(w, err)
		h.notificationService.Record(principal.UserID, "Update Error", "Profile update failed: "+err.Error(), model.NotificationTypeError)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{
		Success: true,
		Message: "Profile updated successfully",
		User:    authUser{User: user},
	})

	h.notificationService.Record(user.ID, "Profile Updated", "User updated their account: "+user.Email, model.NotificationTypeUpdate)
}
