package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"pressboard/internal/middleware"
	"pressboard/internal/models"
	"pressboard/internal/otp"
	"pressboard/internal/session"
	"pressboard/internal/store"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "PressBoard"

// Auth groups all authentication-related HTTP handlers: the SMS OTP flow
// for marketplace users and the password+TOTP flow for the admin panel.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
	otpSvc    *otp.Service
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore, otpSvc *otp.Service) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
		otpSvc:    otpSvc,
	}
}

type otpRequestBody struct {
	Phone string `json:"phone" validate:"required"`
}

// OTPRequest issues a login code for a phone number. The response does
// not reveal whether the number belongs to an existing account.
func (a *Auth) OTPRequest(w http.ResponseWriter, r *http.Request) {
	var body otpRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, "Phone number is required.", http.StatusBadRequest)
		return
	}

	phone := validatePhone(body.Phone)
	if phone == "" {
		writeError(w, "Invalid phone number.", http.StatusBadRequest)
		return
	}

	if err := a.otpSvc.Issue(r.Context(), phone); err != nil {
		slog.Error("otp issue failed", "error", err)
		writeError(w, "Could not send the code. Please try again.", http.StatusInternalServerError)
		return
	}

	writeMessage(w, "Verification code sent.")
}

type otpVerifyBody struct {
	Phone       string `json:"phone" validate:"required"`
	Code        string `json:"code" validate:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// OTPVerify checks the login code and opens a session. Unknown phone
// numbers are registered on the spot — OTP verification doubles as
// sign-up. The requested role is honored for new accounts only and may
// never be SUPER_ADMIN.
func (a *Auth) OTPVerify(w http.ResponseWriter, r *http.Request) {
	var body otpVerifyBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, "Phone and code are required.", http.StatusBadRequest)
		return
	}

	phone := validatePhone(body.Phone)
	if phone == "" {
		writeError(w, "Invalid phone number.", http.StatusBadRequest)
		return
	}

	if err := a.otpSvc.Verify(r.Context(), phone, body.Code); err != nil {
		switch {
		case errors.Is(err, otp.ErrTooManyAttempts):
			writeError(w, "Too many attempts. Request a new code.", http.StatusBadRequest)
		case errors.Is(err, otp.ErrCodeMismatch):
			writeError(w, "Invalid or expired code.", http.StatusBadRequest)
		default:
			slog.Error("otp verify failed", "error", err)
			writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		}
		return
	}

	user, err := a.userStore.FindByPhone(phone)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	if user == nil {
		role := models.RoleUser
		if parsed, ok := models.ParseRole(body.Role); ok && parsed != models.RoleSuperAdmin {
			role = parsed
		}
		user, err = a.userStore.Create(phone, body.DisplayName, role)
		if err != nil {
			slog.Error("user create failed", "error", err)
			writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
			return
		}
	}

	// OTP accounts have no second factor; the session is fully
	// authenticated immediately. Super-admins must use the admin login.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Phone:       user.Phone,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		TwoFADone:   user.Role != models.RoleSuperAdmin,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

type adminLoginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLogin processes the admin panel login. On success the session is
// created with the TOTP step still pending; the response tells the
// client whether to continue with 2FA setup or verification.
func (a *Auth) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body adminLoginBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, "Email and password are required.", http.StatusBadRequest)
		return
	}

	user, err := a.userStore.FindByEmail(body.Email)
	if err != nil {
		slog.Error("admin login lookup failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	if user == nil || !user.IsSuperAdmin() || !a.userStore.CheckPassword(user, body.Password) {
		writeError(w, "Invalid email or password.", http.StatusUnauthorized)
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Phone:       user.Phone,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"needs_2fa_setup": user.Needs2FASetup(),
	})
}

// TwoFASetup generates a TOTP secret for the logged-in admin and returns
// the enrollment QR code as a base64 PNG alongside the secret.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.Role != models.RoleSuperAdmin {
		writeError(w, "Administrator access required.", http.StatusForbidden)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Phone,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"qr_png": base64.StdEncoding.EncodeToString(qrPNG),
		"secret": key.Secret(),
	})
}

type twoFAVerifyBody struct {
	Code string `json:"code" validate:"required"`
}

// TwoFAVerify validates the TOTP code and completes admin authentication.
// On first-time setup a valid code also enables TOTP on the account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.Role != models.RoleSuperAdmin {
		writeError(w, "Administrator access required.", http.StatusForbidden)
		return
	}

	var body twoFAVerifyBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, "Code is required.", http.StatusBadRequest)
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	if user.TOTPSecret == nil {
		writeError(w, "Two-factor setup has not been started.", http.StatusBadRequest)
		return
	}

	if !totp.Validate(body.Code, *user.TOTPSecret) {
		writeError(w, "Invalid code. Please try again.", http.StatusBadRequest)
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	writeMessage(w, "Two-factor authentication complete.")
}

type displayNameBody struct {
	DisplayName string `json:"display_name" validate:"required"`
}

// UpdateDisplayName renames the signed-in account. The session copy of
// the name is refreshed so later responses reflect it immediately.
func (a *Auth) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var body displayNameBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, "Display name is required.", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(body.DisplayName)
	if msg := validateDisplayName(name); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	if err := a.userStore.UpdateDisplayName(sess.UserID, name); err != nil {
		slog.Error("update display name failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	// Best-effort: the database is already updated, the session copy
	// catches up on the next login at worst.
	sess.DisplayName = name
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
	}

	writeMessage(w, "Display name updated.")
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	writeMessage(w, "Logged out.")
}
