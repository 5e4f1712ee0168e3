package handler

import (
	"net/http"

	"github.com/hitoshi/bucket/internal/middleware"
	"github.com/hitoshi/bucket/internal/usecase"
)

// AuthUseCases は認証ハンドラーが呼び出すユースケース。
type AuthUseCases struct {
	SignUp         UseCase[usecase.SignUpParams, *usecase.AuthResult]
	SignIn         UseCase[usecase.SignInParams, *usecase.AuthResult]
	SignOut        ActionUseCase
	ForgotPassword CommandUseCase[usecase.ForgotPasswordParams]
	ResetPassword  CommandUseCase[usecase.ResetPasswordParams]
	CheckUsername  UseCase[usecase.CheckUsernameAvailabilityParams, bool]
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はサインアップ・サインイン・パスワードリセットのHTTPハンドラー。
type AuthHandler struct {
	useCases AuthUseCases
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(useCases AuthUseCases, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		useCases: useCases,
		config:   config,
	}
}

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Fullname        string `json:"fullname"`
	Username        string `json:"username"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// SignUp はアカウントを作成してサインインする。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.useCases.SignUp.Execute(r.Context(), usecase.SignUpParams{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Fullname:        req.Fullname,
		Username:        req.Username,
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	h.writeAuthResult(w, http.StatusCreated, result)
}

// SignIn はメールアドレスとパスワードでサインインする。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.useCases.SignIn.Execute(r.Context(), usecase.SignInParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	h.writeAuthResult(w, http.StatusOK, result)
}

// SignOut はセッションを破棄し、セッションCookieを削除する。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.useCases.SignOut.Execute(r.Context()); err != nil {
		handleUseCaseError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword はパスワードリセットリンクの送信を要求する。
// 未登録のメールアドレスでも202を返す。
// POST /auth/password/forgot
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.useCases.ForgotPassword.Execute(r.Context(), usecase.ForgotPasswordParams{Email: req.Email}); err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// ResetPassword はリセットトークンでパスワードを再設定する。
// POST /auth/password/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.useCases.ResetPassword.Execute(r.Context(), usecase.ResetPasswordParams{
		Token:           req.Token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UsernameAvailability はユーザー名が使用可能かを返す。
// GET /auth/username-availability?username=xxx
func (h *AuthHandler) UsernameAvailability(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	available, err := h.useCases.CheckUsername.Execute(r.Context(), usecase.CheckUsernameAvailabilityParams{
		Username: username,
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username":  username,
		"available": available,
	})
}

// writeAuthResult はセッションCookieを設定し、ユーザーとトークンを返す。
func (h *AuthHandler) writeAuthResult(w http.ResponseWriter, statusCode int, result *usecase.AuthResult) {
	http.SetCookie(w, h.sessionCookie(result.Session.ID, h.config.SessionMaxAge))

	writeJSON(w, statusCode, authResponse{
		Token:     result.Session.ID,
		ExpiresAt: result.Session.ExpiresAt,
		User:      toSelfResponse(*result.User),
	})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
