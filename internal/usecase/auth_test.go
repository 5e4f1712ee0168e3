package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/bucket/internal/auth"
	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/security"
)

func TestSignInUseCase_Success(t *testing.T) {
	authRepo := &mockAuthRepo{
		signInFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			if email != "alice@example.com" {
				t.Errorf("email = %q, want normalized address", email)
			}
			return &model.Session{ID: "sess-1", UserID: "u1"}, nil
		},
	}
	users := &mockUserRepo{
		getUserFn: func(ctx context.Context, userID string) (*model.UserBO, error) {
			// セッションがコンテキストに注入されていること
			if viewer, ok := auth.UserIDFromContext(ctx); !ok || viewer != "u1" {
				t.Errorf("viewer in context = %q, %v", viewer, ok)
			}
			return &model.UserBO{UserID: userID, Username: "alice"}, nil
		},
	}

	uc := NewSignInUseCase(authRepo, users)
	got, err := uc.Execute(context.Background(), SignInParams{Email: "  Alice@Example.com ", Password: "password1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.Session.ID != "sess-1" || got.User.Username != "alice" {
		t.Errorf("result = %+v", got)
	}
}

func TestSignInUseCase_InvalidCredentials(t *testing.T) {
	authRepo := &mockAuthRepo{
		signInFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			return nil, model.NewDomainError(model.DomainAuthentication, model.KindInvalidCredentials, "bad password")
		},
	}
	uc := NewSignInUseCase(authRepo, &mockUserRepo{})

	_, err := uc.Execute(context.Background(), SignInParams{Email: "a@example.com", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignInUseCase_Validation(t *testing.T) {
	uc := NewSignInUseCase(&mockAuthRepo{}, &mockUserRepo{})
	_, err := uc.Execute(context.Background(), SignInParams{Email: "not-an-email", Password: ""})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func validSignUp() SignUpParams {
	return SignUpParams{
		Email:           "bob@example.com",
		Password:        "password1",
		ConfirmPassword: "password1",
		Fullname:        "Bob",
		Username:        "bob_runner",
	}
}

func TestSignUpUseCase_Success(t *testing.T) {
	var created model.CreateUserBO
	authRepo := &mockAuthRepo{
		signUpFn: func(ctx context.Context, email, password string) (string, error) {
			return "u-new", nil
		},
		signInFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			return &model.Session{ID: "sess", UserID: "u-new"}, nil
		},
	}
	users := &mockUserRepo{
		createUserFn: func(ctx context.Context, data model.CreateUserBO) (*model.UserBO, error) {
			created = data
			return &model.UserBO{UserID: data.UserID, Username: data.Username}, nil
		},
	}

	params := validSignUp()
	params.Fullname = "<b>Bob</b>"
	uc := NewSignUpUseCase(authRepo, users, security.NewTextSanitizer())
	got, err := uc.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if created.UserID != "u-new" || created.Username != "bob_runner" || created.Fullname != "Bob" {
		t.Errorf("created = %+v", created)
	}
	if got.Session.UserID != "u-new" {
		t.Errorf("session user = %q", got.Session.UserID)
	}
	if len(authRepo.deleted) != 0 {
		t.Errorf("deleted = %v, want none", authRepo.deleted)
	}
}

// TestSignUpUseCase_Preconditions はアカウント作成前に失敗する事前条件を検証する。
func TestSignUpUseCase_Preconditions(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *SignUpParams)
		available bool
		wantErr   error
	}{
		{
			name:      "パスワード不一致",
			mutate:    func(p *SignUpParams) { p.ConfirmPassword = "different1" },
			available: true,
			wantErr:   ErrPasswordsDoNotMatch,
		},
		{
			name:      "ユーザー名が使用済み",
			mutate:    func(p *SignUpParams) {},
			available: false,
			wantErr:   ErrUsernameNotAvailable,
		},
		{
			name:      "ユーザー名に使用できない文字",
			mutate:    func(p *SignUpParams) { p.Username = "bob runner!" },
			available: true,
			wantErr:   ErrInvalidInput,
		},
		{
			name:      "短すぎるパスワード",
			mutate:    func(p *SignUpParams) { p.Password, p.ConfirmPassword = "short", "short" },
			available: true,
			wantErr:   ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signUpCalled := false
			authRepo := &mockAuthRepo{
				signUpFn: func(ctx context.Context, email, password string) (string, error) {
					signUpCalled = true
					return "u", nil
				},
			}
			users := &mockUserRepo{
				checkUsernameFn: func(ctx context.Context, username string) (bool, error) {
					return tt.available, nil
				},
			}
			params := validSignUp()
			tt.mutate(&params)

			_, err := NewSignUpUseCase(authRepo, users, security.NewTextSanitizer()).Execute(context.Background(), params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if signUpCalled {
				t.Error("SignUp should not be called when a precondition fails")
			}
		})
	}
}

// TestSignUpUseCase_ProfileFailureRollsBackCredential はプロフィール作成に失敗した場合に資格情報が削除されることを検証する。
func TestSignUpUseCase_ProfileFailureRollsBackCredential(t *testing.T) {
	tests := []struct {
		name      string
		createErr error
		wantErr   error
	}{
		{
			name:      "ユーザー名の競合",
			createErr: model.NewDomainError(model.DomainUserProfile, model.KindUsernameTaken, "taken"),
			wantErr:   ErrUsernameNotAvailable,
		},
		{
			name:      "保存の失敗",
			createErr: model.NewDomainError(model.DomainUserProfile, model.KindCreateUserFailed, "db down"),
			wantErr:   model.ErrUserCreateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signInCalled := false
			authRepo := &mockAuthRepo{
				signUpFn: func(ctx context.Context, email, password string) (string, error) {
					return "u-new", nil
				},
				signInFn: func(ctx context.Context, email, password string) (*model.Session, error) {
					signInCalled = true
					return &model.Session{ID: "sess", UserID: "u-new"}, nil
				},
			}
			users := &mockUserRepo{
				createUserFn: func(ctx context.Context, data model.CreateUserBO) (*model.UserBO, error) {
					return nil, tt.createErr
				},
			}

			_, err := NewSignUpUseCase(authRepo, users, security.NewTextSanitizer()).Execute(context.Background(), validSignUp())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(authRepo.deleted) != 1 || authRepo.deleted[0] != "u-new" {
				t.Errorf("deleted = %v, want [u-new]", authRepo.deleted)
			}
			if signInCalled {
				t.Error("SignIn should not be called after profile creation fails")
			}
		})
	}
}

func TestSignUpUseCase_EmailInUsePassesThrough(t *testing.T) {
	authRepo := &mockAuthRepo{
		signUpFn: func(ctx context.Context, email, password string) (string, error) {
			return "", model.NewDomainError(model.DomainAuthentication, model.KindEmailAlreadyInUse, "taken")
		},
	}
	_, err := NewSignUpUseCase(authRepo, &mockUserRepo{}, security.NewTextSanitizer()).Execute(context.Background(), validSignUp())
	if !errors.Is(err, model.ErrAuthEmailAlreadyInUse) {
		t.Errorf("error = %v, want ErrAuthEmailAlreadyInUse", err)
	}
}

func TestSignOutUseCase(t *testing.T) {
	t.Run("未認証", func(t *testing.T) {
		err := NewSignOutUseCase(&mockAuthRepo{}).Execute(context.Background())
		if !errors.Is(err, ErrUserNotAuthenticated) {
			t.Errorf("error = %v, want ErrUserNotAuthenticated", err)
		}
	})

	t.Run("サインアウト", func(t *testing.T) {
		called := false
		authRepo := &mockAuthRepo{
			currentUserID: "u1",
			signOutFn: func(ctx context.Context) error {
				called = true
				return nil
			},
		}
		if err := NewSignOutUseCase(authRepo).Execute(context.Background()); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !called {
			t.Error("SignOut was not called")
		}
	})
}

func TestForgotPasswordUseCase(t *testing.T) {
	var gotEmail string
	authRepo := &mockAuthRepo{
		forgotPasswordFn: func(ctx context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}
	uc := NewForgotPasswordUseCase(authRepo)
	if err := uc.Execute(context.Background(), ForgotPasswordParams{Email: "Bob@Example.com"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotEmail != "bob@example.com" {
		t.Errorf("email = %q", gotEmail)
	}

	if err := uc.Execute(context.Background(), ForgotPasswordParams{Email: ""}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty email error = %v, want ErrInvalidInput", err)
	}
}

func TestResetPasswordUseCase(t *testing.T) {
	authRepo := &mockAuthRepo{
		resetPasswordFn: func(ctx context.Context, token, newPassword string) error {
			if token == "expired" {
				return model.NewDomainError(model.DomainAuthentication, model.KindPasswordResetFailed, "token expired")
			}
			return nil
		},
	}
	uc := NewResetPasswordUseCase(authRepo)

	if err := uc.Execute(context.Background(), ResetPasswordParams{Token: "ok", Password: "newpassword", ConfirmPassword: "newpassword"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if err := uc.Execute(context.Background(), ResetPasswordParams{Token: "ok", Password: "newpassword", ConfirmPassword: "other-pass"}); !errors.Is(err, ErrPasswordsDoNotMatch) {
		t.Errorf("mismatch error = %v", err)
	}
	if err := uc.Execute(context.Background(), ResetPasswordParams{Token: "expired", Password: "newpassword", ConfirmPassword: "newpassword"}); !errors.Is(err, model.ErrAuthPasswordResetFailed) {
		t.Errorf("expired error = %v, want ErrAuthPasswordResetFailed", err)
	}
}
