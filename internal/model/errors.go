package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, goal, progress_update, user, notification, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みAPIエラーコード
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodePasswordsDoNotMatch  = "PASSWORDS_DO_NOT_MATCH"
	ErrCodeUsernameNotAvailable = "USERNAME_NOT_AVAILABLE"
	ErrCodeEmailAlreadyInUse    = "EMAIL_ALREADY_IN_USE"
	ErrCodePasswordResetFailed  = "PASSWORD_RESET_FAILED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidRequestError はリクエストボディ不正エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// ErrorDomain はDomainErrorを返したリポジトリの領域。
type ErrorDomain string

const (
	DomainAuthentication ErrorDomain = "authentication"
	DomainUserProfile    ErrorDomain = "user_profile"
	DomainGoal           ErrorDomain = "goal"
	DomainProgressUpdate ErrorDomain = "progress_update"
	DomainNotification   ErrorDomain = "notification"
)

// ErrorKind は領域ごとの失敗した操作の種類。
type ErrorKind string

const (
	KindUnknown             ErrorKind = "UNKNOWN"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindForbidden           ErrorKind = "FORBIDDEN"
	KindUploadFailed        ErrorKind = "UPLOAD_FAILED"
	KindFetchFailed         ErrorKind = "FETCH_FAILED"
	KindDeleteFailed        ErrorKind = "DELETE_FAILED"
	KindLikeOperationFailed ErrorKind = "LIKE_OPERATION_FAILED"
	KindMarkAsReadFailed    ErrorKind = "MARK_AS_READ_FAILED"

	KindUpdateProfileFailed ErrorKind = "UPDATE_PROFILE_FAILED"
	KindCreateUserFailed    ErrorKind = "CREATE_USER_FAILED"
	KindUsernameTaken       ErrorKind = "USERNAME_TAKEN"
	KindFollowUserFailed    ErrorKind = "FOLLOW_USER_FAILED"
	KindGetUserFailed       ErrorKind = "GET_USER_FAILED"
	KindSuggestionsFailed   ErrorKind = "GET_SUGGESTIONS_FAILED"
	KindCheckUsernameFailed ErrorKind = "CHECK_USERNAME_FAILED"
	KindSearchUsersFailed   ErrorKind = "SEARCH_USERS_FAILED"
	KindFollowingFailed     ErrorKind = "FOLLOWING_FAILED"
	KindFollowersFailed     ErrorKind = "FOLLOWERS_FAILED"

	KindSignInFailed           ErrorKind = "SIGN_IN_FAILED"
	KindSignUpFailed           ErrorKind = "SIGN_UP_FAILED"
	KindSignOutFailed          ErrorKind = "SIGN_OUT_FAILED"
	KindCurrentUserFetchFailed ErrorKind = "CURRENT_USER_FETCH_FAILED"
	KindPasswordResetFailed    ErrorKind = "PASSWORD_RESET_FAILED"
	KindInvalidCredentials     ErrorKind = "INVALID_CREDENTIALS"
	KindEmailAlreadyInUse      ErrorKind = "EMAIL_ALREADY_IN_USE"
)

// DomainError はリポジトリ層が返す名前付きエラー。
// 下位層のエラー型は保持せず、表示可能なメッセージのみを持つ。
type DomainError struct {
	Domain  ErrorDomain
	Kind    ErrorKind
	Message string
}

// NewDomainError はDomainErrorを生成する。
func NewDomainError(domain ErrorDomain, kind ErrorKind, format string, args ...any) *DomainError {
	return &DomainError{
		Domain:  domain,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error はerrorインターフェースを実装する。
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Domain, e.Kind, e.Message)
}

// Is はDomainとKindが一致する場合にtrueを返す。Messageは比較しない。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Domain == t.Domain && e.Kind == t.Kind
}

// errors.Isでの判定に使う番兵。
var (
	ErrGoalUploadFailed = &DomainError{Domain: DomainGoal, Kind: KindUploadFailed}
	ErrGoalFetchFailed  = &DomainError{Domain: DomainGoal, Kind: KindFetchFailed}
	ErrGoalDeleteFailed = &DomainError{Domain: DomainGoal, Kind: KindDeleteFailed}
	ErrGoalNotFound     = &DomainError{Domain: DomainGoal, Kind: KindNotFound}
	ErrGoalForbidden    = &DomainError{Domain: DomainGoal, Kind: KindForbidden}
	ErrGoalUnknown      = &DomainError{Domain: DomainGoal, Kind: KindUnknown}

	ErrUpdateUploadFailed = &DomainError{Domain: DomainProgressUpdate, Kind: KindUploadFailed}
	ErrUpdateFetchFailed  = &DomainError{Domain: DomainProgressUpdate, Kind: KindFetchFailed}
	ErrUpdateLikeFailed   = &DomainError{Domain: DomainProgressUpdate, Kind: KindLikeOperationFailed}
	ErrUpdateNotFound     = &DomainError{Domain: DomainProgressUpdate, Kind: KindNotFound}
	ErrUpdateUnknown      = &DomainError{Domain: DomainProgressUpdate, Kind: KindUnknown}

	ErrNotificationFetchFailed      = &DomainError{Domain: DomainNotification, Kind: KindFetchFailed}
	ErrNotificationMarkAsReadFailed = &DomainError{Domain: DomainNotification, Kind: KindMarkAsReadFailed}
	ErrNotificationDeleteFailed     = &DomainError{Domain: DomainNotification, Kind: KindDeleteFailed}
	ErrNotificationNotFound         = &DomainError{Domain: DomainNotification, Kind: KindNotFound}
	ErrNotificationForbidden        = &DomainError{Domain: DomainNotification, Kind: KindForbidden}
	ErrNotificationUnknown          = &DomainError{Domain: DomainNotification, Kind: KindUnknown}

	ErrUserUpdateProfileFailed = &DomainError{Domain: DomainUserProfile, Kind: KindUpdateProfileFailed}
	ErrUserCreateFailed        = &DomainError{Domain: DomainUserProfile, Kind: KindCreateUserFailed}
	ErrUserUsernameTaken       = &DomainError{Domain: DomainUserProfile, Kind: KindUsernameTaken}
	ErrUserFollowFailed        = &DomainError{Domain: DomainUserProfile, Kind: KindFollowUserFailed}
	ErrUserGetFailed           = &DomainError{Domain: DomainUserProfile, Kind: KindGetUserFailed}
	ErrUserSuggestionsFailed   = &DomainError{Domain: DomainUserProfile, Kind: KindSuggestionsFailed}
	ErrUserCheckUsernameFailed = &DomainError{Domain: DomainUserProfile, Kind: KindCheckUsernameFailed}
	ErrUserSearchFailed        = &DomainError{Domain: DomainUserProfile, Kind: KindSearchUsersFailed}
	ErrUserFollowingFailed     = &DomainError{Domain: DomainUserProfile, Kind: KindFollowingFailed}
	ErrUserFollowersFailed     = &DomainError{Domain: DomainUserProfile, Kind: KindFollowersFailed}
	ErrUserNotFound            = &DomainError{Domain: DomainUserProfile, Kind: KindNotFound}
	ErrUserUnknown             = &DomainError{Domain: DomainUserProfile, Kind: KindUnknown}

	ErrAuthSignInFailed        = &DomainError{Domain: DomainAuthentication, Kind: KindSignInFailed}
	ErrAuthSignUpFailed        = &DomainError{Domain: DomainAuthentication, Kind: KindSignUpFailed}
	ErrAuthSignOutFailed       = &DomainError{Domain: DomainAuthentication, Kind: KindSignOutFailed}
	ErrAuthCurrentUserFailed   = &DomainError{Domain: DomainAuthentication, Kind: KindCurrentUserFetchFailed}
	ErrAuthPasswordResetFailed = &DomainError{Domain: DomainAuthentication, Kind: KindPasswordResetFailed}
	ErrAuthInvalidCredentials  = &DomainError{Domain: DomainAuthentication, Kind: KindInvalidCredentials}
	ErrAuthEmailAlreadyInUse   = &DomainError{Domain: DomainAuthentication, Kind: KindEmailAlreadyInUse}
)
