package datasource

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/bucket/internal/model"
)

// MemoryStore はプロセス内メモリにすべてのレコードを保持するストア。
// STORAGE_BACKEND=memory での起動とテストで使用する。
// 各データソースはUsers()などのアクセサで取得し、同じミューテックスを共有する。
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	users         map[string]*model.UserDTO
	userOrder     []string
	goals         []*model.GoalDTO
	updates       []*model.ProgressUpdateDTO
	notifications []*model.NotificationDTO
	credentials   map[string]*model.Credential
	sessions      map[string]*model.Session
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:         time.Now,
		users:       make(map[string]*model.UserDTO),
		credentials: make(map[string]*model.Credential),
		sessions:    make(map[string]*model.Session),
	}
}

// SetClock はタイムスタンプ付与に使う時計を差し替える。
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Users はUserDataSourceを返す。
func (s *MemoryStore) Users() UserDataSource { return &memoryUsers{s} }

// Goals はGoalDataSourceを返す。
func (s *MemoryStore) Goals() GoalDataSource { return &memoryGoals{s} }

// Updates はProgressUpdateDataSourceを返す。
func (s *MemoryStore) Updates() ProgressUpdateDataSource { return &memoryUpdates{s} }

// Notifications はNotificationDataSourceを返す。
func (s *MemoryStore) Notifications() NotificationDataSource { return &memoryNotifications{s} }

// Credentials はCredentialDataSourceを返す。
func (s *MemoryStore) Credentials() CredentialDataSource { return &memoryCredentials{s} }

// Sessions はSessionDataSourceを返す。
func (s *MemoryStore) Sessions() SessionDataSource { return &memorySessions{s} }

func copyUser(u *model.UserDTO) model.UserDTO {
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	return c
}

func copyUpdate(p *model.ProgressUpdateDTO) model.ProgressUpdateDTO {
	c := *p
	c.LikedBy = slices.Clone(p.LikedBy)
	return c
}

// --- users ---

type memoryUsers struct{ s *MemoryStore }

func (m *memoryUsers) GetUserByID(_ context.Context, userID string) (*model.UserDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	u, ok := m.s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c := copyUser(u)
	return &c, nil
}

func (m *memoryUsers) GetUserByIDList(_ context.Context, userIDs []string) ([]model.UserDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	result := []model.UserDTO{}
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := m.s.users[id]; ok {
			result = append(result, copyUser(u))
		}
	}
	return result, nil
}

func (m *memoryUsers) CreateUser(_ context.Context, data model.CreateUserDTO) (*model.UserDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.users[data.UserID]; ok {
		return nil, ErrConflict
	}
	for _, u := range m.s.users {
		if strings.EqualFold(u.Username, data.Username) || strings.EqualFold(u.Email, data.Email) {
			return nil, ErrConflict
		}
	}

	u := &model.UserDTO{
		UserID:    data.UserID,
		Email:     data.Email,
		Fullname:  data.Fullname,
		Username:  data.Username,
		Followers: []string{},
		Following: []string{},
	}
	m.s.users[u.UserID] = u
	m.s.userOrder = append(m.s.userOrder, u.UserID)
	c := copyUser(u)
	return &c, nil
}

func (m *memoryUsers) UpdateUser(_ context.Context, data model.UpdateUserDTO) (*model.UserDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	u, ok := m.s.users[data.UserID]
	if !ok {
		return nil, ErrNotFound
	}
	u.Fullname = data.Fullname
	u.Link = data.Link
	u.IsPrivateProfile = data.IsPrivateProfile
	u.Bio = data.Bio
	if data.ProfileImageURL != nil {
		u.ProfileImageURL = data.ProfileImageURL
	}
	c := copyUser(u)
	return &c, nil
}

func (m *memoryUsers) GetSuggestions(_ context.Context, authUserID string, limit int) ([]model.UserDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	result := []model.UserDTO{}
	for i := len(m.s.userOrder) - 1; i >= 0 && len(result) < limit; i-- {
		u := m.s.users[m.s.userOrder[i]]
		if u.UserID == authUserID || slices.Contains(u.Followers, authUserID) {
			continue
		}
		result = append(result, copyUser(u))
	}
	return result, nil
}

func (m *memoryUsers) CheckUsernameAvailability(_ context.Context, username string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, u := range m.s.users {
		if strings.EqualFold(u.Username, username) {
			return false, nil
		}
	}
	return true, nil
}

func (m *memoryUsers) FollowUser(_ context.Context, authUserID, targetUserID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	auth, ok := m.s.users[authUserID]
	if !ok {
		return false, ErrNotFound
	}
	target, ok := m.s.users[targetUserID]
	if !ok {
		return false, ErrNotFound
	}

	if slices.Contains(target.Followers, authUserID) {
		target.Followers = slices.DeleteFunc(target.Followers, func(id string) bool { return id == authUserID })
		auth.Following = slices.DeleteFunc(auth.Following, func(id string) bool { return id == targetUserID })
		return false, nil
	}
	target.Followers = append(target.Followers, authUserID)
	auth.Following = append(auth.Following, targetUserID)
	return true, nil
}

func (m *memoryUsers) SearchUsers(_ context.Context, term string, limit int) ([]model.UserDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	term = strings.ToLower(term)
	result := []model.UserDTO{}
	for _, u := range m.s.users {
		if strings.HasPrefix(strings.ToLower(u.Username), term) || strings.HasPrefix(strings.ToLower(u.Fullname), term) {
			result = append(result, copyUser(u))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// --- goals ---

type memoryGoals struct{ s *MemoryStore }

func (m *memoryGoals) UploadGoal(_ context.Context, data model.CreateGoalDTO) (*model.GoalDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, g := range m.s.goals {
		if g.GoalID == data.GoalID {
			return nil, ErrConflict
		}
	}
	g := &model.GoalDTO{
		GoalID:      data.GoalID,
		UserID:      data.UserID,
		Title:       data.Title,
		Description: data.Description,
		Category:    data.Category,
		CreatedAt:   m.s.now(),
	}
	m.s.goals = append(m.s.goals, g)
	c := *g
	return &c, nil
}

func (m *memoryGoals) FetchUserGoals(_ context.Context, userID string) ([]model.GoalDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	result := []model.GoalDTO{}
	for _, g := range m.s.goals {
		if g.UserID == userID {
			result = append(result, *g)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *memoryGoals) GetGoalByID(_ context.Context, goalID string) (*model.GoalDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, g := range m.s.goals {
		if g.GoalID == goalID {
			c := *g
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryGoals) DeleteGoal(_ context.Context, goalID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	n := len(m.s.goals)
	m.s.goals = slices.DeleteFunc(m.s.goals, func(g *model.GoalDTO) bool { return g.GoalID == goalID })
	if len(m.s.goals) == n {
		return ErrNotFound
	}
	m.s.updates = slices.DeleteFunc(m.s.updates, func(p *model.ProgressUpdateDTO) bool { return p.GoalID == goalID })
	return nil
}

func (m *memoryGoals) IncrementUpdateCount(_ context.Context, goalID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, g := range m.s.goals {
		if g.GoalID == goalID {
			g.UpdateCount++
			return nil
		}
	}
	return ErrNotFound
}

// --- progress updates ---

type memoryUpdates struct{ s *MemoryStore }

func (m *memoryUpdates) UploadUpdate(_ context.Context, data model.CreateProgressUpdateDTO) (*model.ProgressUpdateDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, p := range m.s.updates {
		if p.UpdateID == data.UpdateID {
			return nil, ErrConflict
		}
	}
	p := &model.ProgressUpdateDTO{
		UpdateID:  data.UpdateID,
		GoalID:    data.GoalID,
		UserID:    data.UserID,
		Content:   data.Content,
		ImageURL:  data.ImageURL,
		Timestamp: m.s.now(),
		LikedBy:   []string{},
	}
	m.s.updates = append(m.s.updates, p)
	c := copyUpdate(p)
	return &c, nil
}

func (m *memoryUpdates) FetchFeedUpdates(_ context.Context, userIDs []string, limit int) ([]model.ProgressUpdateDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	result := []model.ProgressUpdateDTO{}
	for _, p := range m.s.updates {
		if slices.Contains(userIDs, p.UserID) {
			result = append(result, copyUpdate(p))
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *memoryUpdates) FetchUpdatesByGoal(_ context.Context, goalID string) ([]model.ProgressUpdateDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	result := []model.ProgressUpdateDTO{}
	for _, p := range m.s.updates {
		if p.GoalID == goalID {
			result = append(result, copyUpdate(p))
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

func (m *memoryUpdates) GetUpdateByID(_ context.Context, updateID string) (*model.ProgressUpdateDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, p := range m.s.updates {
		if p.UpdateID == updateID {
			c := copyUpdate(p)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUpdates) LikeUpdate(_ context.Context, updateID, userID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, p := range m.s.updates {
		if p.UpdateID != updateID {
			continue
		}
		if slices.Contains(p.LikedBy, userID) {
			p.LikedBy = slices.DeleteFunc(p.LikedBy, func(id string) bool { return id == userID })
			p.Likes--
			return false, nil
		}
		p.LikedBy = append(p.LikedBy, userID)
		p.Likes++
		return true, nil
	}
	return false, ErrNotFound
}

// --- notifications ---

type memoryNotifications struct{ s *MemoryStore }

func (m *memoryNotifications) FetchUserNotifications(_ context.Context, userID string) ([]model.NotificationDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	result := []model.NotificationDTO{}
	for _, n := range m.s.notifications {
		if n.OwnerUserID == userID {
			result = append(result, *n)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return result, nil
}

func (m *memoryNotifications) GetNotificationByID(_ context.Context, notificationID string) (*model.NotificationDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, n := range m.s.notifications {
		if n.ID == notificationID {
			c := *n
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryNotifications) CreateNotification(_ context.Context, data model.CreateNotificationDTO) (*model.NotificationDTO, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	n := &model.NotificationDTO{
		ID:          data.ID,
		Title:       data.Title,
		Message:     data.Message,
		OwnerUserID: data.OwnerUserID,
		ByUserID:    data.ByUserID,
		Type:        string(data.Type),
		Timestamp:   m.s.now(),
	}
	m.s.notifications = append(m.s.notifications, n)
	c := *n
	return &c, nil
}

func (m *memoryNotifications) MarkNotificationAsRead(_ context.Context, notificationID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, n := range m.s.notifications {
		if n.ID == notificationID {
			n.IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryNotifications) DeleteNotification(_ context.Context, notificationID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	n := len(m.s.notifications)
	m.s.notifications = slices.DeleteFunc(m.s.notifications, func(x *model.NotificationDTO) bool { return x.ID == notificationID })
	if len(m.s.notifications) == n {
		return ErrNotFound
	}
	return nil
}

// --- credentials ---

type memoryCredentials struct{ s *MemoryStore }

func (m *memoryCredentials) CreateCredential(_ context.Context, cred *model.Credential) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, c := range m.s.credentials {
		if strings.EqualFold(c.Email, cred.Email) {
			return ErrConflict
		}
	}
	c := *cred
	c.Email = strings.ToLower(c.Email)
	m.s.credentials[c.UserID] = &c
	return nil
}

func (m *memoryCredentials) FindCredentialByEmail(_ context.Context, email string) (*model.Credential, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, c := range m.s.credentials {
		if strings.EqualFold(c.Email, email) {
			cc := *c
			return &cc, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryCredentials) FindCredentialByUserID(_ context.Context, userID string) (*model.Credential, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	c, ok := m.s.credentials[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (m *memoryCredentials) UpdatePasswordHash(_ context.Context, userID, currentHash, newHash string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	c, ok := m.s.credentials[userID]
	if !ok || c.PasswordHash != currentHash {
		return ErrNotFound
	}
	c.PasswordHash = newHash
	c.UpdatedAt = m.s.now()
	return nil
}

// DeleteCredential はPostgreSQLのON DELETE CASCADEに合わせてセッションも削除する。
func (m *memoryCredentials) DeleteCredential(_ context.Context, userID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.credentials[userID]; !ok {
		return ErrNotFound
	}
	delete(m.s.credentials, userID)
	for id, sess := range m.s.sessions {
		if sess.UserID == userID {
			delete(m.s.sessions, id)
		}
	}
	return nil
}

// --- sessions ---

type memorySessions struct{ s *MemoryStore }

func (m *memorySessions) Create(_ context.Context, session *model.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	c := *session
	m.s.sessions[c.ID] = &c
	return nil
}

func (m *memorySessions) FindByID(_ context.Context, id string) (*model.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	sess, ok := m.s.sessions[id]
	if !ok || !sess.ExpiresAt.After(m.s.now()) {
		return nil, ErrNotFound
	}
	c := *sess
	return &c, nil
}

func (m *memorySessions) DeleteByID(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	delete(m.s.sessions, id)
	return nil
}

func (m *memorySessions) DeleteByUserID(_ context.Context, userID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for id, sess := range m.s.sessions {
		if sess.UserID == userID {
			delete(m.s.sessions, id)
		}
	}
	return nil
}

func (m *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var n int64
	now := m.s.now()
	for id, sess := range m.s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(m.s.sessions, id)
			n++
		}
	}
	return n, nil
}
