package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/model"
)

// --- モック定義 ---

type staticViewer string

func (v staticViewer) GetCurrentUserID(context.Context) (string, error) {
	return string(v), nil
}

type mockUserDataSource struct {
	datasource.UserDataSource
	getUserByIDFn func(ctx context.Context, id string) (*model.UserDTO, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *mockUserDataSource) GetUserByID(ctx context.Context, id string) (*model.UserDTO, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[id]++
	m.mu.Unlock()
	return m.getUserByIDFn(ctx, id)
}

func (m *mockUserDataSource) callCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[id]
}

type mockGoalDataSource struct {
	datasource.GoalDataSource
	fetchUserGoalsFn       func(ctx context.Context, userID string) ([]model.GoalDTO, error)
	incrementUpdateCountFn func(ctx context.Context, goalID string) error
}

func (m *mockGoalDataSource) FetchUserGoals(ctx context.Context, userID string) ([]model.GoalDTO, error) {
	return m.fetchUserGoalsFn(ctx, userID)
}

func (m *mockGoalDataSource) IncrementUpdateCount(ctx context.Context, goalID string) error {
	return m.incrementUpdateCountFn(ctx, goalID)
}

type mockProgressUpdateDataSource struct {
	datasource.ProgressUpdateDataSource
	uploadUpdateFn       func(ctx context.Context, data model.CreateProgressUpdateDTO) (*model.ProgressUpdateDTO, error)
	fetchUpdatesByGoalFn func(ctx context.Context, goalID string) ([]model.ProgressUpdateDTO, error)
}

func (m *mockProgressUpdateDataSource) UploadUpdate(ctx context.Context, data model.CreateProgressUpdateDTO) (*model.ProgressUpdateDTO, error) {
	return m.uploadUpdateFn(ctx, data)
}

func (m *mockProgressUpdateDataSource) FetchUpdatesByGoal(ctx context.Context, goalID string) ([]model.ProgressUpdateDTO, error) {
	return m.fetchUpdatesByGoalFn(ctx, goalID)
}

type recordingJoinRecorder struct {
	mu      sync.Mutex
	success int
	failure int
	skipped map[string]int
}

func (r *recordingJoinRecorder) RecordUserFetch(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		r.success++
	} else {
		r.failure++
	}
}

func (r *recordingJoinRecorder) RecordSkippedRecord(domain string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skipped == nil {
		r.skipped = make(map[string]int)
	}
	r.skipped[domain]++
}

// --- compile-time interface checks ---
var _ CurrentUserProvider = staticViewer("")
var _ datasource.UserDataSource = (*mockUserDataSource)(nil)
var _ datasource.GoalDataSource = (*mockGoalDataSource)(nil)
var _ datasource.ProgressUpdateDataSource = (*mockProgressUpdateDataSource)(nil)
var _ JoinRecorder = (*recordingJoinRecorder)(nil)

// --- ヘルパー ---

func userDTO(id string) *model.UserDTO {
	return &model.UserDTO{
		UserID:    id,
		Username:  id,
		Fullname:  "User " + id,
		Followers: []string{},
		Following: []string{},
	}
}

// newMemoryStore は呼び出しごとに1秒進む時計を持つMemoryStoreを返す。
func newMemoryStore(t *testing.T, userIDs ...string) *datasource.MemoryStore {
	t.Helper()
	store := datasource.NewMemoryStore()
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	})
	for _, id := range userIDs {
		if _, err := store.Users().CreateUser(context.Background(), model.CreateUserDTO{
			UserID:   id,
			Email:    id + "@example.com",
			Fullname: "User " + id,
			Username: id,
		}); err != nil {
			t.Fatalf("CreateUser(%s) error = %v", id, err)
		}
	}
	return store
}
