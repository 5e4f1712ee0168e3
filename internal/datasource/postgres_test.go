package datasource

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hitoshi/bucket/internal/model"
	"github.com/lib/pq"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db, mock
}

var userRowColumns = []string{
	"id", "email", "fullname", "username", "bio", "link", "profile_image_url",
	"followers_count", "following_count", "followers", "following", "is_private_profile",
}

func TestPostgresUserDataSource_GetUserByID(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresUserDataSource(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "a@example.com", "Alice", "alice", "hello", nil, nil, 3, 1, "{u2,u3}", "{u2}", false))

	got, err := ds.GetUserByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Username != "alice" || got.FollowersCount != 3 {
		t.Errorf("GetUserByID() = %+v", got)
	}
	if got.Bio == nil || *got.Bio != "hello" {
		t.Errorf("Bio = %v, want hello", got.Bio)
	}
	if got.Link != nil {
		t.Errorf("Link = %v, want nil", got.Link)
	}
	if len(got.Followers) != 2 || got.Followers[1] != "u3" {
		t.Errorf("Followers = %v, want [u2 u3]", got.Followers)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresUserDataSource_GetUserByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresUserDataSource(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := ds.GetUserByID(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// TestPostgresUserDataSource_GetUserByIDList_PreservesArgumentOrder はDBの返却順に関係なく引数順で返すことを検証する。
func TestPostgresUserDataSource_GetUserByIDList_PreservesArgumentOrder(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresUserDataSource(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("a", "a@example.com", "A", "a", nil, nil, nil, 0, 0, "{}", "{}", false).
			AddRow("c", "c@example.com", "C", "c", nil, nil, nil, 0, 0, "{}", "{}", false))

	got, err := ds.GetUserByIDList(context.Background(), []string{"c", "missing", "a"})
	if err != nil {
		t.Fatalf("GetUserByIDList() error = %v", err)
	}
	if len(got) != 2 || got[0].UserID != "c" || got[1].UserID != "a" {
		t.Errorf("GetUserByIDList() = %+v", got)
	}
}

func TestPostgresUserDataSource_GetUserByIDList_EmptySkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresUserDataSource(db)

	got, err := ds.GetUserByIDList(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("GetUserByIDList(nil) = %v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected query: %v", err)
	}
}

func TestPostgresUserDataSource_CreateUser_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresUserDataSource(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u1", "a@example.com", "Alice", "alice").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	_, err := ds.CreateUser(context.Background(), model.CreateUserDTO{
		UserID: "u1", Email: "a@example.com", Fullname: "Alice", Username: "alice",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

// TestPostgresUserDataSource_FollowUser_Unfollow はフォロー済みの場合にarray_removeで解除することを検証する。
func TestPostgresUserDataSource_FollowUser_Unfollow(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresUserDataSource(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \$1 = ANY\(followers\) FROM users WHERE id = \$2 FOR UPDATE`).
		WithArgs("me", "target").
		WillReturnRows(sqlmock.NewRows([]string{"following"}).AddRow(true))
	mock.ExpectExec(`UPDATE users SET followers = array_remove\(followers, \$1\) WHERE id = \$2`).
		WithArgs("me", "target").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET following = array_remove\(following, \$1\) WHERE id = \$2`).
		WithArgs("target", "me").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	following, err := ds.FollowUser(context.Background(), "me", "target")
	if err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}
	if following {
		t.Error("FollowUser() = true, want false after unfollow")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresUserDataSource_FollowUser_TargetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresUserDataSource(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \$1 = ANY\(followers\)`).
		WithArgs("me", "ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := ds.FollowUser(context.Background(), "me", "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostgresUserDataSource_SearchUsers_EscapesPattern(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresUserDataSource(db)

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE lower\(username\) LIKE \$1`).
		WithArgs(`a\_b%`, 20).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	got, err := ds.SearchUsers(context.Background(), "A_b", 20)
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SearchUsers() = %v, want empty", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGoalDataSource_IncrementUpdateCount_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresGoalDataSource(db)

	mock.ExpectExec(`UPDATE goals SET update_count = update_count \+ 1 WHERE id = \$1`).
		WithArgs("g1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := ds.IncrementUpdateCount(context.Background(), "g1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostgresGoalDataSource_FetchUserGoals(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresGoalDataSource(db)
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM goals\s+WHERE user_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "description", "category", "created_at", "update_count"}).
			AddRow("g2", "u1", "Read 12 books", nil, "reading", created.Add(time.Hour), 0).
			AddRow("g1", "u1", "Run a marathon", "42km", nil, created, 5))

	got, err := ds.FetchUserGoals(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FetchUserGoals() error = %v", err)
	}
	if len(got) != 2 || got[0].GoalID != "g2" || got[1].UpdateCount != 5 {
		t.Errorf("FetchUserGoals() = %+v", got)
	}
	if got[0].Category == nil || *got[0].Category != "reading" || got[0].Description != nil {
		t.Errorf("nullable columns not mapped: %+v", got[0])
	}
}

func TestPostgresProgressUpdateDataSource_FetchFeedUpdates(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresProgressUpdateDataSource(db)
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM progress_updates\s+WHERE user_id = ANY\(\$1\)\s+ORDER BY "timestamp" DESC\s+LIMIT \$2`).
		WithArgs(sqlmock.AnyArg(), 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "goal_id", "user_id", "content", "image_url", "timestamp", "liked_by", "likes"}).
			AddRow("p2", "g1", "u2", "day 2", nil, ts.Add(time.Hour), "{u1}", 1).
			AddRow("p1", "g1", "u2", "day 1", "https://img.example.com/1.png", ts, "{}", 0))

	got, err := ds.FetchFeedUpdates(context.Background(), []string{"u1", "u2"}, 50)
	if err != nil {
		t.Fatalf("FetchFeedUpdates() error = %v", err)
	}
	if len(got) != 2 || got[0].UpdateID != "p2" || got[0].Likes != 1 || got[0].LikedBy[0] != "u1" {
		t.Errorf("FetchFeedUpdates() = %+v", got)
	}
	if got[1].ImageURL == nil {
		t.Error("ImageURL should be set for p1")
	}
}

func TestPostgresProgressUpdateDataSource_LikeUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresProgressUpdateDataSource(db)

	mock.ExpectQuery(`UPDATE progress_updates`).
		WithArgs("p1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"liked"}).AddRow(true))

	liked, err := ds.LikeUpdate(context.Background(), "p1", "u1")
	if err != nil || !liked {
		t.Errorf("LikeUpdate() = %v, %v; want true, nil", liked, err)
	}

	mock.ExpectQuery(`UPDATE progress_updates`).
		WithArgs("missing", "u1").
		WillReturnError(sql.ErrNoRows)

	if _, err := ds.LikeUpdate(context.Background(), "missing", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostgresNotificationDataSource_MarkNotificationAsRead(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresNotificationDataSource(db)

	mock.ExpectExec(`UPDATE notifications SET is_read = true WHERE id = \$1`).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ds.MarkNotificationAsRead(context.Background(), "n1"); err != nil {
		t.Errorf("MarkNotificationAsRead() error = %v", err)
	}
}

func TestPostgresSessionDataSource_FindByID_Expired(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresSessionDataSource(db)

	mock.ExpectQuery(`SELECT id, user_id, expires_at, created_at\s+FROM sessions\s+WHERE id = \$1 AND expires_at > now\(\)`).
		WithArgs("s1").
		WillReturnError(sql.ErrNoRows)

	if _, err := ds.FindByID(context.Background(), "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostgresCredentialDataSource_FindCredentialByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresCredentialDataSource(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT user_id, email, password_hash, created_at, updated_at\s+FROM credentials`).
		WithArgs("Alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("u1", "alice@example.com", "$2a$10$hash", now, now))

	got, err := ds.FindCredentialByEmail(context.Background(), "Alice@example.com")
	if err != nil {
		t.Fatalf("FindCredentialByEmail() error = %v", err)
	}
	if got.UserID != "u1" || got.PasswordHash != "$2a$10$hash" {
		t.Errorf("FindCredentialByEmail() = %+v", got)
	}
}

func TestPostgresCredentialDataSource_UpdatePasswordHash_StaleHash(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresCredentialDataSource(db)

	mock.ExpectExec(`UPDATE credentials SET password_hash = \$3, updated_at = now\(\)\s+WHERE user_id = \$1 AND password_hash = \$2`).
		WithArgs("u1", "old-hash", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := ds.UpdatePasswordHash(context.Background(), "u1", "old-hash", "new-hash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostgresCredentialDataSource_DeleteCredential(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewPostgresCredentialDataSource(db)

	mock.ExpectExec(`DELETE FROM credentials WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ds.DeleteCredential(context.Background(), "u1"); err != nil {
		t.Errorf("DeleteCredential() error = %v", err)
	}
}
