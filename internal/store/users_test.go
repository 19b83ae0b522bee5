package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUpdateUserPartial(t *testing.T) {
	s, mock := newMock(t)

	about := "trip hop producer"
	joined := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE users
		SET about = COALESCE($2, about),
		    avatar = COALESCE($3, avatar)
		WHERE id = $1
		RETURNING id, username, about, avatar, is_active, date_joined
	`)).
		WithArgs(int64(9), about, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "about", "avatar", "is_active", "date_joined"}).
			AddRow(int64(9), "morcheeba", about, "media/img/avatars/01052024/old.jpg", true, joined))

	user, err := s.UpdateUser(context.Background(), 9, UserUpdate{About: &about})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if user.About != about {
		t.Fatalf("about = %q, want %q", user.About, about)
	}
	if user.Avatar != "media/img/avatars/01052024/old.jpg" {
		t.Fatalf("avatar = %q, want unchanged", user.Avatar)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	s, mock := newMock(t)

	about := "bio"
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(int64(404), about, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "about", "avatar", "is_active", "date_joined"}))

	if _, err := s.UpdateUser(context.Background(), 404, UserUpdate{About: &about}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
