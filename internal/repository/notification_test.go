package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/technix/fittrack/internal/model"
)

func TestNotificationScoping(t *testing.T) {
	database := newTestDB(t)
	users := NewUserRepository(database)
	repo := NewNotificationRepository(database)

	alice := newTestUser("alice@x.com")
	bob := newTestUser("bob@x.com")
	require.NoError(t, users.Create(alice))
	require.NoError(t, users.Create(bob))

	require.NoError(t, repo.Create(&model.Notification{
		UserID: alice.ID, Title: "A", Message: "m", Type: model.NotificationTypeLogin,
	}))
	require.NoError(t, repo.Create(&model.Notification{
		UserID: bob.ID, Title: "B", Message: "m", Type: model.NotificationTypeSignup,
	}))

	mine, err := repo.ByUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "A", mine[0].Title)

	all, err := repo.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestNotificationMarkReadScope(t *testing.T) {
	database := newTestDB(t)
	users := NewUserRepository(database)
	repo := NewNotificationRepository(database)

	alice := newTestUser("alice@x.com")
	bob := newTestUser("bob@x.com")
	require.NoError(t, users.Create(alice))
	require.NoError(t, users.Create(bob))

	n := &model.Notification{UserID: alice.ID, Title: "A", Message: "m", Type: model.NotificationTypeLogin}
	require.NoError(t, repo.Create(n))

	// Bob cannot touch Alice's notification without admin scope.
	_, err := repo.MarkRead(n.ID, bob.ID, false)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	marked, err := repo.MarkRead(n.ID, bob.ID, true)
	require.NoError(t, err)
	require.True(t, marked.Read)

	cleared, err := repo.ClearRead(alice.ID, false)
	require.NoError(t, err)
	require.EqualValues(t, 1, cleared)
}
