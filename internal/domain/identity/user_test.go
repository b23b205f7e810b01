package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("valid user is active customer", func(t *testing.T) {
		u, err := NewUser("Driver@Example.COM", "passw0rd1")
		require.NoError(t, err)

		assert.Equal(t, "driver@example.com", u.Email)
		assert.Equal(t, RoleCustomer, u.Role)
		assert.Equal(t, UserStatusActive, u.Status)
		assert.True(t, u.CanLogin())
		assert.NotEqual(t, "passw0rd1", u.PasswordHash)
		assert.Len(t, u.GetDomainEvents(), 1)
	})

	t.Run("admin constructor", func(t *testing.T) {
		u, err := NewAdmin("boss@compucar.dz", "adminpass1")
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "passw0rd1")
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("driver@example.com", "ab1")
		assert.Error(t, err)
	})

	t.Run("rejects password without digits", func(t *testing.T) {
		_, err := NewUser("driver@example.com", "onlyletters")
		assert.Error(t, err)
	})
}

func TestUserPassword(t *testing.T) {
	u, err := NewUser("driver@example.com", "passw0rd1")
	require.NoError(t, err)

	t.Run("verify accepts correct password", func(t *testing.T) {
		assert.True(t, u.VerifyPassword("passw0rd1"))
		assert.False(t, u.VerifyPassword("wrong"))
	})

	t.Run("change requires old password", func(t *testing.T) {
		assert.Error(t, u.ChangePassword("wrong", "newpass99"))
		require.NoError(t, u.ChangePassword("passw0rd1", "newpass99"))
		assert.True(t, u.VerifyPassword("newpass99"))
	})
}

func TestUserLifecycle(t *testing.T) {
	u, err := NewUser("driver@example.com", "passw0rd1")
	require.NoError(t, err)

	require.NoError(t, u.Deactivate())
	assert.False(t, u.CanLogin())
	assert.Error(t, u.Deactivate())

	require.NoError(t, u.Activate())
	assert.True(t, u.CanLogin())
}

func TestLinkTelegram(t *testing.T) {
	u, err := NewUser("driver@example.com", "passw0rd1")
	require.NoError(t, err)

	assert.Error(t, u.LinkTelegram(0))
	require.NoError(t, u.LinkTelegram(123456789))
	assert.Equal(t, int64(123456789), u.TelegramChatID)
}
