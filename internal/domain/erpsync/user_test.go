package erpsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_ApplyERPIdentity(t *testing.T) {
	t.Run("first application changes the user", func(t *testing.T) {
		u := &User{}
		assert.True(t, u.ApplyERPIdentity("ERP-77", "active"))
		assert.Equal(t, "ERP-77", u.ERPID)
		assert.Equal(t, "active", u.Status)
	})

	t.Run("same values are a no-op", func(t *testing.T) {
		u := &User{ERPID: "ERP-77", Status: "active"}
		assert.False(t, u.ApplyERPIdentity("ERP-77", "active"))
	})

	t.Run("empty status leaves the current one", func(t *testing.T) {
		u := &User{ERPID: "ERP-77", Status: "active"}
		assert.False(t, u.ApplyERPIdentity("ERP-77", ""))
		assert.Equal(t, "active", u.Status)
	})

	t.Run("new erp id updates", func(t *testing.T) {
		u := &User{ERPID: "ERP-77", Status: "active"}
		assert.True(t, u.ApplyERPIdentity("ERP-78", ""))
		assert.Equal(t, "ERP-78", u.ERPID)
	})
}
