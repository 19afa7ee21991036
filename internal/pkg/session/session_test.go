package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youth-club/core/internal/models"
	jwtpkg "github.com/youth-club/core/internal/pkg/jwt"
	"github.com/youth-club/core/internal/testutil"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	return testutil.NewSQLite(t, &models.UserSession{})
}

func TestIssueBindsTokenToSession(t *testing.T) {
	db := newDB(t)

	token, s, err := Issue(db, "user-1", " 127.0.0.1 ", "test-agent", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", s.IP)

	claims, err := jwtpkg.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, claims.SessionID)

	active, err := IsActive(db, "user-1", s.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestRevoke(t *testing.T) {
	db := newDB(t)
	_, s, err := Issue(db, "user-1", "", "", time.Hour)
	require.NoError(t, err)

	require.NoError(t, Revoke(db, "user-1", s.ID))
	active, err := IsActive(db, "user-1", s.ID)
	require.NoError(t, err)
	assert.False(t, active)

	assert.ErrorIs(t, Revoke(db, "user-1", s.ID), gorm.ErrRecordNotFound)
}

func TestIsActiveRejectsOtherUserAndMissingID(t *testing.T) {
	db := newDB(t)
	_, s, err := Issue(db, "user-1", "", "", time.Hour)
	require.NoError(t, err)

	active, err := IsActive(db, "user-2", s.ID)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = IsActive(db, "user-1", "")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestPurgeDropsDeadSessionsOnly(t *testing.T) {
	db := newDB(t)
	_, live, err := Issue(db, "user-1", "", "", time.Hour)
	require.NoError(t, err)
	_, expired, err := Issue(db, "user-1", "", "", time.Hour)
	require.NoError(t, err)
	_, revoked, err := Issue(db, "user-2", "", "", time.Hour)
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(expired).Update("expires_at", past).Error)
	require.NoError(t, db.Model(revoked).Update("revoked_at", &past).Error)

	n, err := Purge(db, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	var left []models.UserSession
	require.NoError(t, db.Unscoped().Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, live.ID, left[0].ID)
}
