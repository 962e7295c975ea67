package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestBaseModel_GeneratesULID(t *testing.T) {
	db := openTestDB(t)

	user := &User{Email: "a@x.io", PasswordHash: "h", Name: "Ana"}
	require.NoError(t, db.Create(user).Error)
	assert.Len(t, user.ID, 26)

	candidate := &Candidate{BaseModel: BaseModel{ID: "1"}, Name: "Jane Smith", Party: "P", Position: "President"}
	require.NoError(t, db.Create(candidate).Error)
	assert.Equal(t, "1", candidate.ID)
}

func TestVote_OnePerVoter(t *testing.T) {
	db := openTestDB(t)

	user := &User{Email: "a@x.io", PasswordHash: "h"}
	require.NoError(t, db.Create(user).Error)
	c := &Candidate{Name: "Jane Smith", Party: "P", Position: "President"}
	require.NoError(t, db.Create(c).Error)

	require.NoError(t, db.Create(&Vote{VoterID: user.ID, CandidateID: c.ID}).Error)
	assert.Error(t, db.Create(&Vote{VoterID: user.ID, CandidateID: c.ID}).Error)
}

func TestTallies(t *testing.T) {
	db := openTestDB(t)

	jane := &Candidate{Name: "Jane Smith", Party: "P", Position: "President", InitialVotes: 2}
	john := &Candidate{Name: "John Doe", Party: "C", Position: "President"}
	require.NoError(t, db.Create(jane).Error)
	require.NoError(t, db.Create(john).Error)

	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		u := &User{Email: email, PasswordHash: "h"}
		require.NoError(t, db.Create(u).Error)
		require.NoError(t, db.Create(&Vote{VoterID: u.ID, CandidateID: john.ID}).Error)
	}

	tallies, err := Tallies(db)
	require.NoError(t, err)
	require.Len(t, tallies, 2)

	assert.Equal(t, "John Doe", tallies[0].Name)
	assert.Equal(t, 3, tallies[0].VoteCount)
	assert.Equal(t, "Jane Smith", tallies[1].Name)
	assert.Equal(t, 2, tallies[1].VoteCount)
}

func TestUser_Roles(t *testing.T) {
	assert.Equal(t, []string{"USER"}, (&User{}).Roles())
	assert.Equal(t, []string{"USER", "ADMIN"}, (&User{IsAdmin: true}).Roles())
}
