package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config is the singleton row holding server-generated settings
type Config struct {
	BaseModel
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // 64 hex chars, generated on first start
}

// User represents a voter or administrator account
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Roles returns the role names reported to clients
func (u *User) Roles() []string {
	if u.IsAdmin {
		return []string{"USER", "ADMIN"}
	}
	return []string{"USER"}
}

// Candidate is an electable entity
type Candidate struct {
	BaseModel
	Name     string `json:"name" gorm:"not null"`
	Party    string `json:"party" gorm:"not null"`
	Position string `json:"position" gorm:"not null"`
	ImageURL string `json:"imageUrl"`
	// Votes carried over from seed data, added to recorded votes in results
	InitialVotes int `json:"-" gorm:"not null;default:0"`
}

// Vote is one voter's choice. A voter can vote once.
type Vote struct {
	BaseModel
	VoterID     string `json:"voterId" gorm:"not null;uniqueIndex"`
	CandidateID string `json:"candidateId" gorm:"not null;index"`

	Candidate *Candidate `json:"-" gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE"`
	Voter     *User      `json:"-" gorm:"foreignKey:VoterID;references:ID;constraint:OnDelete:CASCADE"`
}

// CandidateTally is a candidate with its current vote count
type CandidateTally struct {
	ID        string
	Name      string
	Party     string
	Position  string
	ImageURL  string
	VoteCount int
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &Config{}, &Candidate{}, &Vote{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// Tallies returns every candidate with its vote count, highest first
func Tallies(db *gorm.DB) ([]CandidateTally, error) {
	var rows []CandidateTally
	err := db.Table("candidates").
		Select("candidates.id, candidates.name, candidates.party, candidates.position, candidates.image_url, " +
			"candidates.initial_votes + COUNT(votes.id) AS vote_count").
		Joins("LEFT JOIN votes ON votes.candidate_id = candidates.id").
		Group("candidates.id").
		Order("vote_count DESC, candidates.created_at ASC").
		Scan(&rows).Error
	return rows, err
}
