package server

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/castvote-dev/castvote/internal/auth"
	"github.com/castvote-dev/castvote/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedData is the YAML document describing initial candidates and users
type SeedData struct {
	Candidates []SeedCandidate `yaml:"candidates"`
	Users      []SeedUser      `yaml:"users"`
}

// SeedCandidate is a candidate entry in the seed file
type SeedCandidate struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Party    string `yaml:"party"`
	Position string `yaml:"position"`
	ImageURL string `yaml:"imageUrl"`
	Votes    int    `yaml:"votes"`
}

// SeedUser is a user entry in the seed file
type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Admin    bool   `yaml:"admin"`
}

// ParseSeed decodes a seed document
func ParseSeed(data []byte) (*SeedData, error) {
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}

	for i, c := range seed.Candidates {
		if c.Name == "" || c.Party == "" || c.Position == "" {
			return nil, fmt.Errorf("seed candidate %d: name, party and position are required", i+1)
		}
	}
	for i, u := range seed.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed user %d: email and password are required", i+1)
		}
	}

	return &seed, nil
}

func (s *Server) loadSeed() (*SeedData, error) {
	data := defaultSeed
	if s.config.SeedFile != "" {
		var err error
		data, err = os.ReadFile(s.config.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}
	return ParseSeed(data)
}

// seed fills an empty database and makes sure the configured admin exists
func (s *Server) seed() error {
	seed, err := s.loadSeed()
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Candidate{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count candidates: %w", err)
		}
		if count == 0 {
			for _, c := range seed.Candidates {
				candidate := &models.Candidate{
					BaseModel:    models.BaseModel{ID: c.ID},
					Name:         c.Name,
					Party:        c.Party,
					Position:     c.Position,
					ImageURL:     c.ImageURL,
					InitialVotes: c.Votes,
				}
				if err := tx.Create(candidate).Error; err != nil {
					return fmt.Errorf("failed to seed candidate %q: %w", c.Name, err)
				}
			}
			s.logger.Info().Int("count", len(seed.Candidates)).Msg("Seeded candidates")
		}

		users := seed.Users
		if s.config.AdminEmail != "" && s.config.AdminPassword != "" {
			users = append([]SeedUser{{
				Name:     "Administrator",
				Email:    s.config.AdminEmail,
				Password: s.config.AdminPassword,
				Admin:    true,
			}}, users...)
		}

		for _, u := range users {
			if err := ensureUser(tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureUser(tx *gorm.DB, u SeedUser) error {
	email := strings.ToLower(u.Email)

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user %q: %w", email, err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password for %q: %w", email, err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         u.Name,
		IsAdmin:      u.Admin,
	}
	if err := tx.Create(user).Error; err != nil {
		return fmt.Errorf("failed to seed user %q: %w", email, err)
	}
	return nil
}
