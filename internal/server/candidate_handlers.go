package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/castvote-dev/castvote/internal/models"
)

// CandidateDetail is the candidate shape returned to clients
type CandidateDetail struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Party     string `json:"party"`
	Position  string `json:"position"`
	ImageURL  string `json:"imageUrl"`
	VoteCount *int   `json:"voteCount,omitempty"`
}

func newCandidateDetail(c *models.Candidate) CandidateDetail {
	return CandidateDetail{
		ID:       c.ID,
		Name:     c.Name,
		Party:    c.Party,
		Position: c.Position,
		ImageURL: c.ImageURL,
	}
}

func newTallyDetail(t models.CandidateTally) CandidateDetail {
	count := t.VoteCount
	return CandidateDetail{
		ID:        t.ID,
		Name:      t.Name,
		Party:     t.Party,
		Position:  t.Position,
		ImageURL:  t.ImageURL,
		VoteCount: &count,
	}
}

func (s *Server) findCandidates() ([]CandidateDetail, error) {
	var candidates []models.Candidate
	if err := s.db.Order("created_at ASC, id ASC").Find(&candidates).Error; err != nil {
		return nil, err
	}

	details := make([]CandidateDetail, len(candidates))
	for i := range candidates {
		details[i] = newCandidateDetail(&candidates[i])
	}
	return details, nil
}

func (s *Server) listCandidates(c *gin.Context) {
	details, err := s.findCandidates()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list candidates")
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) getCandidate(c *gin.Context) {
	var candidate models.Candidate
	if err := models.FindByID(s.db, c.Param("id"), &candidate); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(c, http.StatusNotFound, "Candidate not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find candidate")
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, newCandidateDetail(&candidate))
}
