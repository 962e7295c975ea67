package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/castvote-dev/castvote/internal/models"
)

// CreateCandidateRequest represents an admin request to add a candidate
type CreateCandidateRequest struct {
	Name     string `json:"name" binding:"required"`
	Party    string `json:"party" binding:"required"`
	Position string `json:"position" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
}

func (s *Server) adminListCandidates(c *gin.Context) {
	tallies, err := models.Tallies(s.db)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list candidates")
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	details := make([]CandidateDetail, len(tallies))
	for i, t := range tallies {
		details[i] = newTallyDetail(t)
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) addCandidate(c *gin.Context) {
	var req CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	candidate := &models.Candidate{
		Name:     req.Name,
		Party:    req.Party,
		Position: req.Position,
		ImageURL: req.ImageURL,
	}
	if err := s.db.Create(candidate).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create candidate")
		errorJSON(c, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("candidate_id", candidate.ID).
		Str("name", candidate.Name).
		Str("created_by", sessionData.UserID).
		Msg("Candidate created")

	c.JSON(http.StatusCreated, newCandidateDetail(candidate))
}

func (s *Server) deleteCandidate(c *gin.Context) {
	candidateID := c.Param("id")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var candidate models.Candidate
		if err := models.FindByID(tx, candidateID, &candidate); err != nil {
			return err
		}
		if err := tx.Where("candidate_id = ?", candidateID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&candidate).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(c, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete candidate")
		errorJSON(c, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("candidate_id", candidateID).
		Str("deleted_by", sessionData.UserID).
		Msg("Candidate deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Candidate removed"})
}
