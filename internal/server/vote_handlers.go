package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/castvote-dev/castvote/internal/models"
)

// CastVoteRequest represents a vote submission
type CastVoteRequest struct {
	VoterID     string `json:"voterId" binding:"required"`
	CandidateID string `json:"candidateId" binding:"required"`
}

// VoteDetail is a recorded vote
type VoteDetail struct {
	ID          string `json:"id"`
	VoterID     string `json:"voterId"`
	CandidateID string `json:"candidateId"`
	Timestamp   string `json:"timestamp"`
}

// VoteStatusResponse tells whether a voter has voted
type VoteStatusResponse struct {
	HasVoted    bool   `json:"hasVoted"`
	CandidateID string `json:"candidateId,omitempty"`
}

var errAlreadyVoted = errors.New("already voted")

func (s *Server) castVote(c *gin.Context) {
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	sessionData, _ := GetSessionData(c)
	if req.VoterID != sessionData.UserID {
		errorJSON(c, http.StatusForbidden, "You can only vote for yourself")
		return
	}

	vote := &models.Vote{VoterID: req.VoterID, CandidateID: req.CandidateID}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var candidate models.Candidate
		if err := models.FindByID(tx, req.CandidateID, &candidate); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Vote{}).Where("voter_id = ?", req.VoterID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyVoted
		}

		return tx.Create(vote).Error
	})
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		errorJSON(c, http.StatusNotFound, "Candidate not found")
		return
	case errors.Is(err, errAlreadyVoted):
		errorJSON(c, http.StatusBadRequest, "You have already cast your vote")
		return
	default:
		s.logger.Error().Err(err).Msg("Failed to record vote")
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info().Str("voter_id", vote.VoterID).Str("candidate_id", vote.CandidateID).Msg("Vote recorded")

	c.JSON(http.StatusCreated, VoteDetail{
		ID:          vote.ID,
		VoterID:     vote.VoterID,
		CandidateID: vote.CandidateID,
		Timestamp:   vote.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) getResults(c *gin.Context) {
	tallies, err := models.Tallies(s.db)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute results")
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	details := make([]CandidateDetail, len(tallies))
	for i, t := range tallies {
		details[i] = newTallyDetail(t)
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) getVoteStatus(c *gin.Context) {
	voterID := c.Param("voterId")

	sessionData, _ := GetSessionData(c)
	if voterID != sessionData.UserID && !sessionData.IsAdmin {
		errorJSON(c, http.StatusForbidden, "You can only view your own vote")
		return
	}

	var vote models.Vote
	err := s.db.Where("voter_id = ?", voterID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, VoteStatusResponse{HasVoted: false})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load vote")
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, VoteStatusResponse{HasVoted: true, CandidateID: vote.CandidateID})
}
