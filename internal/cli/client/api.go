package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ID is an opaque identifier. Backends send it either as a JSON string or a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	ID    ID       `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Token string   `json:"token"`
	Roles []string `json:"roles,omitempty"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Candidate represents an electable entity
type Candidate struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Party     string `json:"party"`
	Position  string `json:"position"`
	ImageURL  string `json:"imageUrl"`
	VoteCount int    `json:"voteCount,omitempty"`
}

// NewCandidate is the admin form for adding a candidate
type NewCandidate struct {
	Name     string `json:"name" validate:"required"`
	Party    string `json:"party" validate:"required"`
	Position string `json:"position" validate:"required"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

// CastVoteRequest represents the vote request body
type CastVoteRequest struct {
	VoterID     ID `json:"voterId"`
	CandidateID ID `json:"candidateId"`
}

// Vote represents a recorded vote
type Vote struct {
	ID          ID     `json:"id"`
	VoterID     ID     `json:"voterId"`
	CandidateID ID     `json:"candidateId"`
	Timestamp   string `json:"timestamp"`
}

// VoteStatus tells whether a voter has already voted
type VoteStatus struct {
	HasVoted    bool `json:"hasVoted"`
	CandidateID ID   `json:"candidateId,omitempty"`
}

// Ack is a generic acknowledgement body
type Ack struct {
	Message string `json:"message,omitempty"`
}

// Login authenticates the user and returns a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResponse, error) {
	var resp RegisterResponse
	req := RegisterRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCandidates returns all candidates
func (c *Client) ListCandidates(ctx context.Context) ([]Candidate, error) {
	var candidates []Candidate
	if err := c.do(ctx, http.MethodGet, "/candidates", nil, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// GetCandidate returns one candidate by ID
func (c *Client) GetCandidate(ctx context.Context, id ID) (*Candidate, error) {
	var candidate Candidate
	if err := c.do(ctx, http.MethodGet, "/candidates/"+url.PathEscape(id.String()), nil, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// CastVote records a vote for a candidate
func (c *Client) CastVote(ctx context.Context, voterID, candidateID ID) (*Vote, error) {
	var vote Vote
	req := CastVoteRequest{VoterID: voterID, CandidateID: candidateID}
	if err := c.do(ctx, http.MethodPost, "/votes", req, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

// Results returns all candidates with their vote counts
func (c *Client) Results(ctx context.Context) ([]Candidate, error) {
	var results []Candidate
	if err := c.do(ctx, http.MethodGet, "/votes/results", nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// VoteStatus reports whether voterID has voted
func (c *Client) VoteStatus(ctx context.Context, voterID ID) (*VoteStatus, error) {
	var status VoteStatus
	if err := c.do(ctx, http.MethodGet, "/votes/voter/"+url.PathEscape(voterID.String()), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AdminListCandidates returns all candidates through the admin surface
func (c *Client) AdminListCandidates(ctx context.Context) ([]Candidate, error) {
	var candidates []Candidate
	if err := c.do(ctx, http.MethodGet, "/admin/candidates", nil, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// AddCandidate creates a candidate
func (c *Client) AddCandidate(ctx context.Context, candidate NewCandidate) (*Candidate, error) {
	var created Candidate
	if err := c.do(ctx, http.MethodPost, "/admin/candidates", candidate, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteCandidate removes a candidate by ID
func (c *Client) DeleteCandidate(ctx context.Context, id ID) (*Ack, error) {
	var ack Ack
	if err := c.do(ctx, http.MethodDelete, "/admin/candidates/"+url.PathEscape(id.String()), nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
