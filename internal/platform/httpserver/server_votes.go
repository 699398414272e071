package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"votable/contexts/engagement/vote-engine/domain/entities"
	voteerrors "votable/contexts/engagement/vote-engine/domain/errors"
	votehttp "votable/contexts/engagement/vote-engine/transport/http"
)

func writeVoteError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votehttp.ErrorResponse{Code: code, Message: message})
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrInvalidVoteInput):
		writeVoteError(w, http.StatusBadRequest, "invalid_vote", err.Error())
	case errors.Is(err, voteerrors.ErrUnknownVotingField):
		writeVoteError(w, http.StatusBadRequest, "unknown_voting_field", err.Error())
	case errors.Is(err, voteerrors.ErrUnknownVoteeKind):
		writeVoteError(w, http.StatusNotFound, "unknown_votee_kind", err.Error())
	case errors.Is(err, voteerrors.ErrVoteeNotFound),
		errors.Is(err, voteerrors.ErrParentNotFound):
		writeVoteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, voteerrors.ErrVoteeExists):
		writeVoteError(w, http.StatusConflict, "votee_exists", err.Error())
	default:
		writeVoteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// voteStatus maps a resolved vote to its HTTP status. Duplicates and no-ops
// are successful requests that changed nothing; stale state is a conflict.
func voteStatus(resp votehttp.VoteResponse) int {
	if resp.Outcome == string(entities.OutcomeStale) {
		return http.StatusConflict
	}
	return http.StatusOK
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// resolveVoter returns the identified voter id, or "" plus the client ip for
// anonymous votes. Identified votes are not ip-restricted.
func resolveVoter(r *http.Request, anonymous bool) (string, string) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if anonymous || userID == "" {
		return "", resolveClientIP(r)
	}
	return userID, ""
}

func (s *Server) handleCreateVotee(w http.ResponseWriter, r *http.Request) {
	var req votehttp.CreateVoteeRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeVoteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.votes.Handler.CreateVoteeHandler(r.Context(), r.PathValue("kind"), req)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req votehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVoteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		writeVoteError(w, http.StatusBadRequest, "invalid_vote", "value is required")
		return
	}

	voterID, ip := resolveVoter(r, req.Anonymous)
	resp, err := s.votes.Handler.CastVoteHandler(
		r.Context(),
		r.PathValue("kind"),
		r.PathValue("votee_id"),
		voterID,
		ip,
		req,
	)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, voteStatus(resp), resp)
}

func (s *Server) handleUnvote(w http.ResponseWriter, r *http.Request) {
	var req votehttp.UnvoteRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeVoteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	query := r.URL.Query()
	if req.VotingField == "" {
		req.VotingField = query.Get("voting_field")
	}
	if req.Previous == "" {
		req.Previous = query.Get("previous")
	}

	voterID, ip := resolveVoter(r, req.Anonymous)
	resp, err := s.votes.Handler.UnvoteHandler(
		r.Context(),
		r.PathValue("kind"),
		r.PathValue("votee_id"),
		voterID,
		ip,
		req,
	)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, voteStatus(resp), resp)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.TallyHandler(
		r.Context(),
		r.PathValue("kind"),
		r.PathValue("votee_id"),
		r.URL.Query().Get("voting_field"),
	)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVoterStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.VoterStatusHandler(
		r.Context(),
		r.PathValue("kind"),
		r.PathValue("votee_id"),
		r.URL.Query().Get("voting_field"),
		r.PathValue("voter_id"),
	)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVoterVotees(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.VoterVoteesHandler(
		r.Context(),
		r.PathValue("kind"),
		r.PathValue("voter_id"),
		r.URL.Query().Get("voting_field"),
	)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
