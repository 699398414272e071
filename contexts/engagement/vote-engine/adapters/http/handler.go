package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"votable/contexts/engagement/vote-engine/application/commands"
	"votable/contexts/engagement/vote-engine/application/queries"
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	httptransport "votable/contexts/engagement/vote-engine/transport/http"
)

type Handler struct {
	Votes   commands.VoteUseCase
	Votees  commands.VoteeUseCase
	Tallies queries.TallyUseCase
	Logger  *slog.Logger
}

func (h Handler) CreateVoteeHandler(
	ctx context.Context,
	kind string,
	req httptransport.CreateVoteeRequest,
) (httptransport.VoteeResponse, error) {
	votee, err := h.Votees.CreateVotee(ctx, commands.CreateVoteeCommand{
		Kind:     kind,
		VoteeID:  req.VoteeID,
		ParentID: req.ParentID,
	})
	if err != nil {
		return httptransport.VoteeResponse{}, err
	}
	registered, err := h.Votees.Kinds.Lookup(kind)
	if err != nil {
		return httptransport.VoteeResponse{}, err
	}
	return httptransport.VoteeResponse{
		Kind:         registered.Name,
		VoteeID:      votee.ID,
		ParentID:     strings.TrimSpace(req.ParentID),
		VotingFields: append([]string(nil), registered.Fields...),
	}, nil
}

// CastVoteHandler routes by mode. voterID is empty for anonymous votes.
func (h Handler) CastVoteHandler(
	ctx context.Context,
	kind string,
	voteeID string,
	voterID string,
	ip string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	cmd := commands.VoteCommand{
		Kind:        kind,
		VoteeID:     voteeID,
		VoterID:     voterID,
		IP:          ip,
		Value:       req.Value,
		VotingField: req.VotingField,
		Previous:    req.Previous,
	}
	var (
		result entities.VoteResult
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(req.Mode)) {
	case "", "vote":
		result, err = h.Votes.Vote(ctx, cmd)
	case "new", "new_vote":
		result, err = h.Votes.NewVote(ctx, cmd)
	case "revote":
		result, err = h.Votes.Revote(ctx, cmd)
	default:
		err = domainerrors.ErrInvalidVoteInput
	}
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVoteResult(kind, voteeID, h.fieldLabel(kind, cmd.VotingField), result), nil
}

func (h Handler) UnvoteHandler(
	ctx context.Context,
	kind string,
	voteeID string,
	voterID string,
	ip string,
	req httptransport.UnvoteRequest,
) (httptransport.VoteResponse, error) {
	cmd := commands.VoteCommand{
		Kind:        kind,
		VoteeID:     voteeID,
		VoterID:     voterID,
		IP:          ip,
		VotingField: req.VotingField,
		Previous:    req.Previous,
	}
	result, err := h.Votes.Unvote(ctx, cmd)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVoteResult(kind, voteeID, h.fieldLabel(kind, cmd.VotingField), result), nil
}

func (h Handler) TallyHandler(ctx context.Context, kind string, voteeID string, field string) (httptransport.TallyResponse, error) {
	tally, err := h.Tallies.Tally(ctx, kind, voteeID, field)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return mapTally(voteeID, h.fieldLabel(kind, field), tally), nil
}

func (h Handler) VoterStatusHandler(
	ctx context.Context,
	kind string,
	voteeID string,
	field string,
	voterID string,
) (httptransport.VoterStatusResponse, error) {
	value, err := h.Tallies.VoteValue(ctx, kind, voteeID, field, voterID)
	if err != nil {
		return httptransport.VoterStatusResponse{}, err
	}
	return httptransport.VoterStatusResponse{
		VoteeID:     strings.TrimSpace(voteeID),
		VotingField: h.fieldLabel(kind, field),
		VoterID:     strings.TrimSpace(voterID),
		Voted:       value != entities.VoteNone,
		Value:       string(value),
	}, nil
}

func (h Handler) VoterVoteesHandler(
	ctx context.Context,
	kind string,
	voterID string,
	field string,
) (httptransport.VoterVoteesResponse, error) {
	votees, err := h.Tallies.Votees(ctx, kind, voterID, field)
	if err != nil {
		return httptransport.VoterVoteesResponse{}, err
	}
	label := h.fieldLabel(kind, field)
	voterID = strings.TrimSpace(voterID)
	items := make([]httptransport.VoterVoteeItem, 0, len(votees))
	for _, votee := range votees {
		items = append(items, httptransport.VoterVoteeItem{
			VoteeID: votee.ID,
			Value:   string(votee.Tally(label).VoteValue(voterID)),
		})
	}
	return httptransport.VoterVoteesResponse{
		VoterID:     voterID,
		Kind:        strings.TrimSpace(kind),
		VotingField: label,
		Votees:      items,
	}, nil
}

func mapVoteResult(kind string, voteeID string, field string, result entities.VoteResult) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		Kind:       strings.TrimSpace(kind),
		VoteeID:    strings.TrimSpace(voteeID),
		Transition: string(result.Transition),
		Outcome:    string(result.Outcome),
		Applied:    result.Applied(),
		From:       string(result.From),
		To:         string(result.To),
		Tally:      mapTally(voteeID, field, result.Tally),
	}
}

func mapTally(voteeID string, field string, tally entities.Tally) httptransport.TallyResponse {
	return httptransport.TallyResponse{
		VoteeID:           strings.TrimSpace(voteeID),
		VotingField:       field,
		UpVoterIDs:        nonNil(tally.UpVoterIDs),
		DownVoterIDs:      nonNil(tally.DownVoterIDs),
		UpCount:           tally.UpCount,
		DownCount:         tally.DownCount,
		FacelessUpCount:   tally.FacelessUpCount,
		FacelessDownCount: tally.FacelessDownCount,
		TotalUpCount:      tally.TotalUpCount,
		TotalDownCount:    tally.TotalDownCount,
		Count:             tally.Count,
		Point:             tally.Point,
		Ratio:             tally.Ratio,
	}
}

// fieldLabel names the voting field a request resolved to.
func (h Handler) fieldLabel(kind string, field string) string {
	if field = strings.TrimSpace(field); field != "" {
		return field
	}
	if registered, err := h.Tallies.Kinds.Lookup(kind); err == nil && len(registered.Fields) > 0 {
		return registered.Fields[0]
	}
	return entities.DefaultVotingField
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
