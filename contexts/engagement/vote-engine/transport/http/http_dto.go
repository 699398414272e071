package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateVoteeRequest struct {
	VoteeID  string `json:"votee_id,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

type VoteeResponse struct {
	Kind         string   `json:"kind"`
	VoteeID      string   `json:"votee_id"`
	ParentID     string   `json:"parent_id,omitempty"`
	VotingFields []string `json:"voting_fields"`
}

// CastVoteRequest drives POST .../votes. Mode selects the transition:
// "vote" (default) picks it from the current state, "new" and "revote" force
// one. Previous is only read for anonymous revotes.
type CastVoteRequest struct {
	Value       string `json:"value"`
	Mode        string `json:"mode,omitempty"`
	VotingField string `json:"voting_field,omitempty"`
	Previous    string `json:"previous,omitempty"`
	Anonymous   bool   `json:"anonymous,omitempty"`
}

type UnvoteRequest struct {
	VotingField string `json:"voting_field,omitempty"`
	Previous    string `json:"previous,omitempty"`
	Anonymous   bool   `json:"anonymous,omitempty"`
}

type TallyResponse struct {
	VoteeID           string   `json:"votee_id"`
	VotingField       string   `json:"voting_field"`
	UpVoterIDs        []string `json:"up"`
	DownVoterIDs      []string `json:"down"`
	UpCount           int64    `json:"up_count"`
	DownCount         int64    `json:"down_count"`
	FacelessUpCount   int64    `json:"faceless_up_count"`
	FacelessDownCount int64    `json:"faceless_down_count"`
	TotalUpCount      int64    `json:"total_up_count"`
	TotalDownCount    int64    `json:"total_down_count"`
	Count             int64    `json:"count"`
	Point             float64  `json:"point"`
	Ratio             float64  `json:"ratio"`
}

type VoteResponse struct {
	Kind       string        `json:"kind"`
	VoteeID    string        `json:"votee_id"`
	Transition string        `json:"transition"`
	Outcome    string        `json:"outcome"`
	Applied    bool          `json:"applied"`
	From       string        `json:"from,omitempty"`
	To         string        `json:"to,omitempty"`
	Tally      TallyResponse `json:"tally"`
}

type VoterStatusResponse struct {
	VoteeID     string `json:"votee_id"`
	VotingField string `json:"voting_field"`
	VoterID     string `json:"voter_id"`
	Voted       bool   `json:"voted"`
	Value       string `json:"value,omitempty"`
}

type VoterVoteeItem struct {
	VoteeID string `json:"votee_id"`
	Value   string `json:"value"`
}

type VoterVoteesResponse struct {
	VoterID     string           `json:"voter_id"`
	Kind        string           `json:"kind"`
	VotingField string           `json:"voting_field"`
	Votees      []VoterVoteeItem `json:"votees"`
}
