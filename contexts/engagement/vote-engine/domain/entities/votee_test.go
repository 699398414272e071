package entities

import (
	"encoding/json"
	"errors"
	"testing"

	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
)

func TestParseVoteValue(t *testing.T) {
	cases := map[string]VoteValue{
		"up":       VoteUp,
		" Upvote ": VoteUp,
		"+1":       VoteUp,
		"down":     VoteDown,
		"-1":       VoteDown,
		"":         VoteNone,
	}
	for raw, want := range cases {
		got, err := ParseVoteValue(raw)
		if err != nil {
			t.Fatalf("parse %q failed: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", raw, want, got)
		}
	}
	if _, err := ParseVoteValue("sideways"); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestVoteRequestValidate(t *testing.T) {
	req := VoteRequest{VoteeID: "post-1", Value: VoteUp}
	if err := req.Validate(true); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if err := (VoteRequest{VoteeID: "post-1"}).Validate(true); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected missing value to fail, got %v", err)
	}
	if err := (VoteRequest{VoteeID: "post-1"}).Validate(false); err != nil {
		t.Fatalf("expected unvote without value to pass, got %v", err)
	}
	if err := (VoteRequest{Value: VoteUp}).Validate(true); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected missing votee id to fail, got %v", err)
	}
	if err := (VoteRequest{VoteeID: "post-1", Value: VoteUp, VotingField: "$where"}).Validate(true); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected operator field to fail, got %v", err)
	}
}

func TestDecodeTallyReadsMixedEncodings(t *testing.T) {
	doc := Document{
		"_id": "post-1",
		"reactions": map[string]any{
			"likes": map[string]any{
				"up":             []any{"user-1", "user-2"},
				"down":           []string{"user-3"},
				"ip":             []any{"10.0.0.1", "10.0.0.2"},
				"ip_down":        []any{"10.0.0.1"},
				"up_count":       int32(2),
				"down_count":     float64(1),
				"total_up_count": json.Number("3"),
				"count":          int64(3),
				"point":          json.Number("1.5"),
				"ratio":          0.75,
			},
		},
	}
	tally := DecodeTally(doc, "reactions.likes")
	if tally.UpCount != 2 || tally.DownCount != 1 || tally.TotalUpCount != 3 || tally.Count != 3 {
		t.Fatalf("unexpected counters %+v", tally)
	}
	if tally.Point != 1.5 || tally.Ratio != 0.75 {
		t.Fatalf("unexpected point/ratio %+v", tally)
	}
	if tally.VoteValue("user-3") != VoteDown || tally.VoteValue("user-9") != VoteNone {
		t.Fatalf("unexpected voter lookup on %+v", tally)
	}
	if !tally.HasIP("10.0.0.1") || tally.HasIP("") {
		t.Fatalf("unexpected ip lookup on %+v", tally)
	}
	if tally.FacelessValue("10.0.0.1") != VoteDown {
		t.Fatalf("expected ip logged under down, got %q", tally.FacelessValue("10.0.0.1"))
	}
	if tally.FacelessValue("10.0.0.2") != VoteNone {
		t.Fatalf("expected ip without an option entry to report none")
	}
}

func TestNewVoteeDocumentZeroesEveryField(t *testing.T) {
	doc := NewVoteeDocument("post-1", "votes", "reactions.likes")
	votee, err := NewVotee(doc)
	if err != nil {
		t.Fatalf("new votee failed: %v", err)
	}
	if votee.VoteeID() != "post-1" {
		t.Fatalf("expected post-1, got %s", votee.VoteeID())
	}
	if votee.VotesCount("reactions.likes") != 0 || votee.TotalUpCount("votes") != 0 {
		t.Fatalf("expected zeroed tallies")
	}
	if _, err := NewVotee(Document{}); err == nil {
		t.Fatalf("expected error for document without id")
	}
}
