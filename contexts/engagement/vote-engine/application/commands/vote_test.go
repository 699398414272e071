package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"votable/contexts/engagement/vote-engine/adapters/memory"
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/domain/services"
)

type fixture struct {
	votes  VoteUseCase
	votees VoteeUseCase
	store  *memory.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	registry, err := services.NewRegistry(
		services.Kind{Name: "posts", Collection: "posts"},
		services.Kind{Name: "comments", Collection: "posts", Topology: services.Embedded{Relation: "comments"}},
		services.Kind{Name: "answers", Collection: "answers", Weights: entities.Weights{Up: 10, Down: -2}, Fields: []string{"votes", "helpful"}},
	)
	if err != nil {
		t.Fatalf("registry failed: %v", err)
	}
	store := memory.NewStore()
	return fixture{
		votes:  VoteUseCase{Kinds: registry, Store: store, Ratios: store},
		votees: VoteeUseCase{Kinds: registry, Store: store, IDGen: store},
		store:  store,
	}
}

func (f fixture) createVotee(t *testing.T, kind string, voteeID string, parentID string) {
	t.Helper()
	if _, err := f.votees.CreateVotee(context.Background(), CreateVoteeCommand{Kind: kind, VoteeID: voteeID, ParentID: parentID}); err != nil {
		t.Fatalf("create votee failed: %v", err)
	}
}

func (f fixture) vote(t *testing.T, voteeID string, voterID string, value string) entities.VoteResult {
	t.Helper()
	result, err := f.votes.Vote(context.Background(), VoteCommand{Kind: "posts", VoteeID: voteeID, VoterID: voterID, Value: value})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	return result
}

func assertTally(t *testing.T, tally entities.Tally, count int64, point float64, ratio float64) {
	t.Helper()
	if tally.Count != count {
		t.Fatalf("expected count %d, got %d", count, tally.Count)
	}
	if math.Abs(tally.Point-point) > 1e-9 {
		t.Fatalf("expected point %f, got %f", point, tally.Point)
	}
	if math.Abs(tally.Ratio-ratio) > 1e-9 {
		t.Fatalf("expected ratio %f, got %f", ratio, tally.Ratio)
	}
}

func TestVoteLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	f.createVotee(t, "posts", "post-2", "")

	result := f.vote(t, "post-1", "voter-a", "up")
	if result.Transition != entities.TransitionNew || !result.Applied() {
		t.Fatalf("expected applied new vote, got %+v", result)
	}
	assertTally(t, result.Tally, 1, 1, 1.0)

	result = f.vote(t, "post-1", "voter-b", "down")
	assertTally(t, result.Tally, 2, 0, 0.5)

	result = f.vote(t, "post-1", "voter-a", "down")
	if result.Transition != entities.TransitionRevote || result.From != entities.VoteUp {
		t.Fatalf("expected revote from up, got %+v", result)
	}
	assertTally(t, result.Tally, 2, -2, 0.0)

	result = f.vote(t, "post-2", "voter-a", "down")
	assertTally(t, result.Tally, 1, -1, 0.0)

	result = f.vote(t, "post-2", "voter-a", "up")
	assertTally(t, result.Tally, 1, 1, 1.0)
}

func TestDuplicateNewVoteIsRejected(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	ctx := context.Background()
	cmd := VoteCommand{Kind: "posts", VoteeID: "post-1", VoterID: "voter-a", Value: "up"}

	if _, err := f.votes.NewVote(ctx, cmd); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	second, err := f.votes.NewVote(ctx, cmd)
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if second.Outcome != entities.OutcomeDuplicate || second.Applied() {
		t.Fatalf("expected duplicate rejection, got %+v", second)
	}
	cmd.Value = "down"
	opposite, err := f.votes.NewVote(ctx, cmd)
	if err != nil {
		t.Fatalf("opposite vote failed: %v", err)
	}
	if opposite.Outcome != entities.OutcomeDuplicate {
		t.Fatalf("expected new vote on the other option to be a duplicate, got %+v", opposite)
	}
	assertTally(t, opposite.Tally, 1, 1, 1.0)
}

func TestRepeatedSameValueIsNoop(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	f.vote(t, "post-1", "voter-a", "up")

	result := f.vote(t, "post-1", "voter-a", "up")
	if result.Outcome != entities.OutcomeNoop || result.Transition != entities.TransitionNoop {
		t.Fatalf("expected noop, got %+v", result)
	}
	assertTally(t, result.Tally, 1, 1, 1.0)
}

func TestUnvoteThenStaleUnvote(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	f.vote(t, "post-1", "voter-a", "down")
	ctx := context.Background()
	cmd := VoteCommand{Kind: "posts", VoteeID: "post-1", VoterID: "voter-a"}

	first, err := f.votes.Unvote(ctx, cmd)
	if err != nil {
		t.Fatalf("unvote failed: %v", err)
	}
	if !first.Applied() || first.From != entities.VoteDown {
		t.Fatalf("expected applied unvote from down, got %+v", first)
	}
	assertTally(t, first.Tally, 0, 0, 0)
	if first.Tally.TotalDownCount != 0 || len(first.Tally.DownVoterIDs) != 0 {
		t.Fatalf("expected vote fully removed, got %+v", first.Tally)
	}

	second, err := f.votes.Unvote(ctx, cmd)
	if err != nil {
		t.Fatalf("second unvote failed: %v", err)
	}
	if second.Outcome != entities.OutcomeStale {
		t.Fatalf("expected stale rejection, got %+v", second)
	}
}

func TestRevoteWithoutVoteIsStale(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	result, err := f.votes.Revote(context.Background(), VoteCommand{Kind: "posts", VoteeID: "post-1", VoterID: "voter-a", Value: "up"})
	if err != nil {
		t.Fatalf("revote failed: %v", err)
	}
	if result.Outcome != entities.OutcomeStale {
		t.Fatalf("expected stale rejection, got %+v", result)
	}
}

func TestFacelessVotesCountTowardTotalsOnly(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	ctx := context.Background()
	anon := VoteCommand{Kind: "posts", VoteeID: "post-1", IP: "10.0.0.1", Value: "up"}

	result, err := f.votes.Vote(ctx, anon)
	if err != nil {
		t.Fatalf("anonymous vote failed: %v", err)
	}
	if !result.Applied() {
		t.Fatalf("expected anonymous vote applied, got %+v", result)
	}
	tally := result.Tally
	if tally.Count != 0 || tally.FacelessUpCount != 1 || tally.TotalUpCount != 1 || tally.Point != 1 {
		t.Fatalf("unexpected faceless tally %+v", tally)
	}
	if !tally.HasIP("10.0.0.1") {
		t.Fatalf("expected ip to be logged")
	}

	again, err := f.votes.Vote(ctx, anon)
	if err != nil {
		t.Fatalf("repeat anonymous vote failed: %v", err)
	}
	if again.Outcome != entities.OutcomeNoop {
		t.Fatalf("expected noop for logged ip, got %+v", again)
	}
	duplicate, err := f.votes.NewVote(ctx, anon)
	if err != nil {
		t.Fatalf("repeat anonymous new vote failed: %v", err)
	}
	if duplicate.Outcome != entities.OutcomeDuplicate {
		t.Fatalf("expected duplicate for logged ip, got %+v", duplicate)
	}

	flip := anon
	flip.Value = "down"
	revoted, err := f.votes.Vote(ctx, flip)
	if err != nil {
		t.Fatalf("anonymous revote failed: %v", err)
	}
	if revoted.Transition != entities.TransitionRevote || !revoted.Applied() {
		t.Fatalf("expected applied anonymous revote, got %+v", revoted)
	}
	if revoted.Tally.FacelessDownCount != 1 || revoted.Tally.FacelessUpCount != 0 || revoted.Tally.Point != -1 {
		t.Fatalf("unexpected tally after anonymous revote %+v", revoted.Tally)
	}

	removed, err := f.votes.Unvote(ctx, VoteCommand{Kind: "posts", VoteeID: "post-1", IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("anonymous unvote failed: %v", err)
	}
	if !removed.Applied() || removed.Tally.TotalCount() != 0 || removed.Tally.HasIP("10.0.0.1") {
		t.Fatalf("expected anonymous vote removed, got %+v", removed)
	}
}

func TestEmbeddedVotee(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	f.createVotee(t, "comments", "c-1", "post-1")
	f.createVotee(t, "comments", "c-2", "post-1")
	ctx := context.Background()

	result, err := f.votes.Vote(ctx, VoteCommand{Kind: "comments", VoteeID: "c-2", VoterID: "voter-a", Value: "up"})
	if err != nil {
		t.Fatalf("embedded vote failed: %v", err)
	}
	assertTally(t, result.Tally, 1, 1, 1.0)

	dup, err := f.votes.NewVote(ctx, VoteCommand{Kind: "comments", VoteeID: "c-2", VoterID: "voter-a", Value: "up"})
	if err != nil {
		t.Fatalf("embedded duplicate failed: %v", err)
	}
	if dup.Outcome != entities.OutcomeDuplicate {
		t.Fatalf("expected duplicate, got %+v", dup)
	}

	other, err := f.votes.Vote(ctx, VoteCommand{Kind: "comments", VoteeID: "c-1", VoterID: "voter-a", Value: "down"})
	if err != nil {
		t.Fatalf("vote on sibling failed: %v", err)
	}
	assertTally(t, other.Tally, 1, -1, 0)

	parent := f.vote(t, "post-1", "voter-a", "up")
	assertTally(t, parent.Tally, 1, 1, 1.0)
}

func TestWeightsAndVotingFields(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "answers", "a-1", "")
	ctx := context.Background()

	result, err := f.votes.Vote(ctx, VoteCommand{Kind: "answers", VoteeID: "a-1", VoterID: "voter-a", Value: "up"})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if result.Tally.Point != 10 {
		t.Fatalf("expected weighted point 10, got %f", result.Tally.Point)
	}
	revoted, err := f.votes.Vote(ctx, VoteCommand{Kind: "answers", VoteeID: "a-1", VoterID: "voter-a", Value: "down"})
	if err != nil {
		t.Fatalf("revote failed: %v", err)
	}
	if revoted.Tally.Point != -2 {
		t.Fatalf("expected weighted point -2, got %f", revoted.Tally.Point)
	}

	helpful, err := f.votes.Vote(ctx, VoteCommand{Kind: "answers", VoteeID: "a-1", VoterID: "voter-a", Value: "up", VotingField: "helpful"})
	if err != nil {
		t.Fatalf("vote on second field failed: %v", err)
	}
	if helpful.Transition != entities.TransitionNew || helpful.Tally.Count != 1 {
		t.Fatalf("expected independent field, got %+v", helpful)
	}

	if _, err := f.votes.Vote(ctx, VoteCommand{Kind: "answers", VoteeID: "a-1", VoterID: "voter-a", Value: "up", VotingField: "stars"}); !errors.Is(err, domainerrors.ErrUnknownVotingField) {
		t.Fatalf("expected unknown voting field, got %v", err)
	}
}

func TestVoteErrors(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	ctx := context.Background()

	if _, err := f.votes.Vote(ctx, VoteCommand{Kind: "posts", VoteeID: "post-1", VoterID: "voter-a", Value: "maybe"}); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.votes.Vote(ctx, VoteCommand{Kind: "videos", VoteeID: "post-1", VoterID: "voter-a", Value: "up"}); !errors.Is(err, domainerrors.ErrUnknownVoteeKind) {
		t.Fatalf("expected unknown kind, got %v", err)
	}
	if _, err := f.votes.Vote(ctx, VoteCommand{Kind: "posts", VoteeID: "post-9", VoterID: "voter-a", Value: "up"}); !errors.Is(err, domainerrors.ErrVoteeNotFound) {
		t.Fatalf("expected votee not found, got %v", err)
	}
}

func TestConcurrentNewVotesCountOnce(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[entities.Outcome]int{}
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.votes.NewVote(ctx, VoteCommand{Kind: "posts", VoteeID: "post-1", VoterID: "voter-a", Value: "up"})
			if err != nil {
				t.Errorf("vote failed: %v", err)
				return
			}
			mu.Lock()
			outcomes[result.Outcome]++
			mu.Unlock()
		}()
	}
	for i := 0; i < 16; i++ {
		voterID := fmt.Sprintf("voter-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.votes.NewVote(ctx, VoteCommand{Kind: "posts", VoteeID: "post-1", VoterID: voterID, Value: "down"}); err != nil {
				t.Errorf("vote failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if outcomes[entities.OutcomeApplied] != 1 || outcomes[entities.OutcomeDuplicate] != 31 {
		t.Fatalf("expected 1 applied and 31 duplicates, got %v", outcomes)
	}
	doc, _, _ := f.store.FindOne(ctx, "posts", entities.Condition{VoteeID: "post-1"})
	tally := entities.DecodeTally(doc, "votes")
	if tally.Count != 17 || tally.UpCount != 1 || tally.DownCount != 16 || tally.Point != -15 {
		t.Fatalf("unexpected tally after concurrent votes %+v", tally)
	}
}

func TestAppliedVotesScheduleRatioRefresh(t *testing.T) {
	f := newFixture(t)
	f.createVotee(t, "posts", "post-1", "")
	f.vote(t, "post-1", "voter-a", "up")
	f.vote(t, "post-1", "voter-b", "up")
	f.vote(t, "post-1", "voter-b", "up")

	targets, err := f.store.Dequeue(context.Background(), 10)
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	if len(targets) != 1 || targets[0].VoteeID != "post-1" || targets[0].VotingField != "votes" {
		t.Fatalf("expected one deduplicated refresh target, got %+v", targets)
	}
}
