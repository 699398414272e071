package queries

import (
	"context"
	"errors"
	"testing"

	"votable/contexts/engagement/vote-engine/adapters/memory"
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/domain/services"
)

func TestTallyAndVoterStatus(t *testing.T) {
	ctx := context.Background()
	registry, err := services.NewRegistry(services.Kind{Name: "posts", Collection: "posts", Fields: []string{"votes", "helpful"}})
	if err != nil {
		t.Fatalf("registry failed: %v", err)
	}
	store := memory.NewStore()
	doc := entities.NewVoteeDocument("post-1", "votes", "helpful")
	tally := doc["votes"].(map[string]any)
	tally["up"] = []any{"user-1"}
	tally["up_count"] = int64(1)
	tally["total_up_count"] = int64(1)
	tally["count"] = int64(1)
	if err := store.InsertOne(ctx, "posts", doc); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	uc := TallyUseCase{Kinds: registry, Store: store}

	got, err := uc.Tally(ctx, "posts", "post-1", "")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if got.Count != 1 || got.UpCount != 1 {
		t.Fatalf("expected default field tally, got %+v", got)
	}

	value, err := uc.VoteValue(ctx, "posts", "post-1", "", "user-1")
	if err != nil {
		t.Fatalf("vote value failed: %v", err)
	}
	if value != entities.VoteUp {
		t.Fatalf("expected up, got %q", value)
	}

	voted, err := uc.Voted(ctx, "posts", "post-1", "helpful", "user-1")
	if err != nil {
		t.Fatalf("voted failed: %v", err)
	}
	if voted {
		t.Fatalf("expected no vote on the helpful field")
	}

	if _, err := uc.Tally(ctx, "posts", "post-2", ""); !errors.Is(err, domainerrors.ErrVoteeNotFound) {
		t.Fatalf("expected votee not found, got %v", err)
	}
	if _, err := uc.Tally(ctx, "posts", "post-1", "stars"); !errors.Is(err, domainerrors.ErrUnknownVotingField) {
		t.Fatalf("expected unknown voting field, got %v", err)
	}
}

func TestVoteesListsVotedVoteesInStoreOrder(t *testing.T) {
	ctx := context.Background()
	registry, err := services.NewRegistry(
		services.Kind{Name: "posts", Collection: "posts", Fields: []string{"votes"}},
		services.Kind{Name: "comments", Collection: "posts", Fields: []string{"votes"}, Topology: services.Embedded{Relation: "comments"}},
	)
	if err != nil {
		t.Fatalf("registry failed: %v", err)
	}
	store := memory.NewStore()
	for _, id := range []string{"post-3", "post-1", "post-2"} {
		doc := entities.NewVoteeDocument(id)
		tally := doc["votes"].(map[string]any)
		switch id {
		case "post-3":
			tally["down"] = []any{"user-1"}
		case "post-1":
			tally["up"] = []any{"user-1"}
		default:
			tally["up"] = []any{"user-2"}
		}
		if err := store.InsertOne(ctx, "posts", doc); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}
	voted := entities.NewVoteeDocument("comment-1")
	voted["votes"].(map[string]any)["up"] = []any{"user-1"}
	for _, element := range []entities.Document{entities.NewVoteeDocument("comment-0"), voted} {
		if _, err := store.PushElement(ctx, "posts", "post-2", "comments", element); err != nil {
			t.Fatalf("push element failed: %v", err)
		}
	}
	uc := TallyUseCase{Kinds: registry, Store: store}

	votees, err := uc.Votees(ctx, "posts", "user-1", "")
	if err != nil {
		t.Fatalf("votees failed: %v", err)
	}
	if len(votees) != 2 || votees[0].ID != "post-3" || votees[1].ID != "post-1" {
		t.Fatalf("expected post-3 then post-1, got %+v", votees)
	}
	if votees[0].Tally("votes").VoteValue("user-1") != entities.VoteDown {
		t.Fatalf("expected down vote on post-3")
	}

	comments, err := uc.Votees(ctx, "comments", "user-1", "votes")
	if err != nil {
		t.Fatalf("comment votees failed: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != "comment-1" {
		t.Fatalf("expected only comment-1, got %+v", comments)
	}

	none, err := uc.Votees(ctx, "posts", "user-9", "")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no votees, got %+v err=%v", none, err)
	}
	if _, err := uc.Votees(ctx, "posts", " ", ""); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected invalid vote input, got %v", err)
	}
}
