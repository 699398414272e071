package services

import (
	"testing"

	"votable/contexts/engagement/vote-engine/domain/entities"
)

func TestTopLevelPaths(t *testing.T) {
	paths := TopLevel{}.UpdatePaths("votes")
	if got := paths.VoterIDs(entities.VoteUp); got != "votes.up" {
		t.Fatalf("expected votes.up, got %s", got)
	}
	if got := paths.OptionCount(entities.VoteDown, true); got != "votes.faceless_down_count" {
		t.Fatalf("expected votes.faceless_down_count, got %s", got)
	}
	if got := paths.TotalOptionCount(entities.VoteUp); got != "votes.total_up_count" {
		t.Fatalf("expected votes.total_up_count, got %s", got)
	}
}

func TestEmbeddedPathsUsePositionalPrefixForUpdatesOnly(t *testing.T) {
	topology := Embedded{Relation: "comments"}
	if got := topology.UpdatePaths("votes").Point(); got != "comments.$.votes.point" {
		t.Fatalf("expected comments.$.votes.point, got %s", got)
	}
	if got := topology.QueryPaths("votes").IPLog(); got != "votes.ip" {
		t.Fatalf("expected element-relative votes.ip, got %s", got)
	}
	cond := topology.Condition("c-1")
	if !cond.Embedded() || cond.Relation != "comments" || cond.VoteeID != "c-1" {
		t.Fatalf("unexpected embedded condition %+v", cond)
	}
}

func TestEmbeddedLocate(t *testing.T) {
	doc := entities.Document{
		"_id": "post-1",
		"comments": []any{
			map[string]any{"_id": "c-1"},
			map[string]any{"_id": "c-2", "marker": true},
		},
	}
	element, ok := Embedded{Relation: "comments"}.Locate(doc, "c-2")
	if !ok {
		t.Fatalf("expected element c-2 to be located")
	}
	if element["marker"] != true {
		t.Fatalf("expected the c-2 element, got %+v", element)
	}
	if _, ok := (Embedded{Relation: "comments"}).Locate(doc, "missing"); ok {
		t.Fatalf("expected missing element to be unresolved")
	}
}

func TestOptionIPLogPaths(t *testing.T) {
	if got := (TopLevel{}).UpdatePaths("votes").OptionIPLog(entities.VoteDown); got != "votes.ip_down" {
		t.Fatalf("expected votes.ip_down, got %s", got)
	}
	if got := (Embedded{Relation: "comments"}).UpdatePaths("votes").OptionIPLog(entities.VoteUp); got != "comments.$.votes.ip_up" {
		t.Fatalf("expected comments.$.votes.ip_up, got %s", got)
	}
}

func TestElements(t *testing.T) {
	doc := entities.Document{
		"_id":      "post-1",
		"comments": []any{map[string]any{"_id": "c-1"}, "garbage", entities.Document{"_id": "c-2"}},
	}
	if got := (TopLevel{}).Elements(doc); len(got) != 1 || got[0]["_id"] != "post-1" {
		t.Fatalf("expected the document itself, got %v", got)
	}
	got := Embedded{Relation: "comments"}.Elements(doc)
	if len(got) != 2 || got[0]["_id"] != "c-1" || got[1]["_id"] != "c-2" {
		t.Fatalf("expected c-1 and c-2, got %v", got)
	}
	if got := (TopLevel{}).Elements(nil); got != nil {
		t.Fatalf("expected no elements for nil, got %v", got)
	}
}

func TestVotedBySelector(t *testing.T) {
	sel := VotedBySelector(Embedded{Relation: "comments"}, "votes", "user-1")
	if sel.Relation != "comments" || len(sel.AnyOf) != 2 {
		t.Fatalf("unexpected selector %+v", sel)
	}
	if sel.AnyOf[0].Path != "votes.up" || sel.AnyOf[1].Path != "votes.down" || sel.AnyOf[1].Value != "user-1" {
		t.Fatalf("expected element-relative voter clauses, got %+v", sel.AnyOf)
	}
	if VotedBySelector(TopLevel{}, "votes", "user-1").Embedded() {
		t.Fatalf("expected top-level selector")
	}
}
