package mongoadapter

import (
	"context"
	"testing"

	"votable/contexts/engagement/vote-engine/domain/entities"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func field(doc bson.D, key string) (any, bool) {
	for _, elem := range doc {
		if elem.Key == key {
			return elem.Value, true
		}
	}
	return nil, false
}

func TestFilterTopLevel(t *testing.T) {
	filter := Codec{}.Filter(entities.Condition{VoteeID: "post-1", Clauses: []entities.Clause{
		{Path: "votes.up", Op: entities.ClauseNotContains, Kind: entities.ValueVoter, Value: "user-1"},
		{Path: "votes.ip", Op: entities.ClauseContains, Kind: entities.ValueIP, Value: "10.0.0.1"},
		{Path: "votes.total_up_count", Op: entities.ClauseEquals, Kind: entities.ValueNumber, Number: 3},
	}})
	if id, _ := field(filter, "_id"); id != "post-1" {
		t.Fatalf("expected _id post-1, got %v", id)
	}
	ne, ok := field(filter, "votes.up")
	if !ok {
		t.Fatalf("expected votes.up clause in %v", filter)
	}
	if inner, _ := field(ne.(bson.D), "$ne"); inner != "user-1" {
		t.Fatalf("expected $ne user-1, got %v", ne)
	}
	if ip, _ := field(filter, "votes.ip"); ip != "10.0.0.1" {
		t.Fatalf("expected ip membership, got %v", ip)
	}
	if total, _ := field(filter, "votes.total_up_count"); total != int64(3) {
		t.Fatalf("expected total equality 3, got %v", total)
	}
}

func TestFilterRepeatedPathUsesAnd(t *testing.T) {
	filter := Codec{}.Filter(entities.Condition{VoteeID: "post-1", Clauses: []entities.Clause{
		{Path: "votes.up", Op: entities.ClauseContains, Kind: entities.ValueVoter, Value: "user-1"},
		{Path: "votes.up", Op: entities.ClauseNotContains, Kind: entities.ValueVoter, Value: "user-2"},
	}})
	and, ok := field(filter, "$and")
	if !ok || len(and.(bson.A)) != 1 {
		t.Fatalf("expected second clause under $and, got %v", filter)
	}
}

func TestFilterEmbeddedUsesElemMatch(t *testing.T) {
	filter := Codec{}.Filter(entities.Condition{VoteeID: "c-1", Relation: "comments", Clauses: []entities.Clause{
		{Path: "votes.up", Op: entities.ClauseNotContains, Kind: entities.ValueVoter, Value: "user-1"},
	}})
	if len(filter) != 1 || filter[0].Key != "comments" {
		t.Fatalf("expected a single comments key, got %v", filter)
	}
	elemMatch, ok := field(filter[0].Value.(bson.D), "$elemMatch")
	if !ok {
		t.Fatalf("expected $elemMatch, got %v", filter[0].Value)
	}
	element := elemMatch.(bson.D)
	if id, _ := field(element, "_id"); id != "c-1" {
		t.Fatalf("expected element _id c-1, got %v", id)
	}
	if _, ok := field(element, "votes.up"); !ok {
		t.Fatalf("expected element-relative clause, got %v", element)
	}
}

func TestUpdateRendersOperators(t *testing.T) {
	update := Codec{}.Update(entities.Mutation{
		Counters:   []entities.Counter{{Path: "votes.up_count", Delta: 1}, {Path: "votes.count", Delta: 1}},
		PointPath:  "votes.point",
		PointDelta: 1,
		RatioPath:  "votes.ratio",
		Ratio:      0.5,
		PushVoter:  &entities.ArrayEdit{Path: "votes.up", Value: "user-1"},
		PullVoter:  &entities.ArrayEdit{Path: "votes.down", Value: "user-1"},
	})
	inc, ok := field(update, "$inc")
	if !ok || len(inc.(bson.D)) != 3 {
		t.Fatalf("expected three $inc entries, got %v", inc)
	}
	if point, _ := field(inc.(bson.D), "votes.point"); point != float64(1) {
		t.Fatalf("expected point increment 1, got %v", point)
	}
	set, _ := field(update, "$set")
	if ratio, _ := field(set.(bson.D), "votes.ratio"); ratio != 0.5 {
		t.Fatalf("expected ratio set to 0.5, got %v", ratio)
	}
	push, _ := field(update, "$push")
	if voter, _ := field(push.(bson.D), "votes.up"); voter != "user-1" {
		t.Fatalf("expected push user-1, got %v", voter)
	}
	pull, _ := field(update, "$pull")
	if voter, _ := field(pull.(bson.D), "votes.down"); voter != "user-1" {
		t.Fatalf("expected pull user-1, got %v", voter)
	}
}

func TestUpdateRendersOptionIPLogs(t *testing.T) {
	update := Codec{}.Update(entities.Mutation{
		PushIP:       &entities.ArrayEdit{Path: "votes.ip", Value: "10.0.0.1"},
		PullOptionIP: &entities.ArrayEdit{Path: "votes.ip_up", Value: "10.0.0.1"},
		PushOptionIP: &entities.ArrayEdit{Path: "votes.ip_down", Value: "10.0.0.1"},
	})
	push, _ := field(update, "$push")
	if len(push.(bson.D)) != 2 {
		t.Fatalf("expected ip and option ip pushes, got %v", push)
	}
	if ip, _ := field(push.(bson.D), "votes.ip_down"); ip != "10.0.0.1" {
		t.Fatalf("expected push to votes.ip_down, got %v", push)
	}
	pull, _ := field(update, "$pull")
	if ip, _ := field(pull.(bson.D), "votes.ip_up"); ip != "10.0.0.1" {
		t.Fatalf("expected pull from votes.ip_up, got %v", pull)
	}
}

func TestSelectorRendersOr(t *testing.T) {
	codec := Codec{ObjectIDs: true}
	oid := primitive.NewObjectID()
	sel := entities.Selector{AnyOf: []entities.Clause{
		{Path: "votes.up", Op: entities.ClauseContains, Kind: entities.ValueVoter, Value: oid.Hex()},
		{Path: "votes.down", Op: entities.ClauseContains, Kind: entities.ValueVoter, Value: oid.Hex()},
	}}
	top := codec.Selector(sel)
	or, ok := field(top, "$or")
	if !ok || len(or.(bson.A)) != 2 {
		t.Fatalf("expected two $or branches, got %v", top)
	}
	if voter, _ := field(or.(bson.A)[1].(bson.D), "votes.down"); voter != oid {
		t.Fatalf("expected ObjectID voter in votes.down branch, got %v", voter)
	}

	sel.Relation = "comments"
	embedded := codec.Selector(sel)
	if len(embedded) != 1 || embedded[0].Key != "comments" {
		t.Fatalf("expected relation-scoped selector, got %v", embedded)
	}
	elem, _ := field(embedded[0].Value.(bson.D), "$elemMatch")
	if _, ok := field(elem.(bson.D), "$or"); !ok {
		t.Fatalf("expected $or inside $elemMatch, got %v", elem)
	}
}

func TestObjectIDGenerator(t *testing.T) {
	id, err := ObjectIDGenerator{}.NewID(context.Background())
	if err != nil {
		t.Fatalf("new id failed: %v", err)
	}
	if !primitive.IsValidObjectID(id) {
		t.Fatalf("expected a hex ObjectID, got %q", id)
	}
}

func TestUpdateOmitsEmptyOperators(t *testing.T) {
	update := Codec{}.Update(entities.Mutation{RatioPath: "votes.ratio", Ratio: 1})
	if len(update) != 1 || update[0].Key != "$set" {
		t.Fatalf("expected only $set, got %v", update)
	}
}

func TestObjectIDCodec(t *testing.T) {
	codec := Codec{ObjectIDs: true}
	oid := primitive.NewObjectID()

	filter := codec.Filter(entities.Condition{VoteeID: oid.Hex(), Clauses: []entities.Clause{
		{Path: "votes.ip", Op: entities.ClauseNotContains, Kind: entities.ValueIP, Value: "10.0.0.1"},
	}})
	if id, _ := field(filter, "_id"); id != oid {
		t.Fatalf("expected ObjectID _id, got %T", id)
	}
	if ne, _ := field(filter, "votes.ip"); ne.(bson.D)[0].Value != "10.0.0.1" {
		t.Fatalf("expected ip to stay a string, got %v", ne)
	}
	if id, _ := field(codec.Filter(entities.Condition{VoteeID: "slug-id"}), "_id"); id != "slug-id" {
		t.Fatalf("expected non-hex id to stay a string, got %v", id)
	}

	encoded := codec.Encode(entities.NewVoteeDocument(oid.Hex()))
	if encoded["_id"] != oid {
		t.Fatalf("expected encoded ObjectID, got %T", encoded["_id"])
	}
	decoded := codec.Decode(bson.M{
		"_id": oid,
		"votes": bson.M{
			"up":    bson.A{oid},
			"count": int32(2),
		},
	})
	if decoded["_id"] != oid.Hex() {
		t.Fatalf("expected hex id, got %v", decoded["_id"])
	}
	tally := entities.DecodeTally(decoded, "votes")
	if tally.Count != 2 || tally.VoteValue(oid.Hex()) != entities.VoteUp {
		t.Fatalf("unexpected decoded tally %+v", tally)
	}
}
