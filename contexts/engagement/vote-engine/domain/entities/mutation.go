package entities

type ClauseOp string

const (
	ClauseNotContains ClauseOp = "not_contains"
	ClauseContains    ClauseOp = "contains"
	ClauseEquals      ClauseOp = "equals"
)

// ValueKind tells store adapters how to encode a clause or edit value.
type ValueKind string

const (
	ValueVoter  ValueKind = "voter"
	ValueIP     ValueKind = "ip"
	ValueNumber ValueKind = "number"
)

// Clause is one sub-condition of a predicate. For array paths Contains and
// NotContains test membership; Equals compares a numeric field.
type Clause struct {
	Path   string
	Op     ClauseOp
	Kind   ValueKind
	Value  string
	Number int64
}

// Condition is the precondition of a conditional mutation. A non-empty
// Relation scopes VoteeID and every clause to the single element of the
// parent's Relation array whose _id equals VoteeID.
type Condition struct {
	VoteeID  string
	Relation string
	Clauses  []Clause
}

func (c Condition) Embedded() bool {
	return c.Relation != ""
}

type Counter struct {
	Path  string
	Delta int64
}

type ArrayEdit struct {
	Path  string
	Value string
}

// Mutation is applied as one atomic unit. The optional array clauses are nil
// when the transition has nothing to append or remove.
type Mutation struct {
	Counters   []Counter
	PointPath  string
	PointDelta float64
	RatioPath  string
	Ratio      float64

	PushVoter *ArrayEdit
	PushIP    *ArrayEdit
	PullVoter *ArrayEdit
	PullIP    *ArrayEdit

	// PushOptionIP and PullOptionIP maintain the per-option log of
	// anonymous votes.
	PushOptionIP *ArrayEdit
	PullOptionIP *ArrayEdit
}

func (m Mutation) Pushes() []ArrayEdit {
	return collectEdits(m.PushVoter, m.PushIP, m.PushOptionIP)
}

func (m Mutation) Pulls() []ArrayEdit {
	return collectEdits(m.PullVoter, m.PullIP, m.PullOptionIP)
}

// Selector matches every document where at least one clause holds. A
// non-empty Relation evaluates the clauses against the relation's elements.
type Selector struct {
	Relation string
	AnyOf    []Clause
}

func (s Selector) Embedded() bool {
	return s.Relation != ""
}

func collectEdits(edits ...*ArrayEdit) []ArrayEdit {
	items := make([]ArrayEdit, 0, len(edits))
	for _, edit := range edits {
		if edit != nil {
			items = append(items, *edit)
		}
	}
	return items
}
