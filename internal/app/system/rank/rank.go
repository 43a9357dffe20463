// Package rank maps pin category names to the numeric rank used to order
// the member listing.
//
// A Table is built from the pins collection on every listing request and is
// never cached, so a rank change is visible to the very next read. Names the
// table does not know sort after every ranked name.
package rank

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// Unranked is the sort key for a pin name with no category. Table.Sentinel
// raises it when a real rank reaches this value.
const Unranked = 999

// Tier is a named rank.
type Tier struct {
	Name string
	Rank int
}

// Defaults is the built-in tier ladder. It seeds an empty pins collection
// and keeps these names valid for members even before any pin is created.
var Defaults = []Tier{
	{Name: "Crown Diamond", Rank: 1},
	{Name: "Black Diamond", Rank: 2},
	{Name: "Blue Diamond", Rank: 3},
	{Name: "Diamond", Rank: 4},
	{Name: "Emerald", Rank: 5},
	{Name: "Sapphire", Rank: 7},
	{Name: "Ruby", Rank: 8},
	{Name: "Pearl", Rank: 9},
	{Name: "Platinum", Rank: 10},
	{Name: "Gold", Rank: 11},
	{Name: "Silver", Rank: 12},
	{Name: "Bronze", Rank: 13},
}

// Source loads the current name -> rank mapping. The pins store implements it.
type Source interface {
	RankMap(ctx context.Context) (map[string]int, error)
}

// Table is an immutable snapshot of pin ranks.
type Table struct {
	ranks    map[string]int
	sentinel int
}

// New builds a Table from a name -> rank mapping. The map is copied.
func New(ranks map[string]int) Table {
	t := Table{ranks: make(map[string]int, len(ranks)), sentinel: Unranked}
	for name, r := range ranks {
		t.ranks[name] = r
		if r >= t.sentinel {
			t.sentinel = r + 1
		}
	}
	return t
}

// Build reads the mapping from src.
func Build(ctx context.Context, src Source) (Table, error) {
	m, err := src.RankMap(ctx)
	if err != nil {
		return Table{}, err
	}
	return New(m), nil
}

// Rank returns the rank for name, or the sentinel when name is unknown.
func (t Table) Rank(name string) int {
	if r, ok := t.ranks[name]; ok {
		return r
	}
	return t.Sentinel()
}

// Sentinel is strictly greater than every rank in the table.
func (t Table) Sentinel() int {
	if t.sentinel == 0 {
		return Unranked
	}
	return t.sentinel
}

// Len reports how many names the table knows.
func (t Table) Len() int { return len(t.ranks) }

// Names returns the known names in ascending name order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.ranks))
	for n := range t.ranks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SwitchExpr renders the table as an aggregation expression evaluating to
// the rank of the document's field (e.g. "$pin"). $switch rejects an empty
// branch list, so an empty table renders the sentinel literal instead.
func (t Table) SwitchExpr(field string) interface{} {
	if len(t.ranks) == 0 {
		return bson.M{"$literal": t.Sentinel()}
	}
	branches := make(bson.A, 0, len(t.ranks))
	for _, name := range t.Names() {
		branches = append(branches, bson.M{
			"case": bson.M{"$eq": bson.A{field, name}},
			"then": t.ranks[name],
		})
	}
	return bson.M{"$switch": bson.M{
		"branches": branches,
		"default":  t.Sentinel(),
	}}
}

// IsDefault reports whether name is one of the built-in tiers.
func IsDefault(name string) bool {
	for _, d := range Defaults {
		if d.Name == name {
			return true
		}
	}
	return false
}
