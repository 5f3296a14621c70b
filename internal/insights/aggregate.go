package insights

import (
	"cmp"
	"slices"

	"purchase-dashboard/internal/models"
)

// Entry is one key/value pair of a Groups result.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Groups is the result of GroupAndReduce. Keys keep first-seen order, which
// is the tie-break order used by every ranking built on top of it.
type Groups[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func (g Groups[K, V]) Len() int {
	return len(g.keys)
}

func (g Groups[K, V]) Keys() []K {
	return slices.Clone(g.keys)
}

func (g Groups[K, V]) Get(key K) (V, bool) {
	v, ok := g.values[key]
	return v, ok
}

func (g Groups[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], len(g.keys))
	for i, k := range g.keys {
		out[i] = Entry[K, V]{Key: k, Value: g.values[k]}
	}
	return out
}

// GroupAndReduce folds records into one accumulator per key. The result is
// freshly allocated per call; empty input yields empty Groups.
func GroupAndReduce[K comparable, T, A any](
	records []models.TransactionRecord,
	key func(models.TransactionRecord) K,
	value func(models.TransactionRecord) T,
	reduce func(A, T) A,
	initial A,
) Groups[K, A] {
	g := Groups[K, A]{values: make(map[K]A)}
	for _, r := range records {
		k := key(r)
		acc, ok := g.values[k]
		if !ok {
			g.keys = append(g.keys, k)
			acc = initial
		}
		g.values[k] = reduce(acc, value(r))
	}
	return g
}

// Pair is a structured two-level key; it replaces "a|b" string keys so that
// field values containing a separator cannot collide.
type Pair struct {
	From string
	To   string
}

type ratingAcc struct {
	sum   float64
	count int
}

func sum(acc, v float64) float64 { return acc + v }

func count(acc int, _ struct{}) int { return acc + 1 }

func totalPrice(r models.TransactionRecord) float64 { return r.TotalPrice }

func byCategory(r models.TransactionRecord) string { return r.Category }

func RevenueByCategory(records []models.TransactionRecord) Groups[string, float64] {
	return GroupAndReduce(records, byCategory, totalPrice, sum, 0)
}

func RevenueBySKU(records []models.TransactionRecord) Groups[string, float64] {
	return GroupAndReduce(records, func(r models.TransactionRecord) string { return r.SKU }, totalPrice, sum, 0)
}

func CustomerLifetimeValue(records []models.TransactionRecord) Groups[string, float64] {
	return GroupAndReduce(records, func(r models.TransactionRecord) string { return r.CustomerName }, totalPrice, sum, 0)
}

func PaymentMethodCounts(records []models.TransactionRecord) Groups[string, int] {
	return GroupAndReduce(records,
		func(r models.TransactionRecord) string { return r.PaymentMethod },
		func(models.TransactionRecord) struct{} { return struct{}{} },
		count, 0)
}

// AverageRatingByCategory keeps a sum and a count per category and divides
// once at the end.
func AverageRatingByCategory(records []models.TransactionRecord) Groups[string, float64] {
	acc := GroupAndReduce(records, byCategory,
		func(r models.TransactionRecord) float64 { return r.ReviewRating },
		func(a ratingAcc, v float64) ratingAcc { return ratingAcc{sum: a.sum + v, count: a.count + 1} },
		ratingAcc{})

	out := Groups[string, float64]{keys: acc.keys, values: make(map[string]float64, len(acc.keys))}
	for _, k := range acc.keys {
		a := acc.values[k]
		out.values[k] = a.sum / float64(a.count)
	}
	return out
}

// RevenueFlows returns category -> sub-category edges followed by
// sub-category -> payment method edges. The two layers are grouped separately
// so an identical name pair on both levels stays two edges.
func RevenueFlows(records []models.TransactionRecord) []models.FlowEdge {
	first := GroupAndReduce(records,
		func(r models.TransactionRecord) Pair { return Pair{From: r.Category, To: r.SubCategory} },
		totalPrice, sum, 0)
	second := GroupAndReduce(records,
		func(r models.TransactionRecord) Pair { return Pair{From: r.SubCategory, To: r.PaymentMethod} },
		totalPrice, sum, 0)

	edges := make([]models.FlowEdge, 0, first.Len()+second.Len())
	for _, layer := range []Groups[Pair, float64]{first, second} {
		for _, e := range layer.Entries() {
			edges = append(edges, models.FlowEdge{From: e.Key.From, To: e.Key.To, Flow: e.Value})
		}
	}
	return edges
}

// CategoryHierarchy nests sub-category revenue under category revenue, both
// levels sorted descending with first-seen order on ties.
func CategoryHierarchy(records []models.TransactionRecord) models.Hierarchy {
	categories := RevenueByCategory(records)
	subs := GroupAndReduce(records,
		func(r models.TransactionRecord) Pair { return Pair{From: r.Category, To: r.SubCategory} },
		totalPrice, sum, 0)

	var total float64
	for _, e := range categories.Entries() {
		total += e.Value
	}

	children := make(map[string][]Entry[string, float64], categories.Len())
	for _, e := range subs.Entries() {
		children[e.Key.From] = append(children[e.Key.From], Entry[string, float64]{Key: e.Key.To, Value: e.Value})
	}

	nodes := make([]models.HierarchyNode, 0, categories.Len())
	for _, cat := range sortDescending(categories.Entries()) {
		node := models.HierarchyNode{
			Category: cat.Key,
			Value:    cat.Value,
			Percent:  percentOf(cat.Value, total),
		}
		node.Label = formatShare(cat.Key, node.Percent)

		for _, sub := range sortDescending(children[cat.Key]) {
			child := models.HierarchyChild{
				SubCategory: sub.Key,
				Value:       sub.Value,
				Label:       sub.Key,
				Tooltip:     sub.Key,
				Visible:     sub.Value > total*labelVisibleShare,
			}
			if sub.Key == DefaultSubCategory {
				child.Label = ""
				child.Tooltip = cat.Key
			}
			node.Children = append(node.Children, child)
		}
		nodes = append(nodes, node)
	}

	return models.Hierarchy{Total: total, Nodes: nodes}
}

const labelVisibleShare = 0.05

// sortDescending returns a copy ordered by value, high to low. The stable
// sort keeps input order on ties.
func sortDescending[K comparable](entries []Entry[K, float64]) []Entry[K, float64] {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry[K, float64]) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}
