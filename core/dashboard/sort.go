package dashboard

import (
	"sort"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/catalog"
)

// Sort orders items in place by orderings. Unknown fields are ignored; ties keep display order.
func Sort[T catalog.Record[T]](items []T, orderings ...core.Ordering) {
	if len(orderings) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range orderings {
			a, okA := items[i].SortKey(ord.Field)
			b, okB := items[j].SortKey(ord.Field)
			if !okA || !okB {
				continue
			}
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compare(a, b interface{}) int {
	switch x := a.(type) {
	case string:
		y, _ := b.(string)
		x, y = core.CleanString(x, true /* lower */), core.CleanString(y, true /* lower */)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case int64:
		y, _ := b.(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case float64:
		y, _ := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case bool:
		y, _ := b.(bool)
		switch {
		case !x && y:
			return -1
		case x && !y:
			return 1
		}
	}
	return 0
}
