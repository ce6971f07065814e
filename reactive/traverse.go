package reactive

import mapset "github.com/deckarep/golang-set/v2"

// traverse recursively reads every nested property of value so that each of
// them is collected as a deep dependency.
func traverse(value any) {
	seen := mapset.NewThreadUnsafeSet[uint64]()
	traverseInto(value, seen)
}

func traverseInto(value any, seen mapset.Set[uint64]) {
	switch v := value.(type) {
	case *Object:
		if v == nil || v.frozen {
			return
		}
		if v.ob != nil && !seen.Add(v.ob.dep.id) {
			return
		}
		for _, key := range v.keys {
			traverseInto(v.Get(key), seen)
		}
	case *Array:
		if v == nil || v.frozen {
			return
		}
		if v.ob != nil && !seen.Add(v.ob.dep.id) {
			return
		}
		for _, item := range v.items {
			traverseInto(item, seen)
		}
	}
}
