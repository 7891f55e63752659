package internal

// traverse reads every nested property of value so that the active watcher
// depends on all of them. Frozen objects and already visited containers are skipped.
func traverse(value any) {
	seen := make(map[any]struct{})
	traverseValue(value, seen)
}

func traverseValue(value any, seen map[any]struct{}) {
	switch v := value.(type) {
	case *Object:
		if v == nil || v.frozen {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}

		for _, key := range v.Keys() {
			traverseValue(v.Get(key), seen)
		}

	case *Array:
		if v == nil {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}

		for _, item := range v.Values() {
			traverseValue(item, seen)
		}
	}
}
