package ir

// Walk visits n and its descendants in pre-order, source order. When fn
// returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	n.eachChild(func(c Node) {
		Walk(c, fn)
	})
}

// Children returns the immediate children of n in source order.
func Children(n Node) []Node {
	var out []Node
	n.eachChild(func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	})
	return out
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}
