package value

// Equal is the equality the tree-walk evaluator's `switch` uses to match
// case values: structural equality for Number, Boolean, String, Nil, and
// Index; reference equality for Hash, Array, and ClassInstance; false
// between mismatched kinds. The `==`/`!=` operators use their own rule in
// lang/evaluator.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		return ok && x == y
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Index:
		y, ok := b.(Index)
		return ok && x == y
	case nilValue:
		_, ok := b.(nilValue)
		return ok
	case *Hash:
		y, ok := b.(*Hash)
		return ok && x == y
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case *ClassInstance:
		y, ok := b.(*ClassInstance)
		return ok && x == y
	default:
		return false
	}
}
