package algebra

const (
	// MaxDepth bounds recursion through nested shapes and constraints.
	MaxDepth = 64

	// LiteralIntLimit is the number of distinct integer literals a
	// combined union keeps before they widen to int.
	LiteralIntLimit = 50

	// LiteralFloatLimit is LiteralIntLimit for floats.
	LiteralFloatLimit = 50

	// LiteralStringLimit is the number of distinct string literals kept
	// before they widen to a (possibly refined) string.
	LiteralStringLimit = 50

	// MaxShapeItems is the number of known items a combined shape may
	// carry before it is generalised to key/value parameters.
	MaxShapeItems = 100
)
