package dom

// MutationKind is the type of a document change.
type MutationKind uint8

const (
	NodeAdded MutationKind = iota
	NodeRemoved
	AttributeChanged
	TextChanged
)

func (k MutationKind) String() string {
	switch k {
	case NodeAdded:
		return "node-added"
	case NodeRemoved:
		return "node-removed"
	case AttributeChanged:
		return "attribute-changed"
	case TextChanged:
		return "text-changed"
	default:
		return "<invalid mutation>"
	}
}

// Mutation describes one change of the document.
type Mutation struct {
	Kind MutationKind
	// Node is the added, removed or modified node.
	// For NodeRemoved, the id is not valid anymore.
	Node   NodeID
	Parent NodeID
	// Attr is the changed attribute name, for AttributeChanged.
	Attr string
	// Generation is the document generation after the change.
	Generation uint64
}

// Listener is notified synchronously after each mutation.
type Listener func(Mutation)
