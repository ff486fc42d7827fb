// Package surface models the editable notes surface as an arena tree.
//
// # Arena
//
// Nodes live in a single slice owned by [Tree] and are addressed by [NodeID].
// Every node records its parent index and its ordered child indices, so the
// structure never holds pointers between nodes. Detached or removed nodes keep
// their slot; removed slots are never reused, which keeps IDs stable across
// [Tree.Clone].
//
// # Flattened text
//
// The canonical addressable sequence is the concatenation of every [KindText]
// leaf in document order. Structural nodes (headings, emphasis, list items,
// checkbox rows, breaks) contribute nothing of their own. Offsets count runes.
//
// # Anchors
//
// An [Anchor] is a boundary point: for a text leaf the offset is a rune
// position inside it, for any other node it is a child index. [ResolveOffsets]
// maps a flattened range back to a pair of anchors and [Tree.OffsetOf] maps an
// anchor back to a flattened offset.
//
// # Serialization
//
// [Marshal] and [Unmarshal] convert between a tree and a versioned JSON
// document describing structure only. Reloading rebuilds a fresh arena.
package surface
