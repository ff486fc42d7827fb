// Package notes implements the notes editor session: selection tracking,
// format application over a [surface.Tree], checkbox rows and the small set of
// preferences that live next to the content.
//
// A [Session] owns the surface, the current selection [Snapshot] and the
// cursor. Hosts talk to it through two ports passed at construction:
//
//   - [Store] is the string-keyed persistence host. The session writes the
//     serialized surface after every successful mutation and never on an
//     aborted one.
//   - [MenuHost] shows and hides the format menu at a [Placement].
//
// Format actions are all-or-nothing. [Session.Apply] works on a clone of the
// surface and swaps it in only when every step succeeded.
package notes
