// Package workspace implements the session model behind the web IDE shell.
//
// A Session owns four structures and is their only mutator:
//   - Tree: the immutable project hierarchy plus folder expansion state
//   - ContentStore: path to current text, seeded lazily on first read
//   - Tabs: ordered open tabs and the active tab
//   - the seed provider used to materialize unopened files
//
// Invariant:
//
//	ActiveTab() == "" iff len(OpenTabs()) == 0, otherwise ActiveTab() ∈ OpenTabs()
//
// Closing the active tab lands on its left neighbour, or on the new first
// tab when the closed tab was first.
//
// Example Usage:
//
//	tree, _ := workspace.NewTree(roots)
//	s := workspace.New(tree, seed)
//	_ = s.SelectFile("/src/App.tsx")
//	_ = s.EditActive("export default App;")
//	snap := s.Snapshot()
package workspace
