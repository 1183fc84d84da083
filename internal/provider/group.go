package provider

import "strconv"

// collapseAbove is the group size above which a group starts collapsed.
const collapseAbove = 2

// Group is the rendered, provider-labeled list of candidates.
type Group struct {
	Provider  string `json:"provider"`
	Count     int    `json:"count"`
	Collapsed bool   `json:"collapsed"`
	Items     []Item `json:"items"`
}

// NewGroup renders items into a group. Groups with more than two items start
// collapsed.
func NewGroup(providerID string, items []Item) Group {
	if items == nil {
		items = []Item{}
	}
	return Group{
		Provider:  providerID,
		Count:     len(items),
		Collapsed: len(items) > collapseAbove,
		Items:     items,
	}
}

// Legend is the group heading, e.g. "OSM [1]".
func (g Group) Legend() string {
	return g.Provider + " [" + strconv.Itoa(g.Count) + "]"
}

// Toggle flips the collapsed state in response to user interaction.
func (g *Group) Toggle() {
	g.Collapsed = !g.Collapsed
}

// Empty reports whether there is nothing to render.
func (g Group) Empty() bool {
	return g.Count == 0
}
