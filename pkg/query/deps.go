package query

import "github.com/goblinsan/gh-milestone-tracker/pkg/types"

// Index resolves dependency identifiers to display names.
type Index struct {
	milestones map[string]string
	projects   map[string]string
}

// NewIndex indexes every project and milestone of doc by identifier.
func NewIndex(doc *types.Document) *Index {
	idx := &Index{milestones: map[string]string{}, projects: map[string]string{}}
	if doc == nil {
		return idx
	}
	for _, p := range doc.Projects {
		idx.projects[p.ID] = p.Name
		for _, m := range p.Milestones {
			idx.milestones[m.ID] = m.Title
		}
	}
	return idx
}

// Resolve returns the title of the milestone or the name of the project with
// the given identifier. Unknown identifiers are returned unchanged.
func (idx *Index) Resolve(id string) string {
	if title, ok := idx.milestones[id]; ok {
		return title
	}
	if name, ok := idx.projects[id]; ok {
		return name
	}
	return id
}

// ResolveAll resolves each identifier in ids.
func (idx *Index) ResolveAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.Resolve(id)
	}
	return out
}
