package catalog

// All is the filter sentinel that selects every project.
const All = "All"

// Filter returns the projects whose ProjectType equals active, in catalog
// order. All selects every project. The result never shares storage with
// projects.
func Filter(projects []Project, active string) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if active == All || p.ProjectType == active {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns All followed by each distinct non-empty project type in
// first-seen order.
func Categories(projects []Project) []string {
	cats := []string{All}
	seen := make(map[string]bool)
	for _, p := range projects {
		if p.ProjectType == "" || seen[p.ProjectType] {
			continue
		}
		seen[p.ProjectType] = true
		cats = append(cats, p.ProjectType)
	}
	return cats
}
