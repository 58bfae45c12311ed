package schema

import "github.com/calmarsh/schemaplan/internal/graph"

// BuildGraph validates the schema and materializes its dependency graph:
// one node per table, one edge from each table to every table it references
// through a foreign key. Acyclicity is not checked here; the ordering step
// decides which edges count.
func BuildGraph(s *Schema) (*graph.Directed, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	g := graph.New(s.TableNames())
	for i := range s.Tables {
		t := &s.Tables[i]
		for _, ref := range t.References() {
			if err := g.AddEdge(t.Name, ref); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
