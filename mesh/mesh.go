// Package mesh builds one-dimensional finite-volume meshes over named
// spatial domains. A mesh is pure geometry: which cells exist and where
// their edges sit. How equations are lowered onto it is the discretiser's
// concern.
package mesh

import (
	"fmt"

	"github.com/fieldsim-xyz/go-fieldsim/params"
)

// Submesh is a uniform cell decomposition of one domain.
type Submesh struct {
	Domain string
	Edges  []float64 // cell edges, len = cells+1
	Nodes  []float64 // cell centres, len = cells
}

// Cells returns the number of cells in the submesh.
func (s *Submesh) Cells() int { return len(s.Nodes) }

// CellWidth returns the uniform cell width.
func (s *Submesh) CellWidth() float64 {
	return s.Edges[1] - s.Edges[0]
}

// Mesh is an ordered collection of submeshes, one per domain.
type Mesh struct {
	domains   []string
	submeshes map[string]*Submesh
}

// NewUniform builds a mesh with npts uniform cells per domain. The extent
// of each domain comes from the parameters `<domain>_min` / `<domain>_max`,
// defaulting to the unit interval.
func NewUniform(values *params.Values, npts int, domains ...string) (*Mesh, error) {
	if npts < 1 {
		return nil, fmt.Errorf("mesh: need at least one cell per domain, got %d", npts)
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("mesh: no domains given")
	}

	m := &Mesh{
		domains:   append([]string(nil), domains...),
		submeshes: make(map[string]*Submesh, len(domains)),
	}
	for _, domain := range domains {
		if _, ok := m.submeshes[domain]; ok {
			return nil, fmt.Errorf("mesh: domain '%s' given twice", domain)
		}
		lo := values.GetDefault(domain+"_min", 0)
		hi := values.GetDefault(domain+"_max", 1)
		if hi <= lo {
			return nil, fmt.Errorf("mesh: domain '%s' has empty extent [%g, %g]", domain, lo, hi)
		}

		edges := make([]float64, npts+1)
		width := (hi - lo) / float64(npts)
		for i := range edges {
			edges[i] = lo + float64(i)*width
		}
		nodes := make([]float64, npts)
		for i := range nodes {
			nodes[i] = (edges[i] + edges[i+1]) / 2
		}
		m.submeshes[domain] = &Submesh{Domain: domain, Edges: edges, Nodes: nodes}
	}
	return m, nil
}

// Submesh returns the submesh for a domain.
func (m *Mesh) Submesh(domain string) (*Submesh, error) {
	s, ok := m.submeshes[domain]
	if !ok {
		return nil, fmt.Errorf("mesh: no submesh for domain '%s'", domain)
	}
	return s, nil
}

// Domains returns the domain labels in mesh order.
func (m *Mesh) Domains() []string {
	return append([]string(nil), m.domains...)
}
