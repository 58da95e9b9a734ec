package network

// Edge forwards the output of node From into the input of node To.
type Edge struct {
	From int
	To   int
}

// Topology describes how the nodes of a network are wired.
type Topology struct {
	Size     int    // Number of nodes.
	Edges    []Edge // Output to input wiring.
	Terminal int    // Node whose last output is the converged value.
	Seed     int64  // Value injected after the phase setting.
	SeedNode int    // Node receiving the seed.
}

// Ring is a feedback topology: node i feeds node (i+1) mod n, and the
// last node feeds back into the first.
func Ring(n int) (topo Topology) {
	topo = Topology{Size: n, Terminal: n - 1}
	for i := range n {
		topo.Edges = append(topo.Edges, Edge{From: i, To: (i + 1) % n})
	}

	return
}

// Chain is a single pass topology: node i feeds node i+1.
func Chain(n int) (topo Topology) {
	topo = Topology{Size: n, Terminal: n - 1}
	for i := range n - 1 {
		topo.Edges = append(topo.Edges, Edge{From: i, To: i + 1})
	}

	return
}

// Validate checks that every node reference is in range.
func (topo Topology) Validate() (err error) {
	valid := func(node int) bool {
		return node >= 0 && node < topo.Size
	}

	switch {
	case topo.Size <= 0:
		err = ErrTopology
	case !valid(topo.Terminal), !valid(topo.SeedNode):
		err = ErrTopology
	}
	if err != nil {
		return
	}

	for _, edge := range topo.Edges {
		if !valid(edge.From) || !valid(edge.To) {
			err = ErrTopology
			return
		}
	}

	return
}

// from returns the edges leaving node.
func (topo Topology) from(node int) (edges []Edge) {
	for _, edge := range topo.Edges {
		if edge.From == node {
			edges = append(edges, edge)
		}
	}
	return
}

// inDegree counts the edges entering each node.
func (topo Topology) inDegree() (degree []int) {
	degree = make([]int, topo.Size)
	for _, edge := range topo.Edges {
		degree[edge.To]++
	}
	return
}
