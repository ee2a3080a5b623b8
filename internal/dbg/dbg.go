// Package dbg is the development-build validation dump target (§4.1
// Validation / §7 "Validation-violated ... dumped to debug log").
//
// Adapted from the teacher's internal/dbg, a standalone cmd/main that
// decoded a navmesh file and ran one FindPath query by hand for manual
// inspection. That one-shot inspection workflow is repurposed here into
// a library call a package's Update() reaches for when an invariant
// check fails: dump the graph's node/link slab shape so the failure is
// legible in the debug log instead of just a bare error string.
package dbg

import (
	"fmt"
	"io"

	"github.com/ironspire/navcore/navgraph"
)

// DumpGraph writes a line-per-node summary of g's slab state to w: node
// id, kind, owning location, and its outgoing link chain. It never
// mutates g and never fails — a dump is best-effort diagnostic output,
// not a load-bearing operation.
func DumpGraph(w io.Writer, g *navgraph.Graph) {
	stats := g.Stats()
	fmt.Fprintf(w, "navgraph dump: nodes=%d links=%d node-failures=%d link-failures=%d\n",
		stats.NodeCount, stats.LinkCount, stats.NodeFailures, stats.LinkFailures)

	g.EachNode(func(id navgraph.NodeID, n *navgraph.Node) {
		fmt.Fprintf(w, "  node %d kind=%d loc=%+v outlinks=[", id, n.Kind, n.Loc)
		first := true
		for lid := n.OutLink; lid != 0; {
			l := g.Link(lid)
			if l == nil {
				break
			}
			if !first {
				fmt.Fprint(w, " ")
			}
			first = false
			fmt.Fprintf(w, "%d->%d", lid, l.Dest)
			lid = l.Next
		}
		fmt.Fprintln(w, "]")
	})
}
