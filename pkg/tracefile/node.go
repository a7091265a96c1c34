package tracefile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
)

// WriteNodes writes one road node per line: "<lat>\t<lon>\t<id>".
func WriteNodes(w io.Writer, nodes []*datastructure.RoadNode) error {
	bw := bufio.NewWriter(w)
	for _, n := range nodes {
		if _, err := fmt.Fprintf(bw, "%v\t%v\t%d\n", n.GetLat(), n.GetLon(), n.GetID()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteNodeFile(path string, nodes []*datastructure.RoadNode) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteNodes(w, nodes)
	})
}
