package tracefile

import (
	"fmt"
	"io"
	"strings"
)

// Summary. distances (meter) reported at the end of a run.
type Summary struct {
	TotalDistance float64
	EndDistance   float64
	Mean          float64
	StdDev        float64
	Errors        []float64
}

func (s Summary) WriteTo(w io.Writer) (int64, error) {
	values := make([]string, len(s.Errors))
	for i, v := range s.Errors {
		values[i] = fmt.Sprintf("%v", v)
	}
	n, err := fmt.Fprintf(w, "Car travelled a total distance of: %v meters.\n"+
		"Car trajectory end is %v meters away from the start.\n"+
		"Measured distance to ground truth is: %v meters.\n"+
		"Std deviation of the distance to ground truth is: %v meters.\n"+
		"Distance values: \n [%s]",
		s.TotalDistance, s.EndDistance, s.Mean, s.StdDev, strings.Join(values, ", "))
	return int64(n), err
}

func WriteSummaryFile(path string, s Summary) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := s.WriteTo(w)
		return err
	})
}
