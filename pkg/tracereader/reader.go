package tracereader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/macrotracking/pkg/vehicle"
	"go.uber.org/zap"
)

var (
	errMissingFields = errors.New("missing fields")
	errBadFlags      = errors.New("flags must be three 0/1 digits")
	errShortData     = errors.New("fewer data bytes than dlc")
)

// Reader streams CAN frames from a telemetry trace, one frame per line:
//
//	1483093132.130010        0180    000    6    64 a0 7f ff 44 00
//	timestamp                id      flags  dlc  data
//
// flags are remote|extended|error. malformed lines are skipped and counted.
type Reader struct {
	path    string
	r       io.Reader
	log     *zap.Logger
	skipped int
	lines   int
}

// NewFileReader reads the trace at path, files ending with .bz2 are decompressed on the fly.
func NewFileReader(path string, log *zap.Logger) *Reader {
	return &Reader{path: path, log: log}
}

func NewReader(r io.Reader, log *zap.Logger) *Reader {
	return &Reader{r: r, log: log}
}

// Skipped returns the number of malformed lines of the last pass.
func (tr *Reader) Skipped() int {
	return tr.skipped
}

func (tr *Reader) Lines() int {
	return tr.lines
}

func (tr *Reader) open() (io.Reader, func() error, error) {
	if tr.r != nil {
		return tr.r, func() error { return nil }, nil
	}
	f, err := os.Open(tr.path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(tr.path, ".bz2") {
		return f, f.Close, nil
	}
	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return bz, func() error {
		bz.Close()
		return f.Close()
	}, nil
}

// Frames returns a single pass sequence of the frames of the trace. the error is only set when the
// trace can not be opened, read errors stop the sequence and are logged.
func (tr *Reader) Frames() (iter.Seq[vehicle.Frame], error) {
	r, closeFn, err := tr.open()
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", tr.path, err)
	}

	return func(yield func(vehicle.Frame) bool) {
		defer closeFn()
		tr.skipped = 0
		tr.lines = 0

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			tr.lines++
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			f, err := ParseLine(line)
			if err != nil {
				tr.skipped++
				tr.log.Debug(fmt.Sprintf("Error, unable to parse line #%d (skipping): '%s'", tr.lines, line),
					zap.Error(err))
				continue
			}
			if !yield(f) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			tr.log.Error("reading trace failed", zap.String("path", tr.path), zap.Error(err))
		}
		if tr.skipped > 0 {
			tr.log.Warn(fmt.Sprintf("Number of read errors: %d", tr.skipped), zap.String("path", tr.path))
		}
	}, nil
}

// ParseLine parses one trace line into a frame.
func ParseLine(line string) (vehicle.Frame, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return vehicle.Frame{}, errMissingFields
	}

	ts, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return vehicle.Frame{}, err
	}
	id, err := strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		return vehicle.Frame{}, err
	}
	flags := fields[2]
	if len(flags) != 3 {
		return vehicle.Frame{}, errBadFlags
	}
	var bits [3]bool
	for i := 0; i < 3; i++ {
		switch flags[i] {
		case '0':
		case '1':
			bits[i] = true
		default:
			return vehicle.Frame{}, errBadFlags
		}
	}
	dlc, err := strconv.Atoi(fields[3])
	if err != nil {
		return vehicle.Frame{}, err
	}
	if dlc < 0 || len(fields)-4 < dlc {
		return vehicle.Frame{}, errShortData
	}

	data := make([]byte, dlc)
	for i := 0; i < dlc; i++ {
		b, err := strconv.ParseUint(fields[4+i], 16, 8)
		if err != nil {
			return vehicle.Frame{}, err
		}
		data[i] = byte(b)
	}

	return vehicle.Frame{
		Timestamp:  ts,
		ID:         uint32(id),
		Remote:     bits[0],
		Extended:   bits[1],
		ErrorFrame: bits[2],
		DLC:        dlc,
		Data:       data,
	}, nil
}
