package pipeline

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"filemanager/internal/table"
)

// Defaults applied when a Plan field is left empty.
const (
	DefaultDataDir     = "data"
	DefaultFileCount   = 5
	DefaultSummaryPath = "summary.txt"
)

// Plan is the fully resolved description of a run.
type Plan struct {
	// Dir is the working directory that receives the data files.
	Dir string
	// FileCount is the number of data files to generate. Zero is valid and
	// produces an empty summary.
	FileCount int
	// SummaryPath is the aggregate output file.
	SummaryPath string
	// Dataset is written into every data file.
	Dataset table.Dataset
}

// DefaultPlan returns the plan used when nothing is configured.
func DefaultPlan() Plan {
	return Plan{
		Dir:         DefaultDataDir,
		FileCount:   DefaultFileCount,
		SummaryPath: DefaultSummaryPath,
		Dataset:     table.DefaultDataset(),
	}
}

// Validate checks that the plan can be executed.
func (p Plan) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Dir) == "" {
		errs = append(errs, errors.New("dir is required"))
	}
	if p.FileCount < 0 {
		errs = append(errs, fmt.Errorf("file count must be >= 0 (got %d)", p.FileCount))
	}
	if strings.TrimSpace(p.SummaryPath) == "" {
		errs = append(errs, errors.New("summary path is required"))
	}
	if err := p.Dataset.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Hash returns the deterministic identity of the plan.
//
// Every field is length-prefixed so that no two distinct plans share an
// encoding. Records keep their order: row order is observable output.
func (p Plan) Hash() string {
	h := sha256.New()

	writeField := func(data []byte) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(data)))
		h.Write(length[:])
		h.Write(data)
	}
	writeInt := func(v int) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(int64(v)))
		writeField(b[:])
	}

	writeField([]byte(p.Dir))
	writeInt(p.FileCount)
	writeField([]byte(p.SummaryPath))
	writeInt(len(p.Dataset))
	for _, r := range p.Dataset {
		writeField([]byte(r.Name))
		writeField([]byte(r.Description))
	}

	return hex.EncodeToString(h.Sum(nil))
}
