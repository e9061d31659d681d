package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/moradology/pith/internal/builder"
	"github.com/moradology/pith/internal/walker"
)

// Process exit codes.
const (
	ExitOK               = 0
	ExitIO               = 1
	ExitTraversal        = 2
	ExitPathNotFound     = 3
	ExitPermissionDenied = 4
	ExitNoFilesFound     = 5
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var walkErr *walker.Error
	if errors.As(err, &walkErr) {
		switch walkErr.Kind {
		case walker.KindNotFound:
			return ExitPathNotFound
		case walker.KindPermissionDenied:
			return ExitPermissionDenied
		default:
			return ExitTraversal
		}
	}
	if errors.Is(err, builder.ErrNoFilesFound) {
		return ExitNoFilesFound
	}
	return ExitIO
}

// writeError reports err on w, as {"error": "..."} when asJSON is set.
func writeError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}
