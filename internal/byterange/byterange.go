// Package byterange resolves an optional HTTP Range header against a known
// content length into a concrete serving plan. It performs no I/O.
package byterange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrUnsatisfiable indicates the requested window starts or ends past the
// end of the content (HTTP 416).
var ErrUnsatisfiable = errors.New("requested range not satisfiable")

// Plan describes the byte window and response headers for one request.
// Start and End are inclusive.
type Plan struct {
	Status       int
	Start        int64
	End          int64
	Length       int64
	ContentType  string
	ContentRange string // set only for partial responses
}

// Partial reports whether the plan serves a 206 response.
func (p Plan) Partial() bool {
	return p.Status == fiber.StatusPartialContent
}

// Resolve computes the serving plan for a payload of total bytes and an
// optional Range header.
//
// The parser is deliberately lenient: only single ranges of the form
// "bytes=<start>-<end>" (end optional) are understood. Suffix ranges
// ("bytes=-500"), multi-ranges, and anything whose start does not parse are
// all treated as if no Range header was sent. This permissiveness matches
// the established client contract; do not tighten it silently.
func Resolve(total int64, rangeHeader, contentType string) (Plan, error) {
	if total <= 0 {
		return Plan{}, fmt.Errorf("byterange: total must be positive, got %d", total)
	}

	full := Plan{
		Status:      fiber.StatusOK,
		Start:       0,
		End:         total - 1,
		Length:      total,
		ContentType: contentType,
	}

	if rangeHeader == "" {
		return full, nil
	}

	spec := strings.TrimPrefix(rangeHeader, "bytes=")
	startRaw, endRaw, _ := strings.Cut(spec, "-")

	start, err := strconv.ParseInt(strings.TrimSpace(startRaw), 10, 64)
	if err != nil || start < 0 {
		return full, nil
	}

	end := total - 1
	if trimmed := strings.TrimSpace(endRaw); trimmed != "" {
		// A malformed end is treated like an absent one.
		if parsed, perr := strconv.ParseInt(trimmed, 10, 64); perr == nil {
			end = parsed
		}
	}

	if start >= total || end >= total {
		return Plan{}, ErrUnsatisfiable
	}
	// An inverted window has no bytes to serve.
	if end < start {
		return Plan{}, ErrUnsatisfiable
	}

	return Plan{
		Status:       fiber.StatusPartialContent,
		Start:        start,
		End:          end,
		Length:       end - start + 1,
		ContentType:  contentType,
		ContentRange: fmt.Sprintf("bytes %d-%d/%d", start, end, total),
	}, nil
}
