package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/chmouel/p4status/internal/models"
)

// Locked writes one line per opened file, marking exclusive locks.
func Locked(w io.Writer, listing models.LockedListing) error {
	var b strings.Builder
	switch {
	case listing.Error != nil:
		fmt.Fprintf(&b, "Error querying Perforce: %s\n", strings.TrimSpace(listing.Error.Stderr))
	case len(listing.Files) == 0:
		fmt.Fprintf(&b, "No opened files under %s.\n", listing.Path)
	default:
		for _, f := range listing.Files {
			fmt.Fprintf(&b, "%s - %s by %s (%s)", f.File, valueOr(f.Action, "(action)"), valueOr(f.User, "?"), valueOr(f.Client, "?"))
			if f.Locked {
				b.WriteString(" " + lockedToken)
			}
			b.WriteByte('\n')
		}
		if listing.Truncated {
			fmt.Fprintf(&b, "... %d more not shown\n", listing.Total-len(listing.Files))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

const lockedToken = "*locked*"
