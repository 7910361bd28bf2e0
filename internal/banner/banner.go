// Package banner prints Director's startup logo, the Go port of the
// original implementation's include_str! ASCII-art print in main().
package banner

import (
	"fmt"
	"io"
	"strings"
)

const logo = `
 ____  _               _
|  _ \(_)_ __ ___  ___| |_ ___  _ __
| | | | | '__/ _ \/ __| __/ _ \| '__|
| |_| | | | |  __/ (__| || (_) | |
|____/|_|_|  \___|\___|\__\___/|_|
`

// Print writes the logo to w, one line at a time, matching the original's
// "print blank line, each logo line, blank line" sequence.
func Print(w io.Writer) {
	fmt.Fprintln(w)
	for _, line := range strings.Split(strings.Trim(logo, "\n"), "\n") {
		fmt.Fprintf(w, " %s\n", line)
	}
	fmt.Fprintln(w)
}
