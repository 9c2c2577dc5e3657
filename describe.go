package xlexport

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable tree of the sheets and charts in a package.
// Useful for checking what a render produced without opening Excel.
func Describe(pkg *Package) (string, error) {
	info, err := Inspect(pkg)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Package: %d parts, %d sheets, %d charts\n", info.Parts, len(info.Sheets), info.ChartCount())
	for _, s := range info.Sheets {
		fmt.Fprintf(&b, "  Sheet %d %q", s.Index, s.Name)
		if s.Part != "" {
			fmt.Fprintf(&b, " (%s)", s.Part)
		}
		b.WriteByte('\n')
		if s.Drawing != "" {
			fmt.Fprintf(&b, "    drawing %s\n", s.Drawing)
		}
		for _, c := range s.Charts {
			fmt.Fprintf(&b, "    %s chart %q (%s)\n", c.Kind, c.Title, c.Part)
			for _, ser := range c.Series {
				fmt.Fprintf(&b, "      series %q: %s -> %s", ser.Name, ser.Categories, ser.Values)
				if area, err := ParseAreaRef(ser.Values); err == nil {
					fmt.Fprintf(&b, " [%d points]", area.Rows())
				}
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}
