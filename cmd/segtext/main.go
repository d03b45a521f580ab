// Command segtext previews how text looks on the 4-digit display.
//
//	segtext -text " 12.5"
//	segtext -number 42 -blank
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"torch/services/segment"
)

func main() {
	var (
		text   = flag.String("text", "", "Digits, spaces and dots to show.")
		number = flag.Int("number", -1, "Show a number instead of text.")
		blank  = flag.Bool("blank", false, "Blank leading zeros (with -number).")
		hex    = flag.Bool("hex", false, "Also print the segment patterns.")
	)
	flag.Parse()

	var frame [segment.NumDigits]uint8
	switch {
	case *number >= 0:
		frame = segment.Number(uint(*number), *blank)
	case *text != "":
		var ok bool
		frame, ok = segment.Parse(*text)
		if !ok {
			fatalf("cannot show %q: use at most %d digits or spaces, each optionally followed by one dot", *text, segment.NumDigits)
		}
	default:
		fatalf("usage: segtext -text \" 12.5\" | -number N [-blank] [-hex]")
	}

	fmt.Print(render(frame))
	if *hex {
		fmt.Printf("% X\n", frame[:])
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

// render draws the frame as three rows of ASCII art.
func render(frame [segment.NumDigits]uint8) string {
	var rows [3]strings.Builder
	on := func(p, bit uint8, s string) string {
		if p&bit != 0 {
			return s
		}
		return strings.Repeat(" ", len(s))
	}
	for _, p := range frame {
		rows[0].WriteString(" " + on(p, 0x80, "_") + "  ")
		rows[1].WriteString(on(p, 0x04, "|") + on(p, 0x02, "_") + on(p, 0x40, "|") + " ")
		rows[2].WriteString(on(p, 0x08, "|") + on(p, 0x10, "_") + on(p, 0x20, "|") + on(p, segment.Dot, "."))
	}
	var b strings.Builder
	for i := range rows {
		b.WriteString(strings.TrimRight(rows[i].String(), " "))
		b.WriteByte('\n')
	}
	return b.String()
}
