package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

type printer struct {
	out   io.Writer
	label *color.Color
	value *color.Color
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
}

func newPrinter(out io.Writer, colored bool) *printer {
	p := &printer{
		out:   out,
		label: color.New(color.FgHiBlack),
		value: color.New(color.Bold),
		ok:    color.New(color.FgGreen, color.Bold),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.label, p.value, p.ok, p.warn, p.fail} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) field(label string, value any) {
	fmt.Fprintf(p.out, "%s %s\n", p.label.Sprintf("%-12s", label), p.value.Sprint(value))
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.out, p.ok.Sprintf(format, args...))
}

func (p *printer) warning(format string, args ...any) {
	fmt.Fprintln(p.out, p.warn.Sprintf(format, args...))
}

func (p *printer) failure(format string, args ...any) {
	fmt.Fprintln(p.out, p.fail.Sprintf(format, args...))
}

func (p *printer) row(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
