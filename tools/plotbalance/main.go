// plotbalance renders the running balance of a bracket string as an
// interactive HTML line chart, next to the field-element values of the
// accumulator column the witness synthesizer produces. Handy when debugging
// why an instance is rejected: a dip below zero shows up as a jump to p-1 in
// the accumulator trace.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/zkmatrix/plonkish/bracket"
	"github.com/zkmatrix/plonkish/field/bn254"
)

func main() {
	input := flag.String("input", "(()(())())", "bracket string")
	out := flag.String("o", "balance.html", "output HTML file")
	flag.Parse()

	f := &bn254.Field{}
	circuit, err := bracket.New(f, len(*input))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build error: %v\n", err)
		os.Exit(1)
	}
	asg, err := circuit.Synthesize(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "synthesize error: %v\n", err)
		os.Exit(1)
	}

	xAxis := make([]string, len(*input))
	balance := make([]opts.LineData, len(*input))
	accum := make([]opts.LineData, len(*input))

	depth := 0
	for i := 0; i < len(*input); i++ {
		if (*input)[i] == bracket.OpenBracket {
			depth++
		} else {
			depth--
		}
		xAxis[i] = fmt.Sprintf("%d:%c", i, (*input)[i])
		balance[i] = opts.LineData{Value: depth}

		v, err := asg.Value(circuit.Config().Accum, i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			os.Exit(1)
		}
		accum[i] = opts.LineData{Value: f.String(v)}
	}

	page := components.NewPage().SetPageTitle("Bracket balance trace")

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Running balance",
			Subtitle: fmt.Sprintf("input %q", *input),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xAxis).
		AddSeries("signed balance", balance).
		AddSeries("accumulator column (mod p)", accum)

	page.AddCharts(line)

	w, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create error: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()
	if err := page.Render(w); err != nil {
		fmt.Fprintf(os.Stderr, "render error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}
