// Command probe decodes audio files the way the player does and prints what
// it finds, without opening the audio device.
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/starlight/internal/errmsg"
	"github.com/llehouerou/starlight/internal/player"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: probe FILE...")
		os.Exit(2)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(paths []string, stdout, stderr io.Writer) int {
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tFORMAT\tDURATION\tRATE\tBITS\tSIZE\tARTIST\tTITLE")

	failed := 0
	for _, path := range paths {
		info, err := player.Probe(path)
		if err != nil {
			fmt.Fprintln(stderr, "probe:", errmsg.FormatWith(errmsg.OpDecode, path, err))
			failed++
			continue
		}
		size := "-"
		if fi, err := os.Stat(path); err == nil {
			size = humanize.IBytes(uint64(fi.Size()))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			path,
			info.Format,
			info.Duration.Round(time.Millisecond),
			humanize.SIWithDigits(float64(info.SampleRate), 1, "Hz"),
			info.BitDepth,
			size,
			info.Artist,
			info.Title,
		)
	}
	_ = w.Flush()

	if failed > 0 {
		return 1
	}
	return 0
}
