// Command comm2osm converts one or more NAVTEQ/HERE shapefile deliveries
// into a single OSM XML (or PBF) file.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"comm2osm/internal/convert"
	"comm2osm/internal/osmio"
	"comm2osm/internal/tags"
)

type options struct {
	Positional struct {
		InputDir   string `positional-arg-name:"INPUT_DIR" required:"true"`
		OutputFile string `positional-arg-name:"OUTPUT_FILE"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "comm2osm"
	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	output := opts.Positional.OutputFile
	if output == "" {
		output = "output.osm"
	}

	if err := run(opts.Positional.InputDir, output); err != nil {
		log.Fatalf("comm2osm: %v", err)
	}
}

func run(inputDir, outputFile string) error {
	start := time.Now()

	format, err := osmio.FormatForPath(outputFile)
	if err != nil {
		return err
	}
	if format == osmio.FormatPBF {
		return fmt.Errorf("writing PBF output requires an external osmio.Encoder; none is wired into this build")
	}

	// Step 1: find every directory that carries the required file set.
	log.Println("Discovering input directories...")
	dirs, err := convert.DiscoverDirectories([]string{inputDir})
	if err != nil {
		return fmt.Errorf("discover directories: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no convertible directory found under %s", inputDir)
	}
	log.Printf("Found %d convertible director%s", len(dirs), plural(len(dirs)))

	// Step 2: read each directory's typed records and feed them through the
	// conversion pipeline. Shapefile/DBF reading is an external collaborator;
	// readDirectory is this build's narrow stand-in.
	rc := convert.New(tags.PassThrough{}, tags.SideTables{})
	total := 0
	for _, dir := range dirs {
		log.Printf("Converting %s...", dir)
		input, err := readDirectory(dir)
		if err != nil {
			return fmt.Errorf("read %s: %w", dir, err)
		}
		errs := rc.ConvertDirectory(input)
		for _, e := range errs {
			if e.Fatal() {
				return e
			}
			log.Printf("warning: %v", e)
		}
		total++
	}

	// Step 3: serialize the accumulated graph.
	log.Printf("Writing %s...", outputFile)
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	var buf osmio.Buffer
	rc.Commit(&buf)
	if err := buf.WriteXML(f); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	log.Printf("Done in %s. Converted %d director%s: %d nodes, %d ways, %d relations.",
		time.Since(start).Round(time.Millisecond), total, plural(total),
		len(buf.Nodes), len(buf.Ways), len(buf.Relations))
	return nil
}

// readDirectory is the seam where typed feature records are assumed to
// already exist: a real build wires an OGR/shapefile reader here. This
// build has none, so the first directory discovery finds is reported as an
// unreadable input and ends the run, rather than silently converting
// nothing.
func readDirectory(dir string) (convert.DirectoryInput, error) {
	return convert.DirectoryInput{}, fmt.Errorf("no shapefile/DBF reader is wired into this build (path: %s)", dir)
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
