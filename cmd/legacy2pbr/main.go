package main

import (
	"flag"
	"os"
	"time"

	pbr "github.com/Rendszerguru/Arma-Legacy2PBR"
	"github.com/kpango/glg"
)

var (
	inputDir  = flag.String("dir", pbr.DefaultInputDir, "set the directory scanned for _nohq, _smdi, _as and _co textures")
	resultDir = flag.String("out", pbr.DefaultResultDir, "set the directory the outputs are moved to (empty to keep them next to the inputs)")
	formats   = flag.String("formats", "tga,tif,png", "set the comma separated output formats (tga, tif, png)")
	table     = flag.String("table", pbr.Baseline.Name, "set the channel mapping table (baseline, averaged)")
	strict    = flag.Bool("strict", false, "abort the whole batch when a texture set fails")
	robust    = flag.Bool("robust", true, "keep writing the remaining formats when saving one fails")
)

func main() {
	flag.Parse()

	if flag.NArg() > 0 {
		glg.Error("Usage: legacy2pbr [options]")
		glg.Error("")
		glg.Error("legacy2pbr converts legacy _nohq, _smdi, _as and _co texture sets into")
		glg.Error("_NMO and _BCR textures.")
		glg.Error("")
		glg.Error("Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	outputFormats, err := pbr.ParseFormats(*formats)
	if err != nil {
		glg.Errorf("Invalid output formats: %v", err)
		os.Exit(1)
	}

	assignment, ok := pbr.AssignmentByName(*table)
	if !ok {
		glg.Errorf("Unknown channel mapping table: %s", *table)
		os.Exit(1)
	}

	policy := pbr.SkipFailedSets
	if *strict {
		policy = pbr.AbortOnFailure
	}

	start := time.Now()

	report, err := pbr.Convert(pbr.Options{
		InputDir:        *inputDir,
		ResultDir:       *resultDir,
		Formats:         outputFormats,
		Assignment:      assignment,
		Policy:          policy,
		StopOnSaveError: !*robust,
	})
	if err != nil {
		glg.Errorf("Conversion aborted: %v", err)
		os.Exit(1)
	}

	if failed := report.Failed(); failed > 0 {
		glg.Warnf("%d of %d texture sets failed, took %v", failed, len(report.Sets), time.Since(start))
		os.Exit(1)
	}

	glg.Infof("Done! Converted %d texture sets in %v.", len(report.Sets), time.Since(start))
}
