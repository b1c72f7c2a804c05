package maincmd_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/loxcraft/loxcraft/internal/filetest"
	"github.com/loxcraft/loxcraft/internal/maincmd"
)

var testUpdateTokenizeTests = flag.Bool("test.update-tokenize-tests", false, "If set, replace expected tokenize test results with actual results.")
var testUpdateParseTests = flag.Bool("test.update-parse-tests", false, "If set, replace expected parse test results with actual results.")

func TestTokenizeGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "tokenize", "in"), filepath.Join("testdata", "tokenize", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var out, eout bytes.Buffer
			maincmd.Tokenize(&out, &eout, string(src))
			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateTokenizeTests)
			filetest.DiffErrors(t, fi, eout.String(), resultDir, testUpdateTokenizeTests)
		})
	}
}

func TestParseGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "parse", "in"), filepath.Join("testdata", "parse", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var out, eout bytes.Buffer
			maincmd.Parse(&out, &eout, string(src))
			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateParseTests)
			filetest.DiffErrors(t, fi, eout.String(), resultDir, testUpdateParseTests)
		})
	}
}
