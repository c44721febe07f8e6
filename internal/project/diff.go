package project

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// DiffFile computes line addition/deletion counts between two versions of a
// file, for transcript change summaries.
func DiffFile(name, before, after string) types.FileDiff {
	diff := types.FileDiff{Name: name}
	if before == after {
		return diff
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			diff.Additions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			diff.Deletions += countLines(d.Text)
		}
	}

	return diff
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	lines := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		lines++
	}
	return lines
}
