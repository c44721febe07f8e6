// Package project owns the persistent project model: reconciling generation
// results into it, transcript history, and the in-flight request token.
package project

import (
	"strings"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// Reconcile merges a successful GenerationResult into the project in place
// and returns per-file change summaries. Files are upserted by name: existing
// names keep their original position with new content, new names append in
// result order. The caller observes the whole merge atomically.
func Reconcile(project *types.Project, result *types.GenerationResult) []types.FileDiff {
	diffs := mergeFiles(project, result.Files)
	selectActiveFile(project, result.Files)
	applyEnvironmentDelta(project, result.EnvironmentDelta)
	return diffs
}

func mergeFiles(project *types.Project, files []types.ProjectFile) []types.FileDiff {
	if len(files) == 0 {
		return nil
	}

	index := make(map[string]int, len(project.Files))
	for i, f := range project.Files {
		index[f.Name] = i
	}

	diffs := make([]types.FileDiff, 0, len(files))
	for _, f := range files {
		if i, ok := index[f.Name]; ok {
			diff := DiffFile(f.Name, project.Files[i].Content, f.Content)
			project.Files[i] = f
			diffs = append(diffs, diff)
			continue
		}

		diff := DiffFile(f.Name, "", f.Content)
		diff.Created = true
		index[f.Name] = len(project.Files)
		project.Files = append(project.Files, f)
		diffs = append(diffs, diff)
	}

	return diffs
}

// selectActiveFile picks an active file when none is set: the first result
// file whose name contains "html", falling back to the first file in the
// result's own order.
func selectActiveFile(project *types.Project, files []types.ProjectFile) {
	if project.ActiveFile != "" || len(files) == 0 {
		return
	}

	for _, f := range files {
		if strings.Contains(f.Name, "html") {
			project.ActiveFile = f.Name
			return
		}
	}
	project.ActiveFile = files[0].Name
}

func applyEnvironmentDelta(project *types.Project, delta map[string]*string) {
	if len(delta) == 0 {
		return
	}

	if project.Environment == nil {
		project.Environment = make(map[string]string)
	}

	for key, value := range delta {
		if value == nil {
			delete(project.Environment, key)
		} else {
			project.Environment[key] = *value
		}
	}
}
