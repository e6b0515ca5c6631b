package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
	"github.com/kkeuning/gitcore/pkg/treediff"
)

const absentID = "0000000"

// patchFile is one file's worth of rendered diff input. A nil data side
// means the file is absent on that side.
type patchFile struct {
	path    string
	oldData []byte
	newData []byte
	oldID   string
	newID   string
	oldMode string
	newMode string
}

// patchFilesFromChanges loads the blob content behind a tree diff so it can
// be rendered as a patch.
func patchFilesFromChanges(repo *sourcerepo.SourceRepository, changes treediff.Changes) ([]patchFile, error) {
	paths := make([]scpath.RelativePath, 0, len(changes))
	for p := range changes {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	files := make([]patchFile, 0, len(paths))
	for _, p := range paths {
		change := changes[p]
		file := patchFile{path: p.String(), oldID: absentID, newID: absentID}

		if change.Old != nil {
			data, err := blobBytes(repo, change.Old.SHA)
			if err != nil {
				return nil, err
			}
			file.oldData = data
			file.oldID = change.Old.SHA.Short().String()
			file.oldMode = change.Old.Mode.ToOctalString()
		}
		if change.New != nil {
			data, err := blobBytes(repo, change.New.SHA)
			if err != nil {
				return nil, err
			}
			file.newData = data
			file.newID = change.New.SHA.Short().String()
			file.newMode = change.New.Mode.ToOctalString()
		}

		files = append(files, file)
	}
	return files, nil
}

func blobBytes(repo *sourcerepo.SourceRepository, sha objects.ObjectHash) ([]byte, error) {
	b, err := repo.ReadBlobObject(sha)
	if err != nil {
		return nil, err
	}
	content, err := b.Content()
	if err != nil {
		return nil, err
	}
	return content.Bytes(), nil
}

// renderPatchFiles writes a unified diff for each file.
func renderPatchFiles(w io.Writer, files []patchFile) {
	for _, f := range files {
		renderPatchFile(w, f)
	}
}

func renderPatchFile(w io.Writer, f patchFile) {
	fmt.Fprintf(w, "diff --git a/%s b/%s\n", f.path, f.path)

	switch {
	case f.oldData == nil:
		fmt.Fprintf(w, "new file mode %s\n", f.newMode)
		fmt.Fprintf(w, "index %s..%s\n", absentID, f.newID)
		fmt.Fprintf(w, "--- /dev/null\n")
		fmt.Fprintf(w, "+++ b/%s\n", f.path)
	case f.newData == nil:
		fmt.Fprintf(w, "deleted file mode %s\n", f.oldMode)
		fmt.Fprintf(w, "index %s..%s\n", f.oldID, absentID)
		fmt.Fprintf(w, "--- a/%s\n", f.path)
		fmt.Fprintf(w, "+++ /dev/null\n")
	default:
		if f.oldMode != f.newMode {
			fmt.Fprintf(w, "old mode %s\n", f.oldMode)
			fmt.Fprintf(w, "new mode %s\n", f.newMode)
		}
		// A pure mode change has no content lines at all.
		if f.oldID == f.newID {
			return
		}
		if f.oldMode == f.newMode {
			fmt.Fprintf(w, "index %s..%s %s\n", f.oldID, f.newID, f.oldMode)
		} else {
			fmt.Fprintf(w, "index %s..%s\n", f.oldID, f.newID)
		}
		fmt.Fprintf(w, "--- a/%s\n", f.path)
		fmt.Fprintf(w, "+++ b/%s\n", f.path)
	}

	for _, h := range unifiedHunks(splitLines(f.oldData), splitLines(f.newData)) {
		fmt.Fprintf(w, "@@ -%s +%s @@\n", h.oldRange(), h.newRange())
		for _, line := range h.lines {
			fmt.Fprintln(w, line)
		}
	}
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.Split(s, "\n")
}

// editKind is one row of the line-level edit script.
type editKind int

const (
	editEqual editKind = iota
	editDelete
	editInsert
)

type edit struct {
	kind editKind
	text string
}

// editScript computes a line-level diff via longest-common-subsequence
// dynamic programming. Fine for the file sizes a patch view handles.
func editScript(old, new []string) []edit {
	n, m := len(old), len(new)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if old[i] == new[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var script []edit
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case old[i] == new[j]:
			script = append(script, edit{editEqual, old[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			script = append(script, edit{editDelete, old[i]})
			i++
		default:
			script = append(script, edit{editInsert, new[j]})
			j++
		}
	}
	for ; i < n; i++ {
		script = append(script, edit{editDelete, old[i]})
	}
	for ; j < m; j++ {
		script = append(script, edit{editInsert, new[j]})
	}
	return script
}

const hunkContext = 3

// hunk is a run of edits with surrounding context, ready to print.
type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []string
}

func (h hunk) oldRange() string { return fmt.Sprintf("%d,%d", h.oldStart, h.oldCount) }
func (h hunk) newRange() string { return fmt.Sprintf("%d,%d", h.newStart, h.newCount) }

// unifiedHunks groups an edit script into hunks with up to three lines of
// context on either side, merging hunks whose context would overlap.
func unifiedHunks(old, new []string) []hunk {
	script := editScript(old, new)

	changed := make([]bool, len(script))
	hasChange := false
	for i, e := range script {
		if e.kind != editEqual {
			changed[i] = true
			hasChange = true
		}
	}
	if !hasChange {
		return nil
	}

	// keep marks every script row included in some hunk.
	keep := make([]bool, len(script))
	for i := range script {
		if !changed[i] {
			continue
		}
		lo := i - hunkContext
		if lo < 0 {
			lo = 0
		}
		hi := i + hunkContext
		if hi >= len(script) {
			hi = len(script) - 1
		}
		for k := lo; k <= hi; k++ {
			keep[k] = true
		}
	}

	var hunks []hunk
	oldLine, newLine := 1, 1
	i := 0
	for i < len(script) {
		if !keep[i] {
			if script[i].kind != editInsert {
				oldLine++
			}
			if script[i].kind != editDelete {
				newLine++
			}
			i++
			continue
		}

		h := hunk{oldStart: oldLine, newStart: newLine}
		for i < len(script) && keep[i] {
			e := script[i]
			switch e.kind {
			case editEqual:
				h.lines = append(h.lines, " "+e.text)
				h.oldCount++
				h.newCount++
				oldLine++
				newLine++
			case editDelete:
				h.lines = append(h.lines, "-"+e.text)
				h.oldCount++
				oldLine++
			case editInsert:
				h.lines = append(h.lines, "+"+e.text)
				h.newCount++
				newLine++
			}
			i++
		}
		hunks = append(hunks, h)
	}

	return hunks
}
