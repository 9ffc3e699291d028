package csvplugin

import (
	"bufio"
	"io"
	"strings"
)

// delimiterCandidates are the separators considered during detection,
// in priority order for tie-breaking.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// resolveDelimiter returns the field delimiter for a source file.
// TSV files bypass detection and are always tab-delimited; everything else
// is sniffed from a prefix of the file. Detection never fails: any problem
// falls back to comma.
func resolveDelimiter(f *file) rune {
	if f.isTSV() {
		return tsvDelimiter
	}

	reader, closer, err := f.openReader()
	if err != nil {
		return csvDelimiter
	}
	defer closer()

	sample := make([]byte, sniffSampleSize)
	n, err := io.ReadFull(decodeText(reader), sample)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return csvDelimiter
	}

	return detectDelimiter(string(sample[:n]))
}

// detectDelimiter statistically detects the most likely delimiter in a text
// sample. A candidate wins when it appears the same nonzero number of times
// on every sampled line; among consistent candidates the one with the most
// occurrences per line is chosen. If no candidate is consistent the one with
// the highest count on the first line wins, and an undecidable sample
// defaults to comma.
func detectDelimiter(sample string) rune {
	lines := sampleLines(sample)
	if len(lines) == 0 {
		return csvDelimiter
	}

	bestCount := 0
	best := csvDelimiter
	for _, candidate := range delimiterCandidates {
		count := consistentCount(lines, candidate)
		if count > bestCount {
			bestCount = count
			best = candidate
		}
	}
	if bestCount > 0 {
		return best
	}

	// No consistent candidate; fall back to the busiest one on the first line.
	for _, candidate := range delimiterCandidates {
		count := strings.Count(lines[0], string(candidate))
		if count > bestCount {
			bestCount = count
			best = candidate
		}
	}
	return best
}

// sampleLines splits a sniff sample into complete lines. The last line is
// discarded when the sample filled the whole sniff window, since it was
// likely cut mid-row.
func sampleLines(sample string) []string {
	truncated := len(sample) >= sniffSampleSize

	scanner := bufio.NewScanner(strings.NewReader(sample))
	var lines []string
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if truncated && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// consistentCount returns the per-line occurrence count of the candidate if
// that count is identical and nonzero across all lines, else 0.
func consistentCount(lines []string, candidate rune) int {
	count := strings.Count(lines[0], string(candidate))
	if count == 0 {
		return 0
	}
	for _, line := range lines[1:] {
		if strings.Count(line, string(candidate)) != count {
			return 0
		}
	}
	return count
}
