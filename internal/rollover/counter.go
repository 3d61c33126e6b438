package rollover

import (
	"regexp"
	"strconv"
)

// rolloverCountLabel is the fixed text of the counter fragment stored in task notes.
const rolloverCountLabel = "Rollover Count: "

var rolloverCountRe = regexp.MustCompile(`Rollover Count: (\d+)`)

// ParseRolloverCount returns the counter embedded in notes and whether one was found.
// Only the first fragment is considered.
func ParseRolloverCount(notes string) (int, bool) {
	m := rolloverCountRe.FindStringSubmatch(notes)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// BumpRolloverCount increments the counter fragment in place, or appends
// "Rollover Count: 1" separated from existing text by a blank line.
// All other text is returned unchanged.
func BumpRolloverCount(notes string) string {
	loc := rolloverCountRe.FindStringSubmatchIndex(notes)
	if loc == nil {
		if notes == "" {
			return rolloverCountLabel + "1"
		}
		return notes + "\n\n" + rolloverCountLabel + "1"
	}
	n, err := strconv.Atoi(notes[loc[2]:loc[3]])
	if err != nil {
		// digits too long to parse; restart the count rather than corrupt the text
		n = 0
	}
	return notes[:loc[2]] + strconv.Itoa(n+1) + notes[loc[3]:]
}
