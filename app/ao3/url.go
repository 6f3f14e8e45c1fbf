package ao3

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var workIDPattern = regexp.MustCompile(`archiveofourown\.org/works/(\d+)`)

// WorkIDFromURL extracts the numeric work ID from an AO3 work URL. A bare
// numeric ID is accepted as well.
func WorkIDFromURL(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)

	if match := workIDPattern.FindStringSubmatch(raw); match != nil {
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not a valid url", raw)
		}
		return id, nil
	}

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		return id, nil
	}

	return 0, fmt.Errorf("%s is not a valid url", raw)
}
