package changelog

import (
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"
)

// VersionDateLayout labels entries that carry no explicit version.
const VersionDateLayout = "2006.01.02"

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// VersionLabel returns the first version number mentioned in message, or
// date formatted as YYYY.MM.DD when there is none. Valid semantic versions
// are normalized; anything else is returned as written.
func VersionLabel(message string, date time.Time) string {
	match := versionPattern.FindStringSubmatch(message)
	if match == nil {
		return date.Format(VersionDateLayout)
	}
	if v, err := semver.NewVersion(match[1]); err == nil {
		return v.String()
	}
	return match[1]
}
