package window

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// FilePrefix and FileSuffix frame every claimed export file name.
const (
	FilePrefix = "mse-funds-data-"
	FileSuffix = ".xls"
)

// filenamePattern matches exactly the names produced by Filename.
var filenamePattern = regexp.MustCompile(`^mse-funds-data-(\d+)-(\d{4})-(\d{2})\.xls$`)

// Filename returns mse-funds-data-{iteration}-{year}-{month:02d}.xls.
func Filename(iteration, year int, month time.Month) string {
	return fmt.Sprintf("%s%d-%d-%02d%s", FilePrefix, iteration, year, int(month), FileSuffix)
}

// FileRef is a parsed export file name.
type FileRef struct {
	Name      string
	Iteration int
	Year      int
	Month     time.Month
}

// ParseFilename parses a name produced by Filename.
// It reports false for any other name.
func ParseFilename(name string) (FileRef, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return FileRef{}, false
	}

	iteration, err := strconv.Atoi(m[1])
	if err != nil || iteration < 1 {
		return FileRef{}, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return FileRef{}, false
	}
	month, err := strconv.Atoi(m[3])
	if err != nil || month < 1 || month > 12 {
		return FileRef{}, false
	}

	return FileRef{Name: name, Iteration: iteration, Year: year, Month: time.Month(month)}, true
}
