package storage

import (
	"fmt"
	"path"
	"time"
)

// CreatePath places a file name under a yyyy/mm/dd prefix so uploads spread
// across date folders instead of piling into one.
func CreatePath(fileName string) string {
	now := time.Now().UTC()
	return path.Join(
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		fmt.Sprintf("%02d", now.Day()),
		fileName,
	)
}
