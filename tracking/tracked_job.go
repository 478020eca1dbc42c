package tracking

import "strings"

// TrackedJob pairs a Jenkins job (full folder-qualified name) with the
// local directory its artifacts sync into. BuildNumber is the last
// successful build whose artifacts were fully downloaded.
type TrackedJob struct {
	Name        string `yaml:"name" json:"name"`
	SyncDir     string `yaml:"sync_dir" json:"sync_dir"`
	BuildNumber int32  `yaml:"-" json:"build_number"`
}

func NewTrackedJob(name string, syncDir string) *TrackedJob {
	name = strings.ToLower(name)
	name = strings.Trim(name, "/")
	return &TrackedJob{
		Name:    name,
		SyncDir: syncDir,
	}
}

func (t *TrackedJob) GetName() string {
	return t.Name
}

// Equals merges state between duplicate entries for the same job: the
// higher last-seen build number wins on both sides.
func (t *TrackedJob) Equals(other *TrackedJob) bool {
	if t.Name != other.Name {
		return false
	}
	if t.BuildNumber >= other.BuildNumber {
		other.BuildNumber = t.BuildNumber
	} else {
		t.BuildNumber = other.BuildNumber
	}
	return true
}
