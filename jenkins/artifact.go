package jenkins

// Artifact is one archived file of a build.
type Artifact struct {
	FileName     string `json:"fileName"`
	RelativePath string `json:"relativePath"`

	build *Build
}

// Url returns the artifact's download URL path.
func (a *Artifact) Url() string {
	return a.build.basePath() + "/artifact/" + a.RelativePath
}

// SaveTo downloads the artifact into destDir, resuming a partial file
// if one is already there.
func (a *Artifact) SaveTo(destDir string) error {
	return a.build.client.DownloadFile(a.Url(), destDir)
}
