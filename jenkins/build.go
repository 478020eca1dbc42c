package jenkins

import (
	"strings"
	"time"
)

// Build results as Jenkins reports them.
const (
	ResultSuccess  = "SUCCESS"
	ResultUnstable = "UNSTABLE"
	ResultFailure  = "FAILURE"
	ResultNotBuilt = "NOT_BUILT"
	ResultAborted  = "ABORTED"
)

// BuildInfo mirrors a build's api/json document.
type BuildInfo struct {
	Class             string      `json:"_class"`
	Actions           []Action    `json:"actions"`
	Artifacts         []*Artifact `json:"artifacts"`
	Building          bool        `json:"building"`
	Description       string      `json:"description"`
	DisplayName       string      `json:"displayName"`
	Duration          int64       `json:"duration"`
	EstimatedDuration int64       `json:"estimatedDuration"`
	FullDisplayName   string      `json:"fullDisplayName"`
	Id                string      `json:"id"`
	KeepLog           bool        `json:"keepLog"`
	Number            int32       `json:"number"`
	QueueId           int64       `json:"queueId"`
	Result            string      `json:"result"`
	Timestamp         int64       `json:"timestamp"`
	Url               string      `json:"url"`
	BuiltOn           string      `json:"builtOn"`
	NextBuild         *BuildRef   `json:"nextBuild"`
	PreviousBuild     *BuildRef   `json:"previousBuild"`
	ChangeSets        []struct {
		Kind  string `json:"kind"`
		Items []struct {
			CommitId string `json:"commitId"`
			Msg      string `json:"msg"`
			Author   struct {
				FullName string `json:"fullName"`
			} `json:"author"`
		} `json:"items"`
	} `json:"changeSets"`
}

// Action is the polymorphic "actions" entry; causes and parameters are
// the two shapes the client cares about.
type Action struct {
	Class      string      `json:"_class"`
	Causes     []Cause     `json:"causes"`
	Parameters []Parameter `json:"parameters"`
}

// Cause explains why a build ran, including upstream linkage.
type Cause struct {
	Class            string `json:"_class"`
	ShortDescription string `json:"shortDescription"`
	UserId           string `json:"userId"`
	UserName         string `json:"userName"`
	UpstreamBuild    int32  `json:"upstreamBuild"`
	UpstreamProject  string `json:"upstreamProject"`
	UpstreamUrl      string `json:"upstreamUrl"`
}

// Parameter is one resolved build parameter.
type Parameter struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Build is a handle on one build of a job.
type Build struct {
	client *JenkinsAPIClient
	Job    *Job
	Raw    *BuildInfo
}

// Poll refreshes Raw from the server.
func (b *Build) Poll() error {
	info := &BuildInfo{}
	if err := b.client.GetJSON(b.basePath(), info, nil); err != nil {
		return err
	}
	b.Raw = info
	return nil
}

func (b *Build) basePath() string {
	return b.Job.buildPath(b.Raw.Number)
}

func (b *Build) Number() int32 {
	return b.Raw.Number
}

// IsRunning reports the building flag from the last poll.
func (b *Build) IsRunning() bool {
	return b.Raw.Building
}

// IsGood reports a finished, successful build.
func (b *Build) IsGood() bool {
	return !b.Raw.Building && b.Raw.Result == ResultSuccess
}

// StartedAt converts the millisecond timestamp Jenkins reports.
func (b *Build) StartedAt() time.Time {
	return time.UnixMilli(b.Raw.Timestamp)
}

// Console fetches the full plain-text console log.
func (b *Build) Console() (string, error) {
	body, err := b.client.GetRaw(b.basePath() + "/consoleText")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Stop aborts a running build. Stopping a finished build is a no-op on
// the Jenkins side.
func (b *Build) Stop() error {
	resp, err := b.client.Post(b.basePath()+"/stop", nil, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// WaitUntilComplete polls until the build leaves the running state or
// timeout elapses.
func (b *Build) WaitUntilComplete(interval, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := b.Poll(); err != nil {
			return err
		}
		if !b.Raw.Building {
			return nil
		}
		if time.Now().After(deadline) {
			return newJenkinsError("timed out waiting for build "+b.Raw.FullDisplayName+" to complete", nil)
		}
		time.Sleep(interval)
	}
}

// EnvVars fetches the injected environment variables of the build.
// Requires the envinject plugin; without it Jenkins answers 404.
func (b *Build) EnvVars() (map[string]string, error) {
	var doc struct {
		EnvMap map[string]string `json:"envMap"`
	}
	if err := b.client.GetJSON(b.basePath()+"/injectedEnvVars", &doc, nil); err != nil {
		return nil, err
	}
	return doc.EnvMap, nil
}

// Causes flattens the cause entries out of the actions list.
func (b *Build) Causes() []Cause {
	var causes []Cause
	for _, a := range b.Raw.Actions {
		causes = append(causes, a.Causes...)
	}
	return causes
}

// Parameters flattens the resolved parameters out of the actions list.
func (b *Build) Parameters() []Parameter {
	var params []Parameter
	for _, a := range b.Raw.Actions {
		params = append(params, a.Parameters...)
	}
	return params
}

// UpstreamBuild resolves the build that triggered this one, if any
// cause carries upstream linkage.
func (b *Build) UpstreamBuild() (*Build, error) {
	for _, c := range b.Causes() {
		if c.UpstreamProject == "" {
			continue
		}
		job, err := b.client.GetJob(c.UpstreamProject)
		if err != nil {
			return nil, err
		}
		return job.GetBuild(c.UpstreamBuild)
	}
	return nil, &NotFoundError{Kind: "upstream build", Name: b.Raw.FullDisplayName}
}

// Artifacts returns handles on the build's archived artifacts.
func (b *Build) Artifacts() []*Artifact {
	for _, a := range b.Raw.Artifacts {
		a.build = b
	}
	return b.Raw.Artifacts
}

// GetArtifact looks an artifact up by file name.
func (b *Build) GetArtifact(fileName string) (*Artifact, error) {
	for _, a := range b.Artifacts() {
		if a.FileName == fileName || strings.HasSuffix(a.RelativePath, "/"+fileName) {
			return a, nil
		}
	}
	return nil, &NotFoundError{Kind: "artifact", Name: fileName}
}
