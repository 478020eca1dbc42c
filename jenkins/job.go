package jenkins

import (
	"net/url"
	"strconv"
	"strings"
)

// BuildRef is the short build row embedded in job documents.
type BuildRef struct {
	Class  string `json:"_class"`
	Number int32  `json:"number"`
	Url    string `json:"url"`
}

// JobInfo mirrors a job's api/json document.
type JobInfo struct {
	Class                 string     `json:"_class"`
	Description           string     `json:"description"`
	DisplayName           string     `json:"displayName"`
	FullDisplayName       string     `json:"fullDisplayName"`
	FullName              string     `json:"fullName"`
	Name                  string     `json:"name"`
	Url                   string     `json:"url"`
	Buildable             bool       `json:"buildable"`
	Builds                []BuildRef `json:"builds"`
	Color                 string     `json:"color"`
	FirstBuild            *BuildRef  `json:"firstBuild"`
	InQueue               bool       `json:"inQueue"`
	KeepDependencies      bool       `json:"keepDependencies"`
	LastBuild             *BuildRef  `json:"lastBuild"`
	LastCompletedBuild    *BuildRef  `json:"lastCompletedBuild"`
	LastFailedBuild       *BuildRef  `json:"lastFailedBuild"`
	LastStableBuild       *BuildRef  `json:"lastStableBuild"`
	LastSuccessfulBuild   *BuildRef  `json:"lastSuccessfulBuild"`
	LastUnstableBuild     *BuildRef  `json:"lastUnstableBuild"`
	LastUnsuccessfulBuild *BuildRef  `json:"lastUnsuccessfulBuild"`
	NextBuildNumber       int32      `json:"nextBuildNumber"`
	ConcurrentBuild       bool       `json:"concurrentBuild"`
	DownstreamProjects    []JobRef   `json:"downstreamProjects"`
	UpstreamProjects      []JobRef   `json:"upstreamProjects"`
	QueueItem             *QueueItem `json:"queueItem"`
	Property              []struct {
		Class                string                `json:"_class"`
		ParameterDefinitions []ParameterDefinition `json:"parameterDefinitions"`
	} `json:"property"`
	HealthReport []struct {
		Description string `json:"description"`
		Score       int    `json:"score"`
	} `json:"healthReport"`
}

// ParameterDefinition describes one build parameter of a job.
type ParameterDefinition struct {
	Class        string `json:"_class"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	DefaultValue *struct {
		Name  string      `json:"name"`
		Value interface{} `json:"value"`
	} `json:"defaultParameterValue"`
}

// Job is a handle on one Jenkins job. Base is its URL path, e.g.
// "/job/folder/job/thing"; Raw holds the last polled document.
type Job struct {
	client *JenkinsAPIClient
	Base   string
	Raw    *JobInfo
}

// Poll refreshes Raw from the server.
func (job *Job) Poll() error {
	info := &JobInfo{}
	if err := job.client.GetJSON(job.Base, info, nil); err != nil {
		return err
	}
	job.Raw = info
	return nil
}

// FullName returns the folder-qualified name derived from Base.
func (job *Job) FullName() string {
	trimmed := strings.TrimPrefix(job.Base, "/job/")
	parts := strings.Split(trimmed, "/job/")
	for i, p := range parts {
		if un, err := url.PathUnescape(p); err == nil {
			parts[i] = un
		}
	}
	return strings.Join(parts, "/")
}

func (job *Job) Name() string {
	if job.Raw != nil && job.Raw.Name != "" {
		return job.Raw.Name
	}
	full := job.FullName()
	return full[strings.LastIndex(full, "/")+1:]
}

// IsParameterized reports whether the job declares build parameters.
func (job *Job) IsParameterized() bool {
	return len(job.Parameters()) > 0
}

// Parameters returns the job's parameter definitions.
func (job *Job) Parameters() []ParameterDefinition {
	if job.Raw == nil {
		return nil
	}
	var defs []ParameterDefinition
	for _, prop := range job.Raw.Property {
		defs = append(defs, prop.ParameterDefinitions...)
	}
	return defs
}

// Invoke triggers a build. For parameterized jobs pass the parameters;
// Jenkins answers 201 with a Location header pointing at the queue
// item, which is returned as a QueueRef.
func (job *Job) Invoke(params map[string]string) (*QueueRef, error) {
	buildPath := job.Base + "/build"
	form := url.Values{}
	if len(params) > 0 {
		buildPath = job.Base + "/buildWithParameters"
		for k, v := range params {
			form.Set(k, v)
		}
	}
	resp, err := job.client.Post(buildPath, form, 200, 201, 302)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, newJenkinsError("no queue location returned when invoking "+job.FullName(), nil)
	}
	return newQueueRef(job.client, loc), nil
}

// Enable makes the job buildable again.
func (job *Job) Enable() error {
	return job.simplePost("/enable")
}

// Disable stops the job from being built; queued items stay queued.
func (job *Job) Disable() error {
	return job.simplePost("/disable")
}

// Delete removes the job from the server. The handle is dead afterward.
func (job *Job) Delete() error {
	return job.simplePost("/doDelete")
}

// Rename changes the job's short name in place and updates Base.
func (job *Job) Rename(newName string) error {
	if err := job.simplePost("/doRename?newName=" + url.QueryEscape(newName)); err != nil {
		return err
	}
	idx := strings.LastIndex(job.Base, "/job/")
	job.Base = job.Base[:idx] + "/job/" + url.PathEscape(newName)
	return job.Poll()
}

func (job *Job) simplePost(suffix string) error {
	resp, err := job.client.Post(job.Base+suffix, nil, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Config fetches the job's config.xml.
func (job *Job) Config() (string, error) {
	body, err := job.client.GetRaw(job.Base + "/config.xml")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// SetConfig replaces the job's config.xml.
func (job *Job) SetConfig(configXml string) error {
	resp, err := job.client.PostXML(job.Base+"/config.xml", configXml)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// GetBuild fetches one build of this job by number.
func (job *Job) GetBuild(number int32) (*Build, error) {
	build := &Build{client: job.client, Job: job, Raw: &BuildInfo{}}
	if err := job.client.GetJSON(job.buildPath(number), build.Raw, nil); err != nil {
		return nil, err
	}
	return build, nil
}

func (job *Job) buildPath(number int32) string {
	return job.Base + "/" + itoa32(number)
}

func (job *Job) resolveRef(ref *BuildRef) (*Build, error) {
	if ref == nil {
		return nil, &NotFoundError{Kind: "build", Name: job.FullName()}
	}
	return job.GetBuild(ref.Number)
}

// LastBuild resolves the most recent build, running or not.
func (job *Job) LastBuild() (*Build, error) {
	return job.resolveRef(job.Raw.LastBuild)
}

// LastSuccessfulBuild resolves the most recent build that succeeded.
func (job *Job) LastSuccessfulBuild() (*Build, error) {
	return job.resolveRef(job.Raw.LastSuccessfulBuild)
}

// LastCompletedBuild resolves the most recent finished build of any result.
func (job *Job) LastCompletedBuild() (*Build, error) {
	return job.resolveRef(job.Raw.LastCompletedBuild)
}

// FirstBuild resolves the oldest retained build.
func (job *Job) FirstBuild() (*Build, error) {
	return job.resolveRef(job.Raw.FirstBuild)
}

// IsQueued re-polls and reports whether the job has a pending queue item.
func (job *Job) IsQueued() (bool, error) {
	if err := job.Poll(); err != nil {
		return false, err
	}
	return job.Raw.InQueue, nil
}

// IsRunning re-polls and reports whether the last build is in progress.
func (job *Job) IsRunning() (bool, error) {
	if err := job.Poll(); err != nil {
		return false, err
	}
	if job.Raw.LastBuild == nil {
		return false, nil
	}
	last, err := job.LastBuild()
	if err != nil {
		return false, err
	}
	return last.IsRunning(), nil
}

// DownstreamJobs resolves the jobs triggered by this one.
func (job *Job) DownstreamJobs() ([]*Job, error) {
	return job.client.resolveJobRefs(job.Raw.DownstreamProjects)
}

// UpstreamJobs resolves the jobs that trigger this one.
func (job *Job) UpstreamJobs() ([]*Job, error) {
	return job.client.resolveJobRefs(job.Raw.UpstreamProjects)
}

func (j *JenkinsAPIClient) resolveJobRefs(refs []JobRef) ([]*Job, error) {
	jobs := make([]*Job, 0, len(refs))
	for _, ref := range refs {
		job, err := j.GetJob(ref.Name)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func itoa32(n int32) string {
	return strconv.FormatInt(int64(n), 10)
}
