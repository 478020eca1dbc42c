package jenkins

import (
	"net/url"
	"strings"
)

// JenkinsInfo is the root api/json document. Only the fields the
// client acts on are mapped; the rest ride along in Jobs/Views refs.
type JenkinsInfo struct {
	Mode            string    `json:"mode"`
	NodeDescription string    `json:"nodeDescription"`
	NumExecutors    int       `json:"numExecutors"`
	QuietingDown    bool      `json:"quietingDown"`
	UseCrumbs       bool      `json:"useCrumbs"`
	Jobs            []JobRef  `json:"jobs"`
	Views           []ViewRef `json:"views"`
	PrimaryView     *ViewRef  `json:"primaryView"`
}

// JobRef is the short job row returned by list endpoints.
type JobRef struct {
	Class string `json:"_class"`
	Name  string `json:"name"`
	Url   string `json:"url"`
	Color string `json:"color"`
}

// Connect verifies the instance is reachable and records the server
// version from the X-Jenkins response header.
func (j *JenkinsAPIClient) Connect() error {
	req, err := j.newRequest("GET", j.baseUrl+"/api/json", nil)
	if err != nil {
		return err
	}
	resp, err := j.http.Do(req)
	if err != nil {
		return newJenkinsError("unable to reach jenkins at "+j.baseUrl, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, URL: j.baseUrl}
	}
	j.version = resp.Header.Get("X-Jenkins")
	j.log.Info.Print("connected to jenkins " + j.version + " at " + j.baseUrl)
	return nil
}

// Version returns the server version captured by Connect, e.g. "2.452.3".
func (j *JenkinsAPIClient) Version() string {
	return j.version
}

// Info polls the root document.
func (j *JenkinsAPIClient) Info() (*JenkinsInfo, error) {
	info := &JenkinsInfo{}
	if err := j.GetJSON("/", info, nil); err != nil {
		return nil, err
	}
	return info, nil
}

// QuietDown puts the master into shutdown-preparation mode: running
// builds finish, queued ones stay put.
func (j *JenkinsAPIClient) QuietDown() error {
	resp, err := j.Post("/quietDown", nil, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// CancelQuietDown leaves shutdown-preparation mode.
func (j *JenkinsAPIClient) CancelQuietDown() error {
	resp, err := j.Post("/cancelQuietDown", nil, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// IsQuietingDown reports the quiet-down flag from the root document.
func (j *JenkinsAPIClient) IsQuietingDown() (bool, error) {
	info, err := j.Info()
	if err != nil {
		return false, err
	}
	return info.QuietingDown, nil
}

// jobPath turns a full job name like "folder/subfolder/job" into the
// /job/folder/job/subfolder/job/job URL path Jenkins expects.
func jobPath(fullName string) string {
	fullName = strings.Trim(fullName, "/")
	parts := strings.Split(fullName, "/")
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return "/job/" + strings.Join(escaped, "/job/")
}

// GetJobs lists all top-level jobs. Only name, color and url are
// fetched; call Job.Poll to load the rest.
func (j *JenkinsAPIClient) GetJobs() ([]*Job, error) {
	params := url.Values{}
	params.Set("tree", "jobs[name,color,url]")
	var listing struct {
		Jobs []JobRef `json:"jobs"`
	}
	if err := j.GetJSON("/", &listing, params); err != nil {
		return nil, err
	}
	jobs := make([]*Job, 0, len(listing.Jobs))
	for _, row := range listing.Jobs {
		jobs = append(jobs, &Job{
			client: j,
			Base:   jobPath(row.Name),
			Raw:    &JobInfo{Name: row.Name, Url: row.Url, Color: row.Color},
		})
	}
	return jobs, nil
}

// GetJob fetches one job by full name. Folder paths use "/", e.g.
// "platform/nightly".
func (j *JenkinsAPIClient) GetJob(fullName string) (*Job, error) {
	job := &Job{client: j, Base: jobPath(fullName), Raw: &JobInfo{}}
	if err := job.Poll(); err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{Kind: "job", Name: fullName}
		}
		return nil, err
	}
	return job, nil
}

// HasJob reports whether a job with the given full name exists.
func (j *JenkinsAPIClient) HasJob(fullName string) (bool, error) {
	_, err := j.GetJob(fullName)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateJob creates a job from its config.xml. Folder paths are
// honored: creating "folder/thing" posts to the folder's createItem.
func (j *JenkinsAPIClient) CreateJob(fullName string, configXml string) (*Job, error) {
	if configXml == "" {
		return nil, newJenkinsError("job config xml cannot be empty", nil)
	}
	fullName = strings.Trim(fullName, "/")
	parts := strings.Split(fullName, "/")
	leaf := parts[len(parts)-1]
	createPath := "/createItem"
	if len(parts) > 1 {
		createPath = jobPath(strings.Join(parts[:len(parts)-1], "/")) + "/createItem"
	}
	resp, err := j.PostXML(createPath+"?name="+url.QueryEscape(leaf), configXml)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return j.GetJob(fullName)
}

// CopyJob clones an existing job under a new name at the top level.
func (j *JenkinsAPIClient) CopyJob(fromName, newName string) (*Job, error) {
	params := url.Values{}
	params.Set("name", newName)
	params.Set("mode", "copy")
	params.Set("from", fromName)
	resp, err := j.Post("/createItem?"+params.Encode(), nil, 200, 302)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return j.GetJob(newName)
}

// DeleteJob removes a job by full name.
func (j *JenkinsAPIClient) DeleteJob(fullName string) error {
	resp, err := j.Post(jobPath(fullName)+"/doDelete", nil, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// BuildJob triggers a job by name and returns a handle on the queue
// item Jenkins created for it. params may be nil for parameterless
// jobs.
func (j *JenkinsAPIClient) BuildJob(fullName string, params map[string]string) (*QueueRef, error) {
	job := &Job{client: j, Base: jobPath(fullName), Raw: &JobInfo{Name: fullName}}
	return job.Invoke(params)
}
