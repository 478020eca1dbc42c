package jenkins

import (
	"encoding/json"
	"net/url"
)

// ViewRef is the short view row from the root document.
type ViewRef struct {
	Class string `json:"_class"`
	Name  string `json:"name"`
	Url   string `json:"url"`
}

// ViewInfo mirrors a view's api/json document.
type ViewInfo struct {
	Class       string   `json:"_class"`
	Name        string   `json:"name"`
	Url         string   `json:"url"`
	Description string   `json:"description"`
	Jobs        []JobRef `json:"jobs"`
}

// View is a handle on one Jenkins view.
type View struct {
	client *JenkinsAPIClient
	Name   string
	Raw    *ViewInfo
}

// GetViews lists the views of the instance.
func (j *JenkinsAPIClient) GetViews() ([]*View, error) {
	info, err := j.Info()
	if err != nil {
		return nil, err
	}
	views := make([]*View, 0, len(info.Views))
	for _, ref := range info.Views {
		views = append(views, &View{client: j, Name: ref.Name, Raw: &ViewInfo{Name: ref.Name, Url: ref.Url}})
	}
	return views, nil
}

// GetView fetches one view by name.
func (j *JenkinsAPIClient) GetView(name string) (*View, error) {
	view := &View{client: j, Name: name, Raw: &ViewInfo{}}
	if err := view.Poll(); err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{Kind: "view", Name: name}
		}
		return nil, err
	}
	return view, nil
}

// CreateListView creates an empty list view.
func (j *JenkinsAPIClient) CreateListView(name string) (*View, error) {
	payload := map[string]string{
		"name": name,
		"mode": "hudson.model.ListView",
	}
	blob, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("name", name)
	form.Set("mode", "hudson.model.ListView")
	form.Set("json", string(blob))
	resp, err := j.Post("/createView", form, 200, 302)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return j.GetView(name)
}

func (v *View) basePath() string {
	return "/view/" + url.PathEscape(v.Name)
}

// Poll refreshes Raw from the server.
func (v *View) Poll() error {
	info := &ViewInfo{}
	if err := v.client.GetJSON(v.basePath(), info, nil); err != nil {
		return err
	}
	v.Raw = info
	return nil
}

// HasJob re-polls and reports whether the view contains the job.
func (v *View) HasJob(jobName string) (bool, error) {
	if err := v.Poll(); err != nil {
		return false, err
	}
	for _, ref := range v.Raw.Jobs {
		if ref.Name == jobName {
			return true, nil
		}
	}
	return false, nil
}

// AddJob puts a top-level job on the view.
func (v *View) AddJob(jobName string) error {
	return v.simplePost("/addJobToView", jobName)
}

// RemoveJob takes a job off the view; the job itself is untouched.
func (v *View) RemoveJob(jobName string) error {
	return v.simplePost("/removeJobFromView", jobName)
}

// Delete removes the view from the instance.
func (v *View) Delete() error {
	return v.simplePost("/doDelete", "")
}

func (v *View) simplePost(suffix, jobName string) error {
	var form url.Values
	if jobName != "" {
		form = url.Values{}
		form.Set("name", jobName)
	}
	resp, err := v.client.Post(v.basePath()+suffix, form, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
