package jenkins

import "net/url"

// LabelInfo mirrors /label/<name>/api/json.
type LabelInfo struct {
	Description    string `json:"description"`
	TotalExecutors int    `json:"totalExecutors"`
	BusyExecutors  int    `json:"busyExecutors"`
	IdleExecutors  int    `json:"idleExecutors"`
	Nodes          []struct {
		NodeName string `json:"nodeName"`
	} `json:"nodes"`
	TiedJobs []JobRef `json:"tiedJobs"`
}

// Label is a handle on one node label.
type Label struct {
	client *JenkinsAPIClient
	Name   string
	Raw    *LabelInfo
}

// GetLabel fetches a label by name. Jenkins answers for any name; an
// unused label simply carries no nodes and no tied jobs.
func (j *JenkinsAPIClient) GetLabel(name string) (*Label, error) {
	label := &Label{client: j, Name: name, Raw: &LabelInfo{}}
	if err := label.Poll(); err != nil {
		return nil, err
	}
	return label, nil
}

// Poll refreshes Raw from the server.
func (l *Label) Poll() error {
	info := &LabelInfo{}
	if err := l.client.GetJSON("/label/"+url.PathEscape(l.Name), info, nil); err != nil {
		return err
	}
	l.Raw = info
	return nil
}

// NodeNames lists the nodes carrying this label. The built-in node
// reports an empty nodeName.
func (l *Label) NodeNames() []string {
	names := make([]string, 0, len(l.Raw.Nodes))
	for _, n := range l.Raw.Nodes {
		names = append(names, n.NodeName)
	}
	return names
}

// JobNames lists the jobs whose label expression ties them to this label.
func (l *Label) JobNames() []string {
	names := make([]string, 0, len(l.Raw.TiedJobs))
	for _, ref := range l.Raw.TiedJobs {
		names = append(names, ref.Name)
	}
	return names
}
