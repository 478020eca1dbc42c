package jenkins

import (
	"encoding/json"
	"net/url"
)

// NodeInfo mirrors one computer entry of /computer/api/json.
type NodeInfo struct {
	Class               string `json:"_class"`
	DisplayName         string `json:"displayName"`
	Description         string `json:"description"`
	Idle                bool   `json:"idle"`
	JnlpAgent           bool   `json:"jnlpAgent"`
	LaunchSupported     bool   `json:"launchSupported"`
	ManualLaunchAllowed bool   `json:"manualLaunchAllowed"`
	NumExecutors        int    `json:"numExecutors"`
	Offline             bool   `json:"offline"`
	OfflineCauseReason  string `json:"offlineCauseReason"`
	TemporarilyOffline  bool   `json:"temporarilyOffline"`
}

// Node is a handle on one agent (or the built-in node).
type Node struct {
	client *JenkinsAPIClient
	Name   string
	Raw    *NodeInfo
}

// NodeSpec describes a JNLP agent to create.
type NodeSpec struct {
	Name         string
	Description  string
	NumExecutors int
	RemoteFS     string
	Labels       string
	Exclusive    bool
}

// nodeUrlName maps display names onto the path segment Jenkins uses:
// the built-in node lives under "(master)" or "(built-in)" depending on
// the server version.
func nodeUrlName(displayName string) string {
	switch displayName {
	case "master", "Built-In Node":
		return "(built-in)"
	}
	return url.PathEscape(displayName)
}

// GetNodes lists all computers known to the instance.
func (j *JenkinsAPIClient) GetNodes() ([]*Node, error) {
	var doc struct {
		Computer []*NodeInfo `json:"computer"`
	}
	if err := j.GetJSON("/computer", &doc, nil); err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(doc.Computer))
	for _, info := range doc.Computer {
		nodes = append(nodes, &Node{client: j, Name: info.DisplayName, Raw: info})
	}
	return nodes, nil
}

// GetNode fetches one computer by display name.
func (j *JenkinsAPIClient) GetNode(name string) (*Node, error) {
	node := &Node{client: j, Name: name, Raw: &NodeInfo{}}
	if err := node.Poll(); err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{Kind: "node", Name: name}
		}
		return nil, err
	}
	return node, nil
}

// CreateNode registers a new JNLP agent and returns its handle.
func (j *JenkinsAPIClient) CreateNode(spec NodeSpec) (*Node, error) {
	if spec.NumExecutors == 0 {
		spec.NumExecutors = 1
	}
	if spec.RemoteFS == "" {
		spec.RemoteFS = "/var/lib/jenkins"
	}
	mode := "NORMAL"
	if spec.Exclusive {
		mode = "EXCLUSIVE"
	}
	payload := map[string]interface{}{
		"name":              spec.Name,
		"nodeDescription":   spec.Description,
		"numExecutors":      spec.NumExecutors,
		"remoteFS":          spec.RemoteFS,
		"labelString":       spec.Labels,
		"mode":              mode,
		"retentionStrategy": map[string]string{"stapler-class": "hudson.slaves.RetentionStrategy$Always"},
		"launcher":          map[string]string{"stapler-class": "hudson.slaves.JNLPLauncher"},
		"nodeProperties":    map[string]interface{}{"stapler-class-bag": true},
	}
	blob, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("name", spec.Name)
	form.Set("type", "hudson.slaves.DumbSlave$DescriptorImpl")
	form.Set("json", string(blob))
	resp, err := j.Post("/computer/doCreateItem", form, 200, 302)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return j.GetNode(spec.Name)
}

// Poll refreshes Raw from the server.
func (n *Node) Poll() error {
	info := &NodeInfo{}
	if err := n.client.GetJSON("/computer/"+nodeUrlName(n.Name), info, nil); err != nil {
		return err
	}
	n.Raw = info
	return nil
}

// IsOnline re-polls and reports whether the node accepts builds.
func (n *Node) IsOnline() (bool, error) {
	if err := n.Poll(); err != nil {
		return false, err
	}
	return !n.Raw.Offline, nil
}

// IsIdle re-polls and reports whether the node is running anything.
func (n *Node) IsIdle() (bool, error) {
	if err := n.Poll(); err != nil {
		return false, err
	}
	return n.Raw.Idle, nil
}

// SetOffline marks the node temporarily offline with a reason. Already
// offline nodes keep their state but get the new message.
func (n *Node) SetOffline(message string) error {
	if err := n.Poll(); err != nil {
		return err
	}
	form := url.Values{}
	form.Set("offlineMessage", message)
	if n.Raw.Offline {
		return n.togglePost("/changeOfflineCause", form)
	}
	return n.togglePost("/toggleOffline", form)
}

// SetOnline brings a temporarily-offline node back.
func (n *Node) SetOnline() error {
	if err := n.Poll(); err != nil {
		return err
	}
	if !n.Raw.Offline {
		return nil
	}
	if !n.Raw.TemporarilyOffline {
		return newJenkinsError("node "+n.Name+" is disconnected, not temporarily offline; it cannot be toggled online", nil)
	}
	return n.togglePost("/toggleOffline", nil)
}

// Delete removes the agent from the instance.
func (n *Node) Delete() error {
	return n.togglePost("/doDelete", nil)
}

func (n *Node) togglePost(suffix string, form url.Values) error {
	resp, err := n.client.Post("/computer/"+nodeUrlName(n.Name)+suffix, form, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
