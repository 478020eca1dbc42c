package jenkins

import (
	"net/http"
	"net/url"
	"time"
)

// Endpoints of the lockable-resources plugin. Without the plugin every
// call here answers 404.
const lockableResourcesPath = "/lockable-resources"

// LockableResource mirrors one entry of the lockable-resources listing.
type LockableResource struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Note         string   `json:"note"`
	Labels       string   `json:"labels"`
	LabelsAsList []string `json:"labelsAsList"`
	Free         bool     `json:"free"`
	Locked       bool     `json:"locked"`
	LockCause    string   `json:"lockCause"`
	Reserved     bool     `json:"reserved"`
	ReservedBy   string   `json:"reservedBy"`
	Ephemeral    bool     `json:"ephemeral"`
	Stolen       bool     `json:"stolen"`
	BuildName    string   `json:"buildName"`

	client *JenkinsAPIClient
}

// ResourceLockedError is returned when a reserve request loses the race
// for a resource; the plugin answers 423 (Locked) in that case.
type ResourceLockedError struct {
	Name string
}

func (e *ResourceLockedError) Error() string {
	return "resource " + e.Name + " is busy or reserved by someone else"
}

// IsResourceLocked reports whether err is a lost reservation race.
func IsResourceLocked(err error) bool {
	_, ok := err.(*ResourceLockedError)
	return ok
}

// GetLockableResources lists the resources known to the
// lockable-resources plugin, keyed by name.
func (j *JenkinsAPIClient) GetLockableResources() (map[string]*LockableResource, error) {
	var doc struct {
		Resources []*LockableResource `json:"resources"`
	}
	if err := j.GetJSON(lockableResourcesPath, &doc, nil); err != nil {
		return nil, err
	}
	resources := make(map[string]*LockableResource, len(doc.Resources))
	for _, r := range doc.Resources {
		r.client = j
		resources[r.Name] = r
	}
	return resources, nil
}

// GetLockableResource looks one resource up by name.
func (j *JenkinsAPIClient) GetLockableResource(name string) (*LockableResource, error) {
	resources, err := j.GetLockableResources()
	if err != nil {
		return nil, err
	}
	r, ok := resources[name]
	if !ok {
		return nil, &NotFoundError{Kind: "lockable resource", Name: name}
	}
	return r, nil
}

// Reserve takes the resource for the requesting user. A free-looking
// resource may still have been grabbed since the last poll; that
// surfaces as a ResourceLockedError.
func (r *LockableResource) Reserve() error {
	return r.client.resourceRequest("reserve", r.Name)
}

// Unreserve releases a reservation made by Reserve.
func (r *LockableResource) Unreserve() error {
	return r.client.resourceRequest("unreserve", r.Name)
}

func (j *JenkinsAPIClient) resourceRequest(op, name string) error {
	form := url.Values{}
	form.Set("resource", name)
	resp, err := j.Post(lockableResourcesPath+"/"+op, form, 200, 302, http.StatusLocked)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusLocked {
		return &ResourceLockedError{Name: name}
	}
	return nil
}

// ReserveByLabel polls until a free resource carrying the label can be
// reserved and returns its name. Resources lost to a concurrent taker
// are skipped and retried on the next interval.
func (j *JenkinsAPIClient) ReserveByLabel(label string, interval, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		resources, err := j.GetLockableResources()
		if err != nil {
			return "", err
		}
		for _, r := range resources {
			if !r.Free || !r.hasLabel(label) {
				continue
			}
			err := r.Reserve()
			if err == nil {
				return r.Name, nil
			}
			if !IsResourceLocked(err) {
				return "", err
			}
		}
		if time.Now().After(deadline) {
			return "", newJenkinsError("timed out waiting for a free resource labeled "+label, nil)
		}
		time.Sleep(interval)
	}
}

func (r *LockableResource) hasLabel(label string) bool {
	for _, l := range r.LabelsAsList {
		if l == label {
			return true
		}
	}
	return false
}
