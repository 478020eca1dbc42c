package jenkins

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// QueueItem mirrors one entry of the build queue.
type QueueItem struct {
	Id           int64    `json:"id"`
	Actions      []Action `json:"actions"`
	Blocked      bool     `json:"blocked"`
	Buildable    bool     `json:"buildable"`
	InQueueSince int64    `json:"inQueueSince"`
	Params       string   `json:"params"`
	Stuck        bool     `json:"stuck"`
	Pending      bool     `json:"pending"`
	Cancelled    bool     `json:"cancelled"`
	Url          string   `json:"url"`
	Why          string   `json:"why"`
	Task         struct {
		Name  string `json:"name"`
		Url   string `json:"url"`
		Color string `json:"color"`
	} `json:"task"`
	Executable *struct {
		Number int32  `json:"number"`
		Url    string `json:"url"`
	} `json:"executable"`
}

// GetQueue lists the current build queue.
func (j *JenkinsAPIClient) GetQueue() ([]*QueueItem, error) {
	var doc struct {
		Items []*QueueItem `json:"items"`
	}
	if err := j.GetJSON("/queue", &doc, nil); err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// GetQueueItem fetches one queue item by ID. Jenkins keeps items
// around for a few minutes after they leave the queue.
func (j *JenkinsAPIClient) GetQueueItem(id int64) (*QueueItem, error) {
	item := &QueueItem{}
	if err := j.GetJSON("/queue/item/"+strconv.FormatInt(id, 10), item, nil); err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{Kind: "queue item", Name: strconv.FormatInt(id, 10)}
		}
		return nil, err
	}
	return item, nil
}

// CancelQueueItem removes a pending item from the queue. Jenkins
// answers 404 when the item already left the queue; that surfaces as a
// NotFoundError.
func (j *JenkinsAPIClient) CancelQueueItem(id int64) error {
	form := url.Values{}
	form.Set("id", strconv.FormatInt(id, 10))
	resp, err := j.Post("/queue/cancelItem", form, 200, 204, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// QueueRef is the handle returned when a job is invoked: the Location
// header of the trigger response, pointing at /queue/item/<id>/.
type QueueRef struct {
	client *JenkinsAPIClient
	Url    string
	Id     int64
}

func newQueueRef(client *JenkinsAPIClient, location string) *QueueRef {
	ref := &QueueRef{client: client, Url: location}
	trimmed := strings.TrimRight(location, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		if id, err := strconv.ParseInt(trimmed[idx+1:], 10, 64); err == nil {
			ref.Id = id
		}
	}
	return ref
}

// Poll fetches the current state of the queue item.
func (q *QueueRef) Poll() (*QueueItem, error) {
	return q.client.GetQueueItem(q.Id)
}

// Cancel removes the pending item from the queue.
func (q *QueueRef) Cancel() error {
	return q.client.CancelQueueItem(q.Id)
}

// WaitForBuild polls the queue item until Jenkins assigns it an
// executor and returns the resulting build. The build may still be
// running when this returns.
func (q *QueueRef) WaitForBuild(jobHandle *Job, interval, timeout time.Duration) (*Build, error) {
	deadline := time.Now().Add(timeout)
	for {
		item, err := q.Poll()
		if err != nil {
			return nil, err
		}
		if item.Cancelled {
			return nil, newJenkinsError("queue item "+strconv.FormatInt(q.Id, 10)+" was cancelled", nil)
		}
		if item.Executable != nil {
			return jobHandle.GetBuild(item.Executable.Number)
		}
		if time.Now().After(deadline) {
			return nil, newJenkinsError("timed out waiting for queue item "+strconv.FormatInt(q.Id, 10)+" to start building", nil)
		}
		time.Sleep(interval)
	}
}
