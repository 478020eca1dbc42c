package jenkins

import (
	"net/http"
	"testing"
)

func TestGetLabel(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/label/linux/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"description":    "linux build hosts",
			"totalExecutors": 4,
			"busyExecutors":  1,
			"idleExecutors":  3,
			"nodes": []map[string]string{
				{"nodeName": "agent-1"},
				{"nodeName": "agent-2"},
			},
			"tiedJobs": []map[string]string{{"name": "nightly"}},
		})
	})

	label, err := client.GetLabel("linux")
	if err != nil {
		t.Fatal(err)
	}
	nodes := label.NodeNames()
	if len(nodes) != 2 || nodes[0] != "agent-1" || nodes[1] != "agent-2" {
		t.Errorf("NodeNames() = %v", nodes)
	}
	jobs := label.JobNames()
	if len(jobs) != 1 || jobs[0] != "nightly" {
		t.Errorf("JobNames() = %v", jobs)
	}
	if label.Raw.IdleExecutors != 3 {
		t.Errorf("idle executors = %d, want 3", label.Raw.IdleExecutors)
	}
}

func TestGetLabelUnused(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/label/ghost/api/json", func(w http.ResponseWriter, r *http.Request) {
		// Jenkins answers for any label name; unused ones are empty.
		writeJSON(w, map[string]interface{}{})
	})

	label, err := client.GetLabel("ghost")
	if err != nil {
		t.Fatal(err)
	}
	if len(label.NodeNames()) != 0 || len(label.JobNames()) != 0 {
		t.Errorf("unused label should be empty, got nodes=%v jobs=%v",
			label.NodeNames(), label.JobNames())
	}
}
