package jenkins

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestInvokeReturnsQueueRef(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Post("/job/thing/build", func(w http.ResponseWriter, r *http.Request) {
		if !requireCrumb(t, r) {
			t.Error("build trigger missing crumb")
		}
		w.Header().Set("Location", f.srv.URL+"/queue/item/7/")
		w.WriteHeader(http.StatusCreated)
	})

	job := &Job{client: client, Base: "/job/thing", Raw: &JobInfo{Name: "thing"}}
	ref, err := job.Invoke(nil)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Id != 7 {
		t.Errorf("queue id = %d, want 7", ref.Id)
	}
}

func TestInvokeWithParameters(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Post("/job/thing/buildWithParameters", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("BRANCH") != "main" || r.PostForm.Get("CLEAN") != "true" {
			t.Errorf("form = %v", r.PostForm)
		}
		w.Header().Set("Location", f.srv.URL+"/queue/item/8/")
		w.WriteHeader(http.StatusCreated)
	})

	job := &Job{client: client, Base: "/job/thing", Raw: &JobInfo{Name: "thing"}}
	if _, err := job.Invoke(map[string]string{"BRANCH": "main", "CLEAN": "true"}); err != nil {
		t.Fatal(err)
	}
}

func TestInvokeWithoutLocationHeader(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Post("/job/thing/build", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	job := &Job{client: client, Base: "/job/thing", Raw: &JobInfo{Name: "thing"}}
	if _, err := job.Invoke(nil); err == nil {
		t.Error("missing Location header should be an error")
	}
}

func TestEnableDisable(t *testing.T) {
	f, client := newFakeJenkins(t)
	var enabled, disabled bool
	f.mux.Post("/job/thing/enable", func(w http.ResponseWriter, r *http.Request) {
		enabled = true
		w.WriteHeader(http.StatusFound)
	})
	f.mux.Post("/job/thing/disable", func(w http.ResponseWriter, r *http.Request) {
		disabled = true
		w.WriteHeader(http.StatusFound)
	})

	job := &Job{client: client, Base: "/job/thing", Raw: &JobInfo{}}
	if err := job.Disable(); err != nil {
		t.Fatal(err)
	}
	if err := job.Enable(); err != nil {
		t.Fatal(err)
	}
	if !enabled || !disabled {
		t.Errorf("enabled=%v disabled=%v", enabled, disabled)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	f, client := newFakeJenkins(t)
	current := "<project><description>v1</description></project>"
	f.mux.Get("/job/thing/config.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(current))
	})
	f.mux.Post("/job/thing/config.xml", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		current = string(body)
		w.WriteHeader(http.StatusOK)
	})

	job := &Job{client: client, Base: "/job/thing", Raw: &JobInfo{}}
	xml, err := job.Config()
	if err != nil {
		t.Fatal(err)
	}
	if xml != "<project><description>v1</description></project>" {
		t.Errorf("config = %q", xml)
	}
	if err := job.SetConfig("<project><description>v2</description></project>"); err != nil {
		t.Fatal(err)
	}
	xml, _ = job.Config()
	if xml != "<project><description>v2</description></project>" {
		t.Errorf("config after update = %q", xml)
	}
}

func TestRenameUpdatesBase(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Post("/job/old/doRename", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("newName"); got != "new" {
			t.Errorf("newName = %q", got)
		}
		w.WriteHeader(http.StatusFound)
	})
	f.mux.Get("/job/new/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"name": "new"})
	})

	job := &Job{client: client, Base: "/job/old", Raw: &JobInfo{Name: "old"}}
	if err := job.Rename("new"); err != nil {
		t.Fatal(err)
	}
	if job.Base != "/job/new" {
		t.Errorf("Base = %q, want /job/new", job.Base)
	}
	if job.Name() != "new" {
		t.Errorf("Name() = %q", job.Name())
	}
}

func TestLastSuccessfulBuildResolution(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/job/thing/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"name":                "thing",
			"lastSuccessfulBuild": map[string]interface{}{"number": 12, "url": f.srv.URL + "/job/thing/12/"},
		})
	})
	f.mux.Get("/job/thing/12/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"number": 12, "result": "SUCCESS"})
	})

	job, err := client.GetJob("thing")
	if err != nil {
		t.Fatal(err)
	}
	build, err := job.LastSuccessfulBuild()
	if err != nil {
		t.Fatal(err)
	}
	if build.Number() != 12 || !build.IsGood() {
		t.Errorf("build = #%d result %q", build.Number(), build.Raw.Result)
	}
}

func TestLastBuildOnFreshJob(t *testing.T) {
	_, client := newFakeJenkins(t)
	job := &Job{client: client, Base: "/job/fresh", Raw: &JobInfo{Name: "fresh"}}
	_, err := job.LastBuild()
	if !IsNotFound(err) {
		t.Errorf("LastBuild on never-built job: %v, want NotFoundError", err)
	}
}

func TestJobFullName(t *testing.T) {
	job := &Job{Base: "/job/folder/job/has%20space"}
	if got := job.FullName(); got != "folder/has space" {
		t.Errorf("FullName() = %q", got)
	}
	if got := job.Name(); got != "has space" {
		t.Errorf("Name() = %q", got)
	}
}

func TestIsParameterized(t *testing.T) {
	raw := &JobInfo{}
	doc := `{"property":[{"_class":"hudson.model.ParametersDefinitionProperty",
		"parameterDefinitions":[{"name":"BRANCH","type":"StringParameterDefinition"}]}]}`
	if err := json.Unmarshal([]byte(doc), raw); err != nil {
		t.Fatal(err)
	}
	job := &Job{Raw: raw}
	if !job.IsParameterized() {
		t.Error("job with parameter definitions should report parameterized")
	}
	if params := job.Parameters(); len(params) != 1 || params[0].Name != "BRANCH" {
		t.Errorf("Parameters() = %+v", params)
	}
}

func TestDownstreamJobs(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/job/up/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"name":               "up",
			"downstreamProjects": []map[string]string{{"name": "down", "url": f.srv.URL + "/job/down/"}},
		})
	})
	f.mux.Get("/job/down/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"name": "down"})
	})

	job, err := client.GetJob("up")
	if err != nil {
		t.Fatal(err)
	}
	downstream, err := job.DownstreamJobs()
	if err != nil {
		t.Fatal(err)
	}
	if len(downstream) != 1 || downstream[0].Name() != "down" {
		t.Errorf("downstream = %+v", downstream)
	}
}
