package jenkins

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestConnectRecordsVersion(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/api/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Jenkins", "2.452.3")
		writeJSON(w, map[string]interface{}{})
	})

	if err := client.Connect(); err != nil {
		t.Fatal(err)
	}
	if client.Version() != "2.452.3" {
		t.Errorf("Version() = %q, want 2.452.3", client.Version())
	}
}

func TestIsQuietingDown(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"quietingDown": true})
	})

	quiet, err := client.IsQuietingDown()
	if err != nil {
		t.Fatal(err)
	}
	if !quiet {
		t.Error("IsQuietingDown() = false, want true")
	}
}

func TestGetJobsUsesTree(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/api/json", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tree"); got != "jobs[name,color,url]" {
			t.Errorf("tree = %q", got)
		}
		writeJSON(w, map[string]interface{}{
			"jobs": []map[string]string{
				{"name": "alpha", "color": "blue", "url": f.srv.URL + "/job/alpha/"},
				{"name": "beta", "color": "red", "url": f.srv.URL + "/job/beta/"},
			},
		})
	})

	jobs, err := client.GetJobs()
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].Name() != "alpha" || jobs[0].Base != "/job/alpha" {
		t.Errorf("job[0] = %q base %q", jobs[0].Name(), jobs[0].Base)
	}
}

func TestGetJobNotFound(t *testing.T) {
	_, client := newFakeJenkins(t)

	_, err := client.GetJob("missing")
	if !IsNotFound(err) {
		t.Fatalf("error %v should be a NotFoundError", err)
	}
	nf := err.(*NotFoundError)
	if nf.Kind != "job" || nf.Name != "missing" {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestHasJob(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/job/present/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"name": "present"})
	})

	ok, err := client.HasJob("present")
	if err != nil || !ok {
		t.Errorf("HasJob(present) = %v, %v", ok, err)
	}
	ok, err = client.HasJob("absent")
	if err != nil || ok {
		t.Errorf("HasJob(absent) = %v, %v", ok, err)
	}
}

func TestCreateJob(t *testing.T) {
	f, client := newFakeJenkins(t)
	const configXml = "<project><description>hi</description></project>"
	var posted string
	f.mux.Post("/createItem", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "newjob" {
			t.Errorf("name param = %q", got)
		}
		if ct := r.Header.Get("Content-Type"); ct != "text/xml" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		posted = string(body)
		w.WriteHeader(http.StatusOK)
	})
	f.mux.Get("/job/newjob/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"name": "newjob"})
	})

	job, err := client.CreateJob("newjob", configXml)
	if err != nil {
		t.Fatal(err)
	}
	if posted != configXml {
		t.Errorf("posted config = %q", posted)
	}
	if job.Name() != "newjob" {
		t.Errorf("job name = %q", job.Name())
	}
}

func TestCreateJobInFolder(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Post("/job/folder/createItem", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "child" {
			t.Errorf("name param = %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})
	f.mux.Get("/job/folder/job/child/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"name": "child", "fullName": "folder/child"})
	})

	job, err := client.CreateJob("folder/child", "<project/>")
	if err != nil {
		t.Fatal(err)
	}
	if job.FullName() != "folder/child" {
		t.Errorf("FullName() = %q", job.FullName())
	}
}

func TestCreateJobRejectsEmptyConfig(t *testing.T) {
	_, client := newFakeJenkins(t)
	if _, err := client.CreateJob("x", ""); err == nil {
		t.Error("empty config xml should be rejected")
	}
}

func TestCopyJob(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Post("/createItem", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("mode") != "copy" || q.Get("from") != "orig" || q.Get("name") != "clone" {
			t.Errorf("copy params = %v", q)
		}
		w.WriteHeader(http.StatusOK)
	})
	f.mux.Get("/job/clone/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"name": "clone"})
	})

	if _, err := client.CopyJob("orig", "clone"); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteJob(t *testing.T) {
	f, client := newFakeJenkins(t)
	deleted := false
	f.mux.Post("/job/doomed/doDelete", func(w http.ResponseWriter, r *http.Request) {
		deleted = requireCrumb(t, r)
		w.WriteHeader(http.StatusFound)
	})

	if err := client.DeleteJob("doomed"); err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Error("doDelete was not posted with a crumb")
	}
}

func TestJobPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"simple", "/job/simple"},
		{"folder/child", "/job/folder/job/child"},
		{"/slashes/trimmed/", "/job/slashes/job/trimmed"},
		{"has space", "/job/has%20space"},
	}
	for _, c := range cases {
		if got := jobPath(c.in); got != c.want {
			t.Errorf("jobPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInfoParsesViews(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Get("/api/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"views": []map[string]string{{"name": "all", "url": f.srv.URL + "/"}},
		})
	})

	info, err := client.Info()
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Views) != 1 || info.Views[0].Name != "all" {
		t.Errorf("views = %+v", info.Views)
	}
}

func TestQuietDownNotConfusedByRedirectStatus(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Post("/quietDown", func(w http.ResponseWriter, r *http.Request) {
		// Jenkins answers 302 to the root page on success.
		http.Redirect(w, r, "/", http.StatusFound)
	})
	f.mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>root</html>"))
	})

	if err := client.QuietDown(); err != nil {
		t.Fatal(err)
	}
}

func TestBuildJobShortcut(t *testing.T) {
	f, client := newFakeJenkins(t)
	f.mux.Post("/job/thing/build", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", f.srv.URL+"/queue/item/42/")
		w.WriteHeader(http.StatusCreated)
	})

	ref, err := client.BuildJob("thing", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Id != 42 {
		t.Errorf("queue id = %d, want 42", ref.Id)
	}
	if !strings.Contains(ref.Url, "/queue/item/42") {
		t.Errorf("queue url = %q", ref.Url)
	}
}
