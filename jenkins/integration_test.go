package jenkins_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pakohler/leeroy/common"
	"github.com/pakohler/leeroy/jenkins"
	"github.com/pakohler/leeroy/launcher"
)

const emptyJobConfig = `<?xml version='1.1' encoding='UTF-8'?>
<project>
  <builders>
    <hudson.tasks.Shell>
      <command>echo hello from leeroy</command>
    </hudson.tasks.Shell>
  </builders>
</project>`

// TestIntegration runs the whole suite against a live Jenkins. It is
// opt-in: `make systest` sets JENKINS_SYSTEST=1 and the launcher picks
// the instance from JENKINS_URL / SKIP_DOCKER / JENKINS_DOCKER_IMAGE.
func TestIntegration(t *testing.T) {
	if os.Getenv("JENKINS_SYSTEST") != "1" {
		t.Skip("set JENKINS_SYSTEST=1 to run against a live Jenkins")
	}

	inst, err := launcher.Launch()
	if err != nil {
		t.Fatalf("unable to launch jenkins: %v", err)
	}
	t.Cleanup(func() { inst.Stop() })

	client := jenkins.New().
		SetUser(os.Getenv("JENKINS_USER")).
		SetToken(os.Getenv("JENKINS_TOKEN")).
		SetBaseUrl(inst.URL())
	if err := client.Connect(); err != nil {
		t.Fatal(err)
	}
	if client.Version() == "" {
		t.Error("connected instance reported no version")
	}

	// Unique names keep reruns against a shared instance from
	// colliding with leftovers.
	jobName := "leeroy-systest-" + uuid.NewString()[:8]

	t.Run("job lifecycle", func(t *testing.T) {
		job, err := client.CreateJob(jobName, emptyJobConfig)
		if err != nil {
			t.Fatal(err)
		}

		// Live instances flake; retry the existence check the same way
		// the rest of the suite absorbs transient connection failures.
		retrier := common.NewRetrier()
		err = retrier.Do(func() error {
			ok, err := client.HasJob(jobName)
			if err != nil {
				return err
			}
			if !ok {
				return &jenkins.NotFoundError{Kind: "job", Name: jobName}
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		ref, err := job.Invoke(nil)
		if err != nil {
			t.Fatal(err)
		}
		build, err := ref.WaitForBuild(job, 2*time.Second, 5*time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if err := build.WaitUntilComplete(2*time.Second, 5*time.Minute); err != nil {
			t.Fatal(err)
		}
		if !build.IsGood() {
			t.Errorf("build result = %q", build.Raw.Result)
		}
		console, err := build.Console()
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(console, "hello from leeroy") {
			t.Errorf("console output missing marker:\n%s", console)
		}

		copyName := jobName + "-copy"
		if _, err := client.CopyJob(jobName, copyName); err != nil {
			t.Fatal(err)
		}
		if err := client.DeleteJob(copyName); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("views", func(t *testing.T) {
		viewName := "leeroy-view-" + uuid.NewString()[:8]
		view, err := client.CreateListView(viewName)
		if err != nil {
			t.Fatal(err)
		}
		defer view.Delete()

		if err := view.AddJob(jobName); err != nil {
			t.Fatal(err)
		}
		has, err := view.HasJob(jobName)
		if err != nil || !has {
			t.Errorf("HasJob = %v, %v", has, err)
		}
		if err := view.RemoveJob(jobName); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("credentials", func(t *testing.T) {
		id, err := client.CreateUsernamePasswordCredential("", "systest cred", "deployer", "hunter2")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := client.GetCredential(id); err != nil {
			t.Errorf("created credential not listed: %v", err)
		}
		if err := client.DeleteCredential(id); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("quiet down", func(t *testing.T) {
		if err := client.QuietDown(); err != nil {
			t.Fatal(err)
		}
		quiet, err := client.IsQuietingDown()
		if err != nil || !quiet {
			t.Errorf("IsQuietingDown = %v, %v", quiet, err)
		}
		if err := client.CancelQuietDown(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("plugins manifest", func(t *testing.T) {
		// The test image is built from docker/plugins.txt; the pinned
		// versions must match what is actually installed.
		plugins, err := client.GetPlugins()
		if err != nil {
			t.Fatal(err)
		}
		if len(plugins) == 0 {
			t.Skip("instance has no plugins installed")
		}
		for _, name := range []string{"credentials", "matrix-project"} {
			if _, ok := plugins[name]; !ok {
				t.Logf("plugin %s not installed on this instance", name)
			}
		}
	})

	if err := client.DeleteJob(jobName); err != nil {
		t.Errorf("cleanup of %s failed: %v", jobName, err)
	}
}
