package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cavaliercoder/grab"
	"github.com/pakohler/leeroy/logging"
)

// warDownloadURL is the stable-line war Jenkins publishes; it is the
// fallback when Docker is unavailable in the environment.
const warDownloadURL = "https://get.jenkins.io/war-stable/latest/jenkins.war"

type warInstance struct {
	url  string
	cmd  *exec.Cmd
	home string
	log  *logging.Logger
}

func (w *warInstance) URL() string { return w.url }

func (w *warInstance) Stop() error {
	if w.cmd != nil && w.cmd.Process != nil {
		if err := w.cmd.Process.Kill(); err != nil {
			return err
		}
		w.cmd.Wait()
	}
	if w.home != "" {
		return os.RemoveAll(w.home)
	}
	return nil
}

func launchWar() (Instance, error) {
	log := logging.GetLogger()
	warPath, err := fetchWar()
	if err != nil {
		return nil, err
	}
	home, err := os.MkdirTemp("", "leeroy-jenkins-home-")
	if err != nil {
		return nil, err
	}
	port, err := freePort()
	if err != nil {
		os.RemoveAll(home)
		return nil, err
	}
	url := fmt.Sprintf("http://127.0.0.1:%d", port)

	cmd := exec.Command(
		"java",
		"-Djenkins.install.runSetupWizard=false",
		"-jar", warPath,
		fmt.Sprintf("--httpPort=%d", port),
	)
	cmd.Env = append(os.Environ(), "JENKINS_HOME="+home)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(home)
		return nil, fmt.Errorf("unable to start jenkins war: %w", err)
	}
	inst := &warInstance{url: url, cmd: cmd, home: home, log: log}
	log.Info.Printf("jenkins war starting on %s (home %s)", url, home)
	if err := waitHealthy(url, 5*time.Minute); err != nil {
		inst.Stop()
		return nil, err
	}
	return inst, nil
}

// fetchWar downloads the war into the user cache dir once; grab's
// resume support means an interrupted download picks up where it left
// off on the next run.
func fetchWar() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	destDir := filepath.Join(cacheDir, "leeroy")
	if err := os.MkdirAll(destDir, 0700); err != nil {
		return "", err
	}
	warPath := filepath.Join(destDir, "jenkins.war")
	if _, err := os.Stat(warPath); err == nil {
		return warPath, nil
	}
	logging.GetLogger().Info.Print("downloading " + warDownloadURL)
	resp, err := grab.Get(warPath, warDownloadURL)
	if err != nil {
		return "", fmt.Errorf("war download failed: %w", err)
	}
	return resp.Filename, nil
}
