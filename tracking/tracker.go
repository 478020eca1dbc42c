package tracking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pakohler/leeroy/common"
	"github.com/pakohler/leeroy/jenkins"
	"github.com/pakohler/leeroy/logging"
	"github.com/pakohler/leeroy/notifications"
)

type comboError struct {
	errorSet []error
}

func (c *comboError) Error() string {
	str := "multi-error combination:\n"
	for _, e := range c.errorSet {
		str += e.Error() + "\n"
	}
	return str
}

// Tracker watches jobs for new successful builds and mirrors their
// artifacts into local directories.
type Tracker struct {
	client      *jenkins.JenkinsAPIClient
	log         *logging.Logger
	trackedJobs map[string]*TrackedJob
	interval    time.Duration
	notifiers   []notifications.Notifier
	stateDir    string
}

func (h *Tracker) Init() *Tracker {
	h.log = logging.GetLogger()
	h.trackedJobs = map[string]*TrackedJob{}
	h.notifiers = []notifications.Notifier{}
	return h
}

func (h *Tracker) SetClient(client *jenkins.JenkinsAPIClient) *Tracker {
	h.client = client
	return h
}

func (h *Tracker) SetInterval(interval time.Duration) *Tracker {
	h.interval = interval
	return h
}

// SetStateDir overrides where state.json lives; the default is the
// executable's directory.
func (h *Tracker) SetStateDir(dir string) *Tracker {
	h.stateDir = dir
	return h
}

func (h *Tracker) Track(job *TrackedJob) *Tracker {
	if existing, ok := h.trackedJobs[job.GetName()]; ok {
		existing.Equals(job)
		return h
	}
	h.trackedJobs[job.GetName()] = job
	return h
}

func (h *Tracker) AddNotifier(n notifications.Notifier) *Tracker {
	h.notifiers = append(h.notifiers, n)
	return h
}

// Go starts one polling goroutine per tracked job and blocks forever.
func (h *Tracker) Go() {
	for _, trackedJob := range h.trackedJobs {
		go h.TrackJob(trackedJob)
	}
	select {}
}

func (h *Tracker) notify(msg string) {
	for _, n := range h.notifiers {
		if err := n.Post(msg); err != nil {
			h.log.Error.Print(err.Error())
		}
	}
}

// TrackJob loops forever: poll the job, sync artifacts of any new
// successful build, save state only after a fully successful sync so
// failed downloads are retried on the next interval.
func (h *Tracker) TrackJob(tracked *TrackedJob) {
	for {
		h.checkOnce(tracked)
		time.Sleep(h.interval)
	}
}

func (h *Tracker) checkOnce(tracked *TrackedJob) {
	job, err := h.client.GetJob(tracked.GetName())
	if err != nil {
		h.notify(err.Error())
		h.log.Error.Print(err.Error())
		return
	}
	ref := job.Raw.LastSuccessfulBuild
	if ref == nil {
		h.log.Info.Printf("%s has no successful build yet; nothing to do.", tracked.GetName())
		return
	}
	if ref.Number <= tracked.BuildNumber {
		h.log.Info.Printf(
			"last observed build number %d for %s is up-to-date; no action required.",
			ref.Number,
			tracked.GetName(),
		)
		return
	}
	msg := fmt.Sprintf(
		"new build number %d for %s detected - last tracked was %d. Downloading artifacts...",
		ref.Number,
		tracked.GetName(),
		tracked.BuildNumber,
	)
	h.notify(msg)
	h.log.Info.Print(msg)

	build, err := job.GetBuild(ref.Number)
	if err != nil {
		h.notify(err.Error())
		h.log.Error.Print(err.Error())
		return
	}
	if err := h.syncArtifacts(tracked, build); err != nil {
		msg = fmt.Sprintf(
			"artifact download for tracked job %s's build number %d failed on one or more artifacts; will retry after wait interval.",
			tracked.GetName(),
			ref.Number,
		)
		h.log.Error.Print(msg)
		h.notify(msg)
		return
	}
	tracked.BuildNumber = build.Number()
	msg = fmt.Sprintf(
		"completed downloading artifacts for tracked job %s's build number %d.",
		tracked.GetName(),
		tracked.BuildNumber,
	)
	h.notify(msg)
	h.log.Info.Print(msg)
	h.saveState()
}

// syncArtifacts downloads every artifact of the build in parallel and
// collects the failures.
func (h *Tracker) syncArtifacts(tracked *TrackedJob, build *jenkins.Build) error {
	downloadChannels := make([]<-chan error, 0)
	for _, artifact := range build.Artifacts() {
		downloadChannels = append(downloadChannels, h.handleNewArtifact(artifact, tracked.SyncDir))
	}
	errorSet := []error{}
	for _, c := range downloadChannels {
		if err := <-c; err != nil {
			errorSet = append(errorSet, err)
			h.notify(err.Error())
			h.log.Error.Print(err.Error())
		}
	}
	if len(errorSet) > 0 {
		return &comboError{errorSet: errorSet}
	}
	return nil
}

func (h *Tracker) handleNewArtifact(artifact *jenkins.Artifact, destDir string) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- artifact.SaveTo(destDir)
	}()
	return ch
}

func (h *Tracker) stateFilePath() (string, error) {
	dir := h.stateDir
	if dir == "" {
		var err error
		dir, err = common.GetExeDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "state.json"), nil
}

func (h *Tracker) saveState() {
	path, err := h.stateFilePath()
	if err != nil {
		h.log.Error.Printf("unable to resolve state file path: %v", err)
		return
	}
	stateBytes, err := json.Marshal(h.trackedJobs)
	if err != nil {
		h.log.Error.Printf("unable to marshal state for saving: %v", err)
		return
	}
	if err := os.WriteFile(path, stateBytes, 0600); err != nil {
		h.log.Error.Printf("unable to write state file: %v", err)
	}
}

// LoadState merges persisted last-seen build numbers into the tracked
// set. Jobs no longer tracked are dropped on the floor.
func (h *Tracker) LoadState() {
	path, err := h.stateFilePath()
	if err != nil {
		h.log.Error.Printf("unable to resolve state file path: %v", err)
		return
	}
	stateBytes, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			h.log.Error.Printf("unable to open state file for loading: %v", err)
		}
		return
	}
	tmpJobs := map[string]*TrackedJob{}
	if err := json.Unmarshal(stateBytes, &tmpJobs); err != nil {
		h.log.Error.Printf("unable to load state from file: %v", err)
		return
	}
	for key, val := range tmpJobs {
		if existing, ok := h.trackedJobs[key]; ok {
			existing.Equals(val)
		}
	}
}
