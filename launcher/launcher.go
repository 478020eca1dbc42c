// Package launcher brings up a throwaway Jenkins instance for the
// integration tests: an already-running server when JENKINS_URL is
// set, a plain war-file process when SKIP_DOCKER asks for it, and a
// Docker container otherwise.
package launcher

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pakohler/leeroy/common"
	"github.com/pakohler/leeroy/jenkins"
	"github.com/pakohler/leeroy/logging"
)

// Instance is a running Jenkins the tests can point a client at.
type Instance interface {
	URL() string
	Stop() error
}

type Mode int

const (
	ModeExternal Mode = iota
	ModeWar
	ModeDocker
)

// ChooseMode picks the fixture strategy from the environment. getenv
// is injected so the selection logic is testable.
func ChooseMode(getenv func(string) string) Mode {
	if getenv("JENKINS_URL") != "" {
		return ModeExternal
	}
	if getenv("SKIP_DOCKER") == "1" {
		return ModeWar
	}
	return ModeDocker
}

// Launch starts (or adopts) a Jenkins instance and blocks until it
// answers api/json.
func Launch() (Instance, error) {
	log := logging.GetLogger()
	switch ChooseMode(os.Getenv) {
	case ModeExternal:
		url := os.Getenv("JENKINS_URL")
		log.Info.Print("using external jenkins at " + url)
		inst := &externalInstance{url: url}
		if err := waitHealthy(url, 2*time.Minute); err != nil {
			return nil, err
		}
		return inst, nil
	case ModeWar:
		log.Info.Print("SKIP_DOCKER set; launching jenkins from war file")
		return launchWar()
	default:
		return launchDocker()
	}
}

type externalInstance struct {
	url string
}

func (e *externalInstance) URL() string { return e.url }

// Stop is a no-op; an external instance is not ours to kill.
func (e *externalInstance) Stop() error { return nil }

// waitHealthy polls api/json at a fixed cadence until the instance
// answers or the budget runs out. Jenkins takes a while to finish its
// first boot, so the budget is generous.
func waitHealthy(url string, budget time.Duration) error {
	interval := 2 * time.Second
	retrier := &common.Retrier{
		Attempts:     int(budget/interval) + 1,
		InitialDelay: interval,
		Multiplier:   1.0,
		MaxDelay:     interval,
	}
	client := jenkins.New().SetBaseUrl(url)
	err := retrier.Do(client.Connect)
	if err != nil {
		return fmt.Errorf("jenkins at %s never became healthy: %w", url, err)
	}
	return nil
}

// freePort asks the kernel for an unused local TCP port.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
