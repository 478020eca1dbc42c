package launcher

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/pakohler/leeroy/logging"
)

const defaultDockerImage = "jenkins/jenkins:lts"

type dockerInstance struct {
	url         string
	client      *docker.Client
	containerID string
}

func (d *dockerInstance) URL() string { return d.url }

func (d *dockerInstance) Stop() error {
	return d.client.RemoveContainer(docker.RemoveContainerOptions{
		ID:            d.containerID,
		Force:         true,
		RemoveVolumes: true,
	})
}

func launchDocker() (Instance, error) {
	log := logging.GetLogger()
	image := os.Getenv("JENKINS_DOCKER_IMAGE")
	if image == "" {
		image = defaultDockerImage
	}
	client, err := docker.NewClientFromEnv()
	if err != nil {
		return nil, fmt.Errorf("unable to create docker client: %w", err)
	}

	repo, tag := splitImageTag(image)
	log.Info.Printf("pulling %s:%s", repo, tag)
	err = client.PullImage(docker.PullImageOptions{Repository: repo, Tag: tag}, docker.AuthConfiguration{})
	if err != nil {
		return nil, fmt.Errorf("unable to pull %s: %w", image, err)
	}

	port, err := freePort()
	if err != nil {
		return nil, err
	}
	container, err := client.CreateContainer(docker.CreateContainerOptions{
		Config: &docker.Config{
			Image: image,
			Env:   []string{"JAVA_OPTS=-Djenkins.install.runSetupWizard=false"},
			ExposedPorts: map[docker.Port]struct{}{
				"8080/tcp": {},
			},
		},
		HostConfig: &docker.HostConfig{
			PortBindings: map[docker.Port][]docker.PortBinding{
				"8080/tcp": {{HostIP: "127.0.0.1", HostPort: strconv.Itoa(port)}},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create jenkins container: %w", err)
	}
	if err := client.StartContainer(container.ID, nil); err != nil {
		client.RemoveContainer(docker.RemoveContainerOptions{ID: container.ID, Force: true})
		return nil, fmt.Errorf("unable to start jenkins container: %w", err)
	}

	inst := &dockerInstance{
		url:         fmt.Sprintf("http://127.0.0.1:%d", port),
		client:      client,
		containerID: container.ID,
	}
	log.Info.Printf("jenkins container %s starting on %s", container.ID[:12], inst.url)
	if err := waitHealthy(inst.url, 5*time.Minute); err != nil {
		inst.Stop()
		return nil, err
	}
	return inst, nil
}

// splitImageTag separates "jenkins/jenkins:lts" into repository and
// tag, defaulting the tag to latest.
func splitImageTag(image string) (string, string) {
	idx := strings.LastIndex(image, ":")
	// A colon inside a registry host (host:port/repo) is not a tag.
	if idx < 0 || strings.Contains(image[idx:], "/") {
		return image, "latest"
	}
	return image[:idx], image[idx+1:]
}
