package jenkins

import (
	"fmt"
	"net/url"
	"time"
)

// Plugin mirrors one entry of /pluginManager/api/json?depth=1.
type Plugin struct {
	ShortName           string `json:"shortName"`
	LongName            string `json:"longName"`
	Version             string `json:"version"`
	Url                 string `json:"url"`
	Active              bool   `json:"active"`
	Enabled             bool   `json:"enabled"`
	Bundled             bool   `json:"bundled"`
	Deleted             bool   `json:"deleted"`
	Pinned              bool   `json:"pinned"`
	HasUpdate           bool   `json:"hasUpdate"`
	SupportsDynamicLoad string `json:"supportsDynamicLoad"`
}

// Spec renders the plugin as the shortName@version form used in
// install manifests like plugins.txt.
func (p *Plugin) Spec() string {
	return p.ShortName + "@" + p.Version
}

// GetPlugins returns the installed plugins keyed by short name.
func (j *JenkinsAPIClient) GetPlugins() (map[string]*Plugin, error) {
	params := url.Values{}
	params.Set("depth", "1")
	var doc struct {
		Plugins []*Plugin `json:"plugins"`
	}
	if err := j.GetJSON("/pluginManager", &doc, params); err != nil {
		return nil, err
	}
	plugins := make(map[string]*Plugin, len(doc.Plugins))
	for _, p := range doc.Plugins {
		plugins[p.ShortName] = p
	}
	return plugins, nil
}

// GetPlugin looks one installed plugin up by short name.
func (j *JenkinsAPIClient) GetPlugin(shortName string) (*Plugin, error) {
	plugins, err := j.GetPlugins()
	if err != nil {
		return nil, err
	}
	p, ok := plugins[shortName]
	if !ok {
		return nil, &NotFoundError{Kind: "plugin", Name: shortName}
	}
	return p, nil
}

// InstallPlugin asks the update center to install shortName. version
// "latest" or "" installs whatever the update center currently offers.
// The install happens asynchronously; use WaitForPlugin to block.
func (j *JenkinsAPIClient) InstallPlugin(shortName, version string) error {
	if version == "" {
		version = "latest"
	}
	xml := fmt.Sprintf(`<jenkins><install plugin="%s@%s" /></jenkins>`, shortName, version)
	resp, err := j.PostXML("/pluginManager/installNecessaryPlugins", xml, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// UninstallPlugin removes an installed plugin. Jenkins usually wants a
// restart before the removal is effective.
func (j *JenkinsAPIClient) UninstallPlugin(shortName string) error {
	resp, err := j.Post("/pluginManager/plugin/"+url.PathEscape(shortName)+"/doUninstall", nil, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// WaitForPlugin polls the plugin manager until shortName shows up
// active or timeout elapses.
func (j *JenkinsAPIClient) WaitForPlugin(shortName string, interval, timeout time.Duration) (*Plugin, error) {
	deadline := time.Now().Add(timeout)
	for {
		p, err := j.GetPlugin(shortName)
		if err == nil && p.Active {
			return p, nil
		}
		if err != nil && !IsNotFound(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, newJenkinsError("timed out waiting for plugin "+shortName+" to install", nil)
		}
		time.Sleep(interval)
	}
}

// RestartRequired reports whether a pending plugin change needs a
// restart to complete.
func (j *JenkinsAPIClient) RestartRequired() (bool, error) {
	params := url.Values{}
	params.Set("tree", "restartRequiredForCompletion")
	var doc struct {
		RestartRequiredForCompletion bool `json:"restartRequiredForCompletion"`
	}
	if err := j.GetJSON("/updateCenter", &doc, params); err != nil {
		return false, err
	}
	return doc.RestartRequiredForCompletion, nil
}

// SafeRestart restarts the master once running builds are done.
func (j *JenkinsAPIClient) SafeRestart() error {
	resp, err := j.Post("/safeRestart", nil, 200, 302, 503)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
