package jenkins

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/cavaliercoder/grab"
	"github.com/pakohler/leeroy/logging"
)

const crumbPath = "/crumbIssuer/api/json"

// Crumb is Jenkins' CSRF protection token. It must accompany every
// mutating request on instances that have the crumb issuer enabled.
type Crumb struct {
	Value        string `json:"crumb"`
	RequestField string `json:"crumbRequestField"`
}

// JenkinsAPIClient talks to a single Jenkins instance. Construct it
// fluently:
//
//	leeroy := jenkins.New().
//		SetUser("jenkins").
//		SetToken("api-token-or-password").
//		SetBaseUrl("https://your.jenkins.fqdn/jenkins")
//
// Once configured, a client may be shared across goroutines; the Set*
// builders themselves are not synchronized.
type JenkinsAPIClient struct {
	http    *http.Client
	grab    *grab.Client
	baseUrl string
	user    string
	token   string
	log     *logging.Logger

	crumbMu        sync.Mutex
	crumb          *Crumb
	crumbsDisabled bool

	version string
}

func New() *JenkinsAPIClient {
	j := JenkinsAPIClient{
		// Redirects are never followed: Jenkins answers successful
		// mutations with a 302, and the Location header of a build
		// trigger is the queue item reference.
		http: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		grab: grab.NewClient(),
		log:  logging.GetLogger(),
	}
	j.grab.HTTPClient = j.http
	return &j
}

func (j *JenkinsAPIClient) SetUser(user string) *JenkinsAPIClient {
	j.user = user
	return j
}

// SetToken sets the password or API token used for basic auth. Jenkins
// treats the two interchangeably on the wire.
func (j *JenkinsAPIClient) SetToken(token string) *JenkinsAPIClient {
	j.token = token
	return j
}

func (j *JenkinsAPIClient) SetBaseUrl(baseUrl string) *JenkinsAPIClient {
	j.baseUrl = strings.TrimRight(baseUrl, "/")
	return j
}

// SetHTTPClient swaps the underlying http.Client, e.g. for custom TLS
// configuration. The grab download client follows along.
func (j *JenkinsAPIClient) SetHTTPClient(client *http.Client) *JenkinsAPIClient {
	j.http = client
	j.grab.HTTPClient = client
	return j
}

func (j *JenkinsAPIClient) GetBaseUrl() string {
	return j.baseUrl
}

// cleanUrl normalizes a path or absolute URL from a Jenkins response
// into an absolute URL on this instance.
func (j *JenkinsAPIClient) cleanUrl(urlPath string) string {
	urlPath = strings.TrimRight(urlPath, "/")
	urlPath = strings.ReplaceAll(urlPath, j.baseUrl, "")
	if urlPath != "" && !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	return j.baseUrl + urlPath
}

func (j *JenkinsAPIClient) newRequest(method, rawUrl string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, rawUrl, body)
	if err != nil {
		return nil, err
	}
	if j.user != "" {
		req.SetBasicAuth(j.user, j.token)
	}
	return req, nil
}

// getCrumb fetches and caches the CSRF crumb. A 404 from the crumb
// issuer means crumbs are disabled on this instance; that is remembered
// and not treated as an error. The mutex keeps concurrent mutating
// calls from racing on the cache and from fetching redundant crumbs.
func (j *JenkinsAPIClient) getCrumb() (*Crumb, error) {
	j.crumbMu.Lock()
	defer j.crumbMu.Unlock()
	if j.crumbsDisabled {
		return nil, nil
	}
	if j.crumb != nil {
		return j.crumb, nil
	}
	req, err := j.newRequest("GET", j.baseUrl+crumbPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := j.http.Do(req)
	if err != nil {
		return nil, newJenkinsError("crumb request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		j.crumbsDisabled = true
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, URL: j.baseUrl + crumbPath, Body: strings.TrimSpace(string(body))}
	}
	crumb := &Crumb{}
	if err := json.Unmarshal(body, crumb); err != nil {
		return nil, newJenkinsError("unable to decode crumb", err)
	}
	j.crumb = crumb
	return crumb, nil
}

// GetJSON GETs <base><urlPath>/api/json and decodes the response into
// out. params may carry things like tree= or depth=.
func (j *JenkinsAPIClient) GetJSON(urlPath string, out interface{}, params url.Values) error {
	u := j.cleanUrl(urlPath) + "/api/json"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	body, err := j.getRaw(u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return newJenkinsError("unable to decode response from "+u, err)
	}
	return nil
}

// GetRaw GETs an endpoint that does not speak JSON, like consoleText or
// config.xml. urlPath is used verbatim after normalization.
func (j *JenkinsAPIClient) GetRaw(urlPath string) ([]byte, error) {
	return j.getRaw(j.cleanUrl(urlPath))
}

func (j *JenkinsAPIClient) getRaw(u string) ([]byte, error) {
	j.log.Trace.Print("GET " + u)
	req, err := j.newRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := j.http.Do(req)
	if err != nil {
		return nil, newJenkinsError("request to "+u+" failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Kind: "resource", Name: u}
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, URL: u, Body: trimBody(body)}
	}
	return body, nil
}

// Post sends a form-encoded POST with the CSRF crumb attached. valid
// lists acceptable status codes; when empty, any 2xx is accepted.
// Jenkins answers many successful mutations with a 302.
func (j *JenkinsAPIClient) Post(urlPath string, data url.Values, valid ...int) (*http.Response, error) {
	var body string
	if data != nil {
		body = data.Encode()
	}
	return j.post(urlPath, "application/x-www-form-urlencoded", body, valid)
}

// PostXML sends an XML body, used for job config.xml uploads and plugin
// installs.
func (j *JenkinsAPIClient) PostXML(urlPath string, xml string, valid ...int) (*http.Response, error) {
	return j.post(urlPath, "text/xml", xml, valid)
}

func (j *JenkinsAPIClient) post(urlPath, contentType, body string, valid []int) (*http.Response, error) {
	u := j.cleanUrl(urlPath)
	j.log.Trace.Print("POST " + u)
	resp, err := j.postOnce(u, contentType, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusForbidden && !j.crumbsKnownDisabled() {
		// The cached crumb may have expired with its session; fetch a
		// fresh one and retry the request a single time.
		resp.Body.Close()
		j.invalidateCrumb()
		resp, err = j.postOnce(u, contentType, body)
		if err != nil {
			return nil, err
		}
	}
	if !statusOk(resp.StatusCode, valid) {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{Kind: "resource", Name: u}
		}
		return nil, &APIError{Status: resp.StatusCode, URL: u, Body: trimBody(respBody)}
	}
	return resp, nil
}

func (j *JenkinsAPIClient) invalidateCrumb() {
	j.crumbMu.Lock()
	j.crumb = nil
	j.crumbMu.Unlock()
}

func (j *JenkinsAPIClient) crumbsKnownDisabled() bool {
	j.crumbMu.Lock()
	defer j.crumbMu.Unlock()
	return j.crumbsDisabled
}

func (j *JenkinsAPIClient) postOnce(u, contentType, body string) (*http.Response, error) {
	req, err := j.newRequest("POST", u, bytes.NewReader([]byte(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	crumb, err := j.getCrumb()
	if err != nil {
		return nil, err
	}
	if crumb != nil {
		req.Header.Set(crumb.RequestField, crumb.Value)
	}
	resp, err := j.http.Do(req)
	if err != nil {
		return nil, newJenkinsError("request to "+u+" failed", err)
	}
	return resp, nil
}

// DownloadFile fetches a (possibly large) file into destDir. grab is
// used with auto-resume since artifacts can be big and connections
// unstable.
func (j *JenkinsAPIClient) DownloadFile(urlPath string, destDir string) error {
	u := j.cleanUrl(urlPath)
	urlSplit := strings.Split(u, "/")
	fileName := urlSplit[len(urlSplit)-1]
	filePath := path.Join(destDir, fileName)
	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		if err := os.MkdirAll(destDir, 0700); err != nil {
			return err
		}
	}
	j.log.Info.Print("download starting: " + u)
	grabReq, err := grab.NewRequest(filePath, u)
	if err != nil {
		return err
	}
	if j.user != "" {
		grabReq.HTTPRequest.SetBasicAuth(j.user, j.token)
	}
	resp := j.grab.Do(grabReq)
	<-resp.Done
	if err := resp.Err(); err != nil {
		err = newJenkinsError("download failed: "+u, err)
		j.log.Error.Print(err.Error())
		return err
	}
	j.log.Info.Print("download complete: " + u)
	return nil
}

func statusOk(code int, valid []int) bool {
	if len(valid) == 0 {
		return code >= 200 && code < 300
	}
	for _, v := range valid {
		if code == v {
			return true
		}
	}
	return false
}

func trimBody(body []byte) string {
	const max = 500
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
