package jenkins

import (
	"encoding/json"
	"net/url"

	"github.com/google/uuid"
)

// Credentials are managed in the system store's global domain, the
// same place the Jenkins UI's "global credentials" live.
const credentialStorePath = "/credentials/store/system/domain/_"

// Credential mirrors one entry of the credential store listing.
// Secrets are never echoed back by Jenkins.
type Credential struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
	TypeName    string `json:"typeName"`
	Description string `json:"description"`
}

// GetCredentials lists the credentials of the global domain, keyed by ID.
func (j *JenkinsAPIClient) GetCredentials() (map[string]*Credential, error) {
	params := url.Values{}
	params.Set("tree", "credentials[id,displayName,typeName,description]")
	var doc struct {
		Credentials []*Credential `json:"credentials"`
	}
	if err := j.GetJSON(credentialStorePath, &doc, params); err != nil {
		return nil, err
	}
	creds := make(map[string]*Credential, len(doc.Credentials))
	for _, c := range doc.Credentials {
		creds[c.Id] = c
	}
	return creds, nil
}

// GetCredential looks a credential up by ID.
func (j *JenkinsAPIClient) GetCredential(id string) (*Credential, error) {
	creds, err := j.GetCredentials()
	if err != nil {
		return nil, err
	}
	c, ok := creds[id]
	if !ok {
		return nil, &NotFoundError{Kind: "credential", Name: id}
	}
	return c, nil
}

// CreateUsernamePasswordCredential stores a username/password pair and
// returns the credential ID. A random UUID is assigned when id is
// empty, matching what the Jenkins UI does.
func (j *JenkinsAPIClient) CreateUsernamePasswordCredential(id, description, username, password string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	payload := map[string]interface{}{
		"": "0",
		"credentials": map[string]interface{}{
			"scope":         "GLOBAL",
			"id":            id,
			"username":      username,
			"password":      password,
			"description":   description,
			"stapler-class": "com.cloudbees.plugins.credentials.impl.UsernamePasswordCredentialsImpl",
		},
	}
	if err := j.createCredential(payload); err != nil {
		return "", err
	}
	return id, nil
}

// CreateSecretTextCredential stores a secret string and returns the
// credential ID.
func (j *JenkinsAPIClient) CreateSecretTextCredential(id, description, secret string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	payload := map[string]interface{}{
		"": "0",
		"credentials": map[string]interface{}{
			"scope":         "GLOBAL",
			"id":            id,
			"secret":        secret,
			"description":   description,
			"stapler-class": "org.jenkinsci.plugins.plaincredentials.impl.StringCredentialsImpl",
		},
	}
	if err := j.createCredential(payload); err != nil {
		return "", err
	}
	return id, nil
}

func (j *JenkinsAPIClient) createCredential(payload map[string]interface{}) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	form := url.Values{}
	form.Set("json", string(blob))
	resp, err := j.Post(credentialStorePath+"/createCredentials", form, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// DeleteCredential removes a credential from the global domain by ID.
func (j *JenkinsAPIClient) DeleteCredential(id string) error {
	resp, err := j.Post(credentialStorePath+"/credential/"+url.PathEscape(id)+"/doDelete", nil, 200, 302)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
