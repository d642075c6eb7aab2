package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const serviceName = "percept"

// Service names a remote backend that needs an API key.
type Service string

const (
	Gemini Service = "gemini"
	OpenAI Service = "openai"
)

// Source describes where a key was found.
const (
	SourceKeychain = "Keychain"
	SourceEnv      = "Environment Variable"
	SourcePrompt   = "Terminal Prompt"
)

type credential struct {
	account string
	envVar  string
	label   string
}

var credentials = map[Service]credential{
	Gemini: {account: "gemini-api-key", envVar: "GEMINI_API_KEY", label: "Gemini"},
	OpenAI: {account: "openai-api-key", envVar: "OPENAI_API_KEY", label: "OpenAI"},
}

// Services lists every backend that takes a key, in display order.
func Services() []Service {
	return []Service{Gemini, OpenAI}
}

// ParseService accepts a service name in any case.
func ParseService(name string) (Service, error) {
	svc := Service(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := credentials[svc]; !ok {
		return "", fmt.Errorf("unknown service %q (use gemini or openai)", name)
	}
	return svc, nil
}

// Label returns the display name of the service.
func (s Service) Label() string {
	if c, ok := credentials[s]; ok {
		return c.label
	}
	return string(s)
}

// EnvVar returns the environment variable consulted for the service.
func (s Service) EnvVar() string {
	return credentials[s].envVar
}

// GetKey retrieves the API key for a service from the keychain and, if
// allowEnv is set, the environment. It returns the key and where it came from.
func GetKey(svc Service, allowEnv bool) (string, string) {
	c, ok := credentials[svc]
	if !ok {
		return "", ""
	}

	key, err := keyring.Get(serviceName, c.account)
	if err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), SourceKeychain
	}

	if allowEnv {
		if key, ok := GetEnvKey(svc); ok {
			return key, SourceEnv
		}
	}
	return "", ""
}

// GetEnvKey retrieves the key from environment variables only.
func GetEnvKey(svc Service) (string, bool) {
	c, ok := credentials[svc]
	if !ok {
		return "", false
	}
	key := strings.TrimSpace(os.Getenv(c.envVar))
	if key == "" {
		return "", false
	}
	return key, true
}

// SaveKey stores the key for a service in the OS keychain.
func SaveKey(svc Service, key string) error {
	c, ok := credentials[svc]
	if !ok {
		return fmt.Errorf("unknown service %q", svc)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is empty")
	}
	return keyring.Set(serviceName, c.account, key)
}

// DeleteKey removes the key for a service from the OS keychain. A missing key
// is not an error.
func DeleteKey(svc Service) error {
	c, ok := credentials[svc]
	if !ok {
		return fmt.Errorf("unknown service %q", svc)
	}
	if err := keyring.Delete(serviceName, c.account); err != nil && err != keyring.ErrNotFound {
		return err
	}
	return nil
}

// GetStatus reports whether the keychain holds a key for the service.
func GetStatus(svc Service) bool {
	c, ok := credentials[svc]
	if !ok {
		return false
	}
	key, err := keyring.Get(serviceName, c.account)
	return err == nil && key != ""
}

// PromptForAPIKey reads a key from the terminal without echo.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
