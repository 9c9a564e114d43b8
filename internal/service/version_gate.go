package service

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ClientInfo is what the version gate extracts from a client token of the
// form "Name/1.2.3 (platform)".
type ClientInfo struct {
	Version  string
	Platform string
}

// VersionError is the structured rejection returned to refused clients.
type VersionError struct {
	Message string `json:"message"`
	Version string `json:"-"`
}

func (e *VersionError) Error() string {
	return e.Message
}

func (e *VersionError) Unwrap() error {
	return ErrUnsupportedVersion
}

type VersionGate struct {
	clientName string
	supported  []string
	pattern    *regexp.Regexp
}

func NewVersionGate(clientName string, supported []string) (*VersionGate, error) {
	if clientName == "" {
		return nil, errors.New("client name is required")
	}
	if len(supported) == 0 {
		return nil, errors.New("at least one supported version is required")
	}

	return &VersionGate{
		clientName: clientName,
		supported:  slices.Clone(supported),
		pattern:    regexp.MustCompile(`^` + regexp.QuoteMeta(clientName) + `/(\d+\.\d+\.\d+) \((\w+)\)$`),
	}, nil
}

// Check admits tokens that match the expected shape and name a supported version.
func (g *VersionGate) Check(token string) (ClientInfo, error) {
	match := g.pattern.FindStringSubmatch(token)
	if match == nil {
		return ClientInfo{}, g.reject("")
	}

	info := ClientInfo{Version: match[1], Platform: match[2]}
	if !slices.Contains(g.supported, info.Version) {
		return info, g.reject(info.Version)
	}

	return info, nil
}

func (g *VersionGate) Supported() []string {
	return slices.Clone(g.supported)
}

func (g *VersionGate) reject(version string) *VersionError {
	return &VersionError{
		Message: fmt.Sprintf("The voice server does not support your version of %s.\nSupported versions: %s",
			g.clientName, strings.Join(g.supported, ", ")),
		Version: version,
	}
}
