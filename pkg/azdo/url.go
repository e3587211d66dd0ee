// Package azdo wires the action to an Azure DevOps organization. Auth and
// wire formats are delegated entirely to the azure-devops-go-api SDK; this
// package only splits the project URL and hands out typed clients.
package azdo

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrMissingProject = errors.New("project URL has no project segment")

// Project identifies one Azure DevOps project: the organization base URL the
// SDK connects to plus the project name used in every API call.
type Project struct {
	OrganizationURL string
	Name            string
}

// ParseProjectURL splits a project URL such as
// https://dev.azure.com/my-org/my-project (or the older
// https://my-org.visualstudio.com/my-project form) into the organization URL
// and the project name. The project is always the final path segment; the
// organization URL is everything before it.
func ParseProjectURL(raw string) (Project, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Project{}, fmt.Errorf("invalid project URL %q: %w", raw, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Project{}, fmt.Errorf("invalid project URL %q: unsupported scheme %q", raw, parsed.Scheme)
	}

	if parsed.Host == "" {
		return Project{}, fmt.Errorf("invalid project URL %q: missing host", raw)
	}

	segments := splitPath(parsed.EscapedPath())
	if len(segments) == 0 {
		return Project{}, fmt.Errorf("%w: %q", ErrMissingProject, raw)
	}

	// dev.azure.com URLs carry the organization as the first path segment,
	// so a project URL there needs at least org+project.
	if strings.EqualFold(parsed.Host, "dev.azure.com") && len(segments) < 2 {
		return Project{}, fmt.Errorf("%w: %q", ErrMissingProject, raw)
	}

	name, err := url.PathUnescape(segments[len(segments)-1])
	if err != nil {
		return Project{}, fmt.Errorf("invalid project URL %q: %w", raw, err)
	}

	orgPath := strings.Join(segments[:len(segments)-1], "/")
	orgURL := parsed.Scheme + "://" + parsed.Host
	if orgPath != "" {
		orgURL += "/" + orgPath
	}

	return Project{OrganizationURL: orgURL, Name: name}, nil
}

func splitPath(escapedPath string) []string {
	segments := make([]string, 0, 4)

	for _, segment := range strings.Split(escapedPath, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	return segments
}
