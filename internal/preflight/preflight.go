package preflight

import (
	"context"
	"net/url"
	"strings"

	"reelsmith/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunLocal checks directories and binaries only; it makes no network calls.
func RunLocal(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if cfg.Storage.Backend == config.StorageBackendFile {
		results = append(results, CheckDirectoryAccess("Object storage directory", cfg.Storage.Dir))
	}
	for _, status := range CheckSystemDeps(cfg) {
		r := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
		if !status.Available {
			r.Detail = status.Detail
		}
		results = append(results, r)
	}
	return results
}

// RunAll executes the local checks followed by the service and store checks.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := RunLocal(cfg)
	results = append(results, CheckOpenAIServices(ctx, cfg)...)
	results = append(results, CheckRunway(ctx, cfg.Video))
	switch cfg.Storage.Backend {
	case config.StorageBackendHTTP:
		results = append(results, CheckEndpoint(ctx, EndpointCheck{
			Name:        "Object storage",
			URL:         cfg.Storage.Endpoint,
			BearerToken: cfg.Storage.Token,
			Reachable:   true,
		}))
	case config.StorageBackendS3:
		// AWS proper needs no endpoint; only S3-compatible hosts are checked.
		if strings.TrimSpace(cfg.Storage.Endpoint) != "" {
			results = append(results, CheckEndpoint(ctx, EndpointCheck{
				Name:      "Object storage",
				URL:       cfg.Storage.Endpoint,
				Reachable: true,
			}))
		}
	}
	results = append(results, CheckContentStore(ctx, cfg))
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

type openAITarget struct {
	names   []string
	baseURL string
	apiKey  string
}

// CheckOpenAIServices checks GET <base_url>/models once per distinct
// endpoint and key shared by the image, commentary, and speech services.
func CheckOpenAIServices(ctx context.Context, cfg *config.Config) []Result {
	candidates := []struct {
		name    string
		baseURL string
		apiKey  string
	}{
		{"Image API", cfg.Image.BaseURL, cfg.Image.APIKey},
		{"Commentary API", cfg.LLM.BaseURL, cfg.LLM.APIKey},
		{"Speech API", cfg.Speech.BaseURL, cfg.Speech.APIKey},
	}

	var targets []*openAITarget
	index := map[string]*openAITarget{}
	for _, c := range candidates {
		base := strings.TrimRight(strings.TrimSpace(c.baseURL), "/")
		key := base + "\x00" + c.apiKey
		if target, ok := index[key]; ok {
			target.names = append(target.names, c.name)
			continue
		}
		target := &openAITarget{names: []string{c.name}, baseURL: base, apiKey: c.apiKey}
		index[key] = target
		targets = append(targets, target)
	}

	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		name := strings.Join(target.names, " / ")
		if strings.TrimSpace(target.apiKey) == "" {
			results = append(results, Result{Name: name, Detail: "API key missing"})
			continue
		}
		endpoint, err := url.JoinPath(target.baseURL, "models")
		if err != nil {
			results = append(results, Result{Name: name, Detail: "invalid base url"})
			continue
		}
		results = append(results, CheckEndpoint(ctx, EndpointCheck{
			Name:        name,
			URL:         endpoint,
			BearerToken: target.apiKey,
		}))
	}
	return results
}

// CheckRunway calls the organization endpoint, which validates the key
// without submitting work.
func CheckRunway(ctx context.Context, cfg config.Video) Result {
	const name = "Video API"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	endpoint, err := url.JoinPath(strings.TrimSpace(cfg.BaseURL), "organization")
	if err != nil {
		return Result{Name: name, Detail: "invalid base url"}
	}
	headers := map[string]string{}
	if v := strings.TrimSpace(cfg.APIVersion); v != "" {
		headers["X-Runway-Version"] = v
	}
	return CheckEndpoint(ctx, EndpointCheck{
		Name:        name,
		URL:         endpoint,
		BearerToken: cfg.APIKey,
		Headers:     headers,
	})
}
