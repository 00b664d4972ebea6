package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/algocert/anchor-sdk-go/pkg/shared"
)

const (
	defaultAlgodURL   = "http://127.0.0.1:4001"
	defaultIndexerURL = "https://mainnet-idx.algonode.cloud"
)

// NewPool builds a pool from explicit endpoint lists. Endpoints without a
// role are assigned one from the list they appear in; URLs are validated up
// front so a misconfigured node fails at startup rather than mid-failover.
func NewPool(config PoolConfig) (*Pool, error) {
	algodEndpoints, err := normalizeEndpoints(config.AlgodEndpoints, RoleAlgod)
	if err != nil {
		return nil, err
	}
	indexerEndpoints, err := normalizeEndpoints(config.IndexerEndpoints, RoleIndexer)
	if err != nil {
		return nil, err
	}

	if len(algodEndpoints) == 0 {
		algodEndpoints = []Endpoint{{URL: defaultAlgodURL, Role: RoleAlgod}}
	}
	if len(indexerEndpoints) == 0 {
		indexerEndpoints = []Endpoint{{URL: defaultIndexerURL, Role: RoleIndexer}}
	}

	return &Pool{
		algodEndpoints:   algodEndpoints,
		indexerEndpoints: indexerEndpoints,
		logger:           config.Logger,
	}, nil
}

// PoolFromEnv builds a pool from the environment. Two algod formats are
// supported, with the per-node token format taking priority:
//
//	ALGOD_NODES=http://192.168.1.190:4001:token1,http://192.168.1.189:4001:token2
//	ALGOD_ENDPOINTS=http://192.168.1.190:4001,http://192.168.1.189:4001
//	ALGOD_TOKEN=<token shared by all ALGOD_ENDPOINTS nodes>
//
// Indexer nodes come from INDEXER_NODES (url::token pairs) or INDEXER_URLS.
func PoolFromEnv() (*Pool, error) {
	shared.LoadDotEnv()

	return NewPool(PoolConfig{
		AlgodEndpoints:   algodEndpointsFromEnv(),
		IndexerEndpoints: indexerEndpointsFromEnv(),
	})
}

// Endpoints returns the configured endpoints for a role, in failover order.
func (p *Pool) Endpoints(role Role) []Endpoint {
	if role == RoleIndexer {
		return p.indexerEndpoints
	}
	return p.algodEndpoints
}

// Info reports the endpoint inventory without exposing credentials.
func (p *Pool) Info() PoolInfo {
	info := PoolInfo{
		Algod:   make([]EndpointInfo, 0, len(p.algodEndpoints)),
		Indexer: make([]EndpointInfo, 0, len(p.indexerEndpoints)),
	}
	for _, endpoint := range p.algodEndpoints {
		info.Algod = append(info.Algod, EndpointInfo{URL: endpoint.URL, HasToken: endpoint.Token != ""})
	}
	for _, endpoint := range p.indexerEndpoints {
		info.Indexer = append(info.Indexer, EndpointInfo{URL: endpoint.URL, HasToken: endpoint.Token != ""})
	}
	return info
}

func normalizeEndpoints(endpoints []Endpoint, role Role) ([]Endpoint, error) {
	normalized := make([]Endpoint, 0, len(endpoints))
	for _, endpoint := range endpoints {
		trimmedURL := strings.TrimRight(strings.TrimSpace(endpoint.URL), "/")
		if trimmedURL == "" {
			continue
		}
		parsed, err := url.Parse(trimmedURL)
		if err != nil {
			return nil, fmt.Errorf("invalid %s endpoint URL %q: %w", role, endpoint.URL, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("invalid %s endpoint URL %q: scheme must be http or https", role, endpoint.URL)
		}
		if strings.TrimSpace(parsed.Host) == "" {
			return nil, fmt.Errorf("invalid %s endpoint URL %q: host is required", role, endpoint.URL)
		}
		normalized = append(normalized, Endpoint{URL: trimmedURL, Token: endpoint.Token, Role: role})
	}
	return normalized, nil
}

func algodEndpointsFromEnv() []Endpoint {
	endpoints := make([]Endpoint, 0, 4)

	// Per-node token format: scheme://host:port:token.
	for _, node := range shared.SplitList(shared.Env("ALGOD_NODES")) {
		endpoint, ok := parseNodeWithToken(node)
		if ok {
			endpoints = append(endpoints, endpoint)
		}
	}
	if len(endpoints) > 0 {
		return endpoints
	}

	globalToken := shared.Env("ALGOD_TOKEN")
	urls := shared.FirstNonEmpty(shared.Env("ALGOD_ENDPOINTS"), shared.Env("ALGOD_URL"))
	for _, endpointURL := range shared.SplitList(urls) {
		endpoints = append(endpoints, Endpoint{URL: endpointURL, Token: globalToken, Role: RoleAlgod})
	}
	return endpoints
}

func indexerEndpointsFromEnv() []Endpoint {
	endpoints := make([]Endpoint, 0, 4)

	// Per-node token format uses a double-colon separator so it cannot be
	// confused with the port colon: url::token.
	for _, node := range shared.SplitList(shared.Env("INDEXER_NODES")) {
		nodeURL, token, _ := strings.Cut(node, "::")
		if strings.TrimSpace(nodeURL) == "" {
			continue
		}
		endpoints = append(endpoints, Endpoint{URL: nodeURL, Token: token, Role: RoleIndexer})
	}
	if len(endpoints) > 0 {
		return endpoints
	}

	urls := shared.FirstNonEmpty(shared.Env("INDEXER_URLS"), shared.Env("INDEXER_URL"))
	for _, endpointURL := range shared.SplitList(urls) {
		endpoints = append(endpoints, Endpoint{URL: endpointURL, Role: RoleIndexer})
	}
	return endpoints
}

// parseNodeWithToken splits scheme://host:port:token. The token may itself
// contain colons; everything after the port belongs to it.
func parseNodeWithToken(node string) (Endpoint, bool) {
	scheme, rest, found := strings.Cut(node, "://")
	if !found {
		// host:port:token without a scheme; assume http.
		parts := strings.SplitN(node, ":", 3)
		if len(parts) != 3 {
			return Endpoint{}, false
		}
		return Endpoint{
			URL:   fmt.Sprintf("http://%s:%s", parts[0], parts[1]),
			Token: parts[2],
			Role:  RoleAlgod,
		}, true
	}

	parts := strings.SplitN(rest, ":", 3)
	if len(parts) < 2 {
		return Endpoint{}, false
	}
	endpoint := Endpoint{
		URL:  fmt.Sprintf("%s://%s:%s", scheme, parts[0], parts[1]),
		Role: RoleAlgod,
	}
	if len(parts) == 3 {
		endpoint.Token = parts[2]
	}
	return endpoint, true
}
