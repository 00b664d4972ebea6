package provider

import (
	"context"
)

// Diagnose probes every configured endpoint of both roles and reports which
// are available. Unlike the failover helpers it does not stop at the first
// success; it is meant for operational inspection, not request serving.
func (p *Pool) Diagnose(ctx context.Context) DiagnosisReport {
	report := DiagnosisReport{
		Algod:   make([]EndpointHealth, 0, len(p.algodEndpoints)),
		Indexer: make([]EndpointHealth, 0, len(p.indexerEndpoints)),
	}

	for _, endpoint := range p.algodEndpoints {
		report.Algod = append(report.Algod, probeAlgod(ctx, endpoint))
	}
	for _, endpoint := range p.indexerEndpoints {
		report.Indexer = append(report.Indexer, probeIndexer(ctx, endpoint))
	}

	return report
}

func probeAlgod(ctx context.Context, endpoint Endpoint) EndpointHealth {
	health := EndpointHealth{URL: endpoint.URL}

	client, err := endpoint.AlgodClient()
	if err == nil {
		err = client.HealthCheck().Do(ctx)
	}
	if err != nil {
		health.Error = err.Error()
		return health
	}

	health.Healthy = true
	status, err := client.Status().Do(ctx)
	if err != nil {
		health.Error = err.Error()
		return health
	}
	health.LastRound = status.LastRound
	health.CatchingUp = status.CatchupTime > 0
	return health
}

func probeIndexer(ctx context.Context, endpoint Endpoint) EndpointHealth {
	health := EndpointHealth{URL: endpoint.URL}

	client, err := endpoint.IndexerClient()
	if err == nil {
		var round uint64
		if checkResponse, checkErr := client.HealthCheck().Do(ctx); checkErr != nil {
			err = checkErr
		} else {
			round = checkResponse.Round
		}
		health.LastRound = round
	}
	if err != nil {
		health.Error = err.Error()
		return health
	}

	health.Healthy = true
	return health
}
